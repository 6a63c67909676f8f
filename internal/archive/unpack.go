// Package archive extracts the server test-support bundle into the
// provisioning destination.
//
// Extraction is idempotent and non-overwriting: when the destination already
// contains any entry the whole step is skipped, so repeated harness runs do
// not redo the work. The trade-off is that stale content from a previous run
// is never refreshed on its own; passing force clears the destination and
// re-extracts.
package archive

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"nxharness/pkg/logging"
)

const subsystem = "archive"

// Unpack extracts the zip archive at archivePath into dest.
func Unpack(ctx context.Context, archivePath, dest string, force bool) error {
	populated, entries, err := destinationPopulated(dest)
	if err != nil {
		return &UnpackError{Archive: archivePath, Dest: dest, Err: err}
	}
	if populated {
		if !force {
			logging.Info(subsystem, "Destination %s already contains %d entries, skipping extraction", dest, entries)
			return nil
		}
		logging.Info(subsystem, "Clearing %s before re-extraction", dest)
		if err := clearDir(dest); err != nil {
			return &UnpackError{Archive: archivePath, Dest: dest, Err: err}
		}
	}

	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		// Since Go 1.20 OpenReader rejects entries with absolute or ../
		// names itself and still hands back a reader.
		if reader != nil {
			reader.Close()
		}
		return &UnpackError{Archive: archivePath, Dest: dest, Err: err}
	}
	defer reader.Close()

	if err := os.MkdirAll(dest, 0755); err != nil {
		return &UnpackError{Archive: archivePath, Dest: dest, Err: err}
	}

	for _, entry := range reader.File {
		select {
		case <-ctx.Done():
			return &UnpackError{Archive: archivePath, Dest: dest, Err: ctx.Err()}
		default:
		}
		if err := extractEntry(entry, dest); err != nil {
			return &UnpackError{Archive: archivePath, Dest: dest, Err: err}
		}
	}

	logging.Info(subsystem, "Extracted %d entries into %s", len(reader.File), dest)
	return nil
}

// destinationPopulated reports whether dest exists and contains any entry.
func destinationPopulated(dest string) (bool, int, error) {
	entries, err := os.ReadDir(dest)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, 0, nil
		}
		return false, 0, err
	}
	return len(entries) > 0, len(entries), nil
}

func clearDir(dest string) error {
	entries, err := os.ReadDir(dest)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(dest, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

func extractEntry(entry *zip.File, dest string) error {
	target, err := safePath(dest, entry.Name)
	if err != nil {
		return err
	}

	if entry.FileInfo().IsDir() {
		return os.MkdirAll(target, entry.Mode().Perm()|0755)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}

	rc, err := entry.Open()
	if err != nil {
		return fmt.Errorf("entry %s: %w", entry.Name, err)
	}
	defer rc.Close()

	mode := entry.Mode().Perm()
	if mode == 0 {
		mode = 0644
	}
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}

	_, err = io.Copy(out, rc)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("entry %s: %w", entry.Name, err)
	}
	return nil
}

// safePath joins an archive entry name onto dest, rejecting entries that
// would escape it.
func safePath(dest, name string) (string, error) {
	target := filepath.Join(dest, filepath.FromSlash(name))
	cleanDest := filepath.Clean(dest)
	if target != cleanDest && !strings.HasPrefix(target, cleanDest+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry %q escapes the destination directory", name)
	}
	return target, nil
}
