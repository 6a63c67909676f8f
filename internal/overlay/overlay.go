// Package overlay copies local configuration files into the unpacked server
// tree after extraction.
//
// Overlays are applied on every run and always overwrite the target file, so
// the server configuration reflects the current source even when the archive
// itself was not re-extracted. The target directory is never created here: a
// missing tree means unpack did not run or produced an unexpected layout, and
// that must fail loudly instead of silently writing into a fresh directory.
//
// Sources ending in .tmpl are rendered with text/template plus the sprig
// function map before writing; the suffix is stripped from the target name.
package overlay

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"nxharness/internal/config"
	"nxharness/pkg/logging"

	"github.com/Masterminds/sprig/v3"
)

const subsystem = "overlay"

// DefaultTarget is the subdirectory overlays land in when no target is
// configured.
const DefaultTarget = "nxserver/config"

const templateSuffix = ".tmpl"

// Context carries the values available to template overlays. Environment
// variables are reachable through sprig's env function.
type Context struct {
	Destination string
	ServerURL   string
}

// Apply copies every overlay into the destination tree, in order, stopping
// at the first failure.
func Apply(dest string, overlays []config.OverlayEntry, tctx Context) error {
	for _, entry := range overlays {
		if err := applyOne(dest, entry, tctx); err != nil {
			return err
		}
	}
	return nil
}

func applyOne(dest string, entry config.OverlayEntry, tctx Context) error {
	targetDir := entry.Target
	if targetDir == "" {
		targetDir = DefaultTarget
	}
	dir := filepath.Join(dest, filepath.FromSlash(targetDir))

	info, err := os.Stat(dir)
	if err != nil {
		return &OverlayError{Source: entry.Source, Target: dir, Err: err}
	}
	if !info.IsDir() {
		return &OverlayError{Source: entry.Source, Target: dir, Err: fmt.Errorf("%s is not a directory", dir)}
	}

	name := filepath.Base(entry.Source)
	if strings.HasSuffix(name, templateSuffix) {
		target := filepath.Join(dir, strings.TrimSuffix(name, templateSuffix))
		return renderTemplate(entry.Source, target, tctx)
	}
	return copyFile(entry.Source, filepath.Join(dir, name))
}

func renderTemplate(source, target string, tctx Context) error {
	data, err := os.ReadFile(source)
	if err != nil {
		return &OverlayError{Source: source, Target: target, Err: err}
	}

	tmpl, err := template.New(filepath.Base(source)).Funcs(sprig.TxtFuncMap()).Parse(string(data))
	if err != nil {
		return &OverlayError{Source: source, Target: target, Err: err}
	}

	var rendered bytes.Buffer
	if err := tmpl.Execute(&rendered, tctx); err != nil {
		return &OverlayError{Source: source, Target: target, Err: err}
	}

	if err := os.WriteFile(target, rendered.Bytes(), 0644); err != nil {
		return &OverlayError{Source: source, Target: target, Err: err}
	}

	logging.Info(subsystem, "Rendered %s into %s", source, target)
	return nil
}

func copyFile(source, target string) error {
	info, err := os.Stat(source)
	if err != nil {
		return &OverlayError{Source: source, Target: target, Err: err}
	}

	in, err := os.Open(source)
	if err != nil {
		return &OverlayError{Source: source, Target: target, Err: err}
	}
	defer in.Close()

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return &OverlayError{Source: source, Target: target, Err: err}
	}

	_, err = io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return &OverlayError{Source: source, Target: target, Err: err}
	}

	// The target may pre-exist with different permissions; the overlay always
	// reflects the source.
	if err := os.Chmod(target, info.Mode().Perm()); err != nil {
		return &OverlayError{Source: source, Target: target, Err: err}
	}

	logging.Info(subsystem, "Overlaid %s into %s", source, target)
	return nil
}
