package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"nxharness/internal/config"
	"nxharness/pkg/logging"

	"golang.org/x/sync/singleflight"
)

const subsystem = "resolver"

// Resolver resolves an artifact coordinate to a local file path.
type Resolver interface {
	Resolve(ctx context.Context, coord Coordinate) (string, error)
}

// repository is the transport behind a remote resolver. fetch streams the
// named file into w; digest returns the hex digest published alongside it, or
// "" when the repository has none.
type repository interface {
	fetch(ctx context.Context, filename string, w io.Writer) (int64, error)
	digest(ctx context.Context, filename string) (string, error)
	describe() string
}

// NewResolver builds a resolver for the configured repository URL. The
// scheme selects the backend: file, http(s), s3 or dav(s).
func NewResolver(cfg config.ArtifactConfig) (Resolver, error) {
	u, err := url.Parse(cfg.Repository)
	if err != nil {
		return nil, fmt.Errorf("invalid repository URL %q: %w", cfg.Repository, err)
	}

	switch strings.ToLower(u.Scheme) {
	case "file":
		root := u.Path
		if u.Host != "" {
			// file://relative/dir parses the first segment as a host.
			root = filepath.Join(u.Host, u.Path)
		}
		return &fileResolver{root: root, verify: cfg.VerifyDigest}, nil
	case "http", "https":
		return newRemoteResolver(newHTTPRepository(u), cfg)
	case "s3":
		repo, err := newS3Repository(u)
		if err != nil {
			return nil, err
		}
		return newRemoteResolver(repo, cfg)
	case "dav", "davs":
		return newRemoteResolver(newWebdavRepository(u), cfg)
	default:
		return nil, fmt.Errorf("unsupported repository scheme %q (supported: file, http, https, s3, dav, davs)", u.Scheme)
	}
}

// fileResolver serves artifacts from a local directory without copying.
type fileResolver struct {
	root   string
	verify bool
}

func (r *fileResolver) Resolve(ctx context.Context, coord Coordinate) (string, error) {
	path := filepath.Join(r.root, coord.Filename())

	info, err := os.Stat(path)
	if err != nil {
		return "", &ResolutionError{Coordinate: coord, Repository: r.root, Err: err}
	}
	if info.IsDir() {
		return "", &ResolutionError{Coordinate: coord, Repository: r.root, Err: fmt.Errorf("%s is a directory", path)}
	}

	if r.verify {
		if want := readSidecar(path); want != "" {
			if err := verifyFile(path, want); err != nil {
				return "", &ResolutionError{Coordinate: coord, Repository: r.root, Err: err}
			}
			logging.Debug(subsystem, "Digest verified for %s", coord)
		}
	}

	logging.Info(subsystem, "Resolved %s to %s", coord, path)
	return path, nil
}

// readSidecar returns the digest published next to a local artifact, or ""
// when no sidecar file exists.
func readSidecar(path string) string {
	for _, ext := range sidecarExtensions {
		data, err := os.ReadFile(path + ext)
		if err != nil {
			continue
		}
		if digest := parseDigest(string(data)); digest != "" {
			return digest
		}
	}
	return ""
}

// remoteResolver downloads artifacts into a local cache directory.
type remoteResolver struct {
	repo     repository
	cacheDir string
	verify   bool
	group    singleflight.Group
}

func newRemoteResolver(repo repository, cfg config.ArtifactConfig) (*remoteResolver, error) {
	cacheDir := cfg.CacheDir
	if cacheDir == "" {
		var err error
		cacheDir, err = config.DefaultCacheDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine cache directory: %w", err)
		}
	}
	return &remoteResolver{repo: repo, cacheDir: cacheDir, verify: cfg.VerifyDigest}, nil
}

func (r *remoteResolver) Resolve(ctx context.Context, coord Coordinate) (string, error) {
	filename := coord.Filename()
	target := filepath.Join(r.cacheDir, filename)

	v, err, _ := r.group.Do(filename, func() (interface{}, error) {
		if _, err := os.Stat(target); err == nil {
			logging.Debug(subsystem, "Cache hit for %s", coord)
			return target, nil
		}
		if err := r.download(ctx, coord, filename, target); err != nil {
			return nil, err
		}
		return target, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (r *remoteResolver) download(ctx context.Context, coord Coordinate, filename, target string) error {
	if err := os.MkdirAll(r.cacheDir, 0755); err != nil {
		return &ResolutionError{Coordinate: coord, Repository: r.repo.describe(), Err: err}
	}

	// Download to a temp file first so an interrupted fetch never leaves a
	// half-written artifact at the cached path.
	tmp, err := os.CreateTemp(r.cacheDir, filename+".part-")
	if err != nil {
		return &ResolutionError{Coordinate: coord, Repository: r.repo.describe(), Err: err}
	}
	tmpPath := tmp.Name()

	n, err := r.repo.fetch(ctx, filename, tmp)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmpPath)
		return &ResolutionError{Coordinate: coord, Repository: r.repo.describe(), Err: err}
	}

	if r.verify {
		want, derr := r.repo.digest(ctx, filename)
		if derr != nil && !errors.Is(derr, context.Canceled) {
			logging.Debug(subsystem, "No digest sidecar for %s: %v", filename, derr)
		}
		if want != "" {
			if verr := verifyFile(tmpPath, want); verr != nil {
				os.Remove(tmpPath)
				return &ResolutionError{Coordinate: coord, Repository: r.repo.describe(), Err: verr}
			}
			logging.Debug(subsystem, "Digest verified for %s", coord)
		}
	}

	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return &ResolutionError{Coordinate: coord, Repository: r.repo.describe(), Err: err}
	}

	logging.Info(subsystem, "Resolved %s (%d bytes) from %s", coord, n, r.repo.describe())
	return nil
}
