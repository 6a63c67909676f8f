package artifact

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"time"

	"github.com/studio-b12/gowebdav"
)

// webdavRepository fetches artifacts from a dav:// or davs:// share. The
// scheme maps to http/https upstream; credentials come from
// NXHARNESS_REPO_USER / NXHARNESS_REPO_PASSWORD.
type webdavRepository struct {
	client *gowebdav.Client
	base   *url.URL
	root   string
}

func newWebdavRepository(u *url.URL) *webdavRepository {
	upstream := *u
	if u.Scheme == "davs" {
		upstream.Scheme = "https"
	} else {
		upstream.Scheme = "http"
	}
	root := upstream.Path
	upstream.Path = ""

	client := gowebdav.NewClient(
		upstream.String(),
		os.Getenv("NXHARNESS_REPO_USER"),
		os.Getenv("NXHARNESS_REPO_PASSWORD"),
	)
	client.SetTransport(&http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		ResponseHeaderTimeout: 60 * time.Second,
		IdleConnTimeout:       90 * time.Second,
		ExpectContinueTimeout: 10 * time.Second,
	})

	return &webdavRepository{client: client, base: u, root: root}
}

func (r *webdavRepository) remotePath(filename string) string {
	return path.Join(r.root, filename)
}

func (r *webdavRepository) fetch(ctx context.Context, filename string, w io.Writer) (int64, error) {
	remote := r.remotePath(filename)

	if _, err := r.client.Stat(remote); err != nil {
		return 0, fmt.Errorf("stat %q: %w", remote, err)
	}

	stream, err := r.client.ReadStream(remote)
	if err != nil {
		return 0, fmt.Errorf("read %q: %w", remote, err)
	}
	defer stream.Close()

	return io.Copy(w, stream)
}

func (r *webdavRepository) digest(ctx context.Context, filename string) (string, error) {
	for _, ext := range sidecarExtensions {
		stream, err := r.client.ReadStream(r.remotePath(filename + ext))
		if err != nil {
			continue
		}
		data, err := io.ReadAll(io.LimitReader(stream, 1024))
		stream.Close()
		if err != nil {
			continue
		}
		if digest := parseDigest(string(data)); digest != "" {
			return digest, nil
		}
	}
	return "", nil
}

func (r *webdavRepository) describe() string {
	return r.base.Redacted()
}
