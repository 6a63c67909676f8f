package artifact

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

// httpRepository fetches artifacts from an HTTP(S) base URL. Basic-auth
// credentials come from NXHARNESS_REPO_USER / NXHARNESS_REPO_PASSWORD.
type httpRepository struct {
	base   *url.URL
	client *http.Client
	user   string
	pass   string
}

func newHTTPRepository(base *url.URL) *httpRepository {
	return &httpRepository{
		base: base,
		client: &http.Client{
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				ResponseHeaderTimeout: 60 * time.Second,
				IdleConnTimeout:       90 * time.Second,
				ExpectContinueTimeout: 10 * time.Second,
			},
		},
		user: os.Getenv("NXHARNESS_REPO_USER"),
		pass: os.Getenv("NXHARNESS_REPO_PASSWORD"),
	}
}

func (r *httpRepository) get(ctx context.Context, filename string) (*http.Response, error) {
	u := r.base.JoinPath(filename)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	if r.user != "" {
		req.SetBasicAuth(r.user, r.pass)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: unexpected status %s", u, resp.Status)
	}
	return resp, nil
}

func (r *httpRepository) fetch(ctx context.Context, filename string, w io.Writer) (int64, error) {
	resp, err := r.get(ctx, filename)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return io.Copy(w, resp.Body)
}

func (r *httpRepository) digest(ctx context.Context, filename string) (string, error) {
	for _, ext := range sidecarExtensions {
		resp, err := r.get(ctx, filename+ext)
		if err != nil {
			continue
		}
		data, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
		resp.Body.Close()
		if err != nil {
			continue
		}
		if digest := parseDigest(string(data)); digest != "" {
			return digest, nil
		}
	}
	return "", nil
}

func (r *httpRepository) describe() string {
	return r.base.Redacted()
}
