package services

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"nxharness/internal/config"
)

// readinessPollInterval is how often a starting service is probed.
const readinessPollInterval = 500 * time.Millisecond

var probeClient = &http.Client{Timeout: 5 * time.Second}

// hasProbe reports whether any readiness probe is configured.
func hasProbe(r config.ReadinessConfig) bool {
	return r.Port > 0 || r.URL != ""
}

// probeReadiness runs the configured probes once. When both a port and a
// URL are configured, both must pass.
func probeReadiness(ctx context.Context, r config.ReadinessConfig) error {
	if r.Port > 0 {
		if err := probePort(ctx, r.Port); err != nil {
			return err
		}
	}
	if r.URL != "" {
		if err := probeURL(ctx, r.URL); err != nil {
			return err
		}
	}
	return nil
}

// probePort checks that a TCP connection to the port can be established on
// localhost.
func probePort(ctx context.Context, port int) error {
	dialer := net.Dialer{Timeout: 2 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort("localhost", strconv.Itoa(port)))
	if err != nil {
		return fmt.Errorf("port %d not reachable: %w", port, err)
	}
	return conn.Close()
}

// probeURL checks that a GET on the URL returns a 2xx response.
func probeURL(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building readiness request: %w", err)
	}

	resp, err := probeClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("GET %s: unexpected status %s", url, resp.Status)
	}

	// Drain so the connection can be reused
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
