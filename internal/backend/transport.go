package backend

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/pkg/errors"
	"golang.org/x/net/http2"
)

// maxErrorBody bounds how much of a failed engine response is kept.
const maxErrorBody = 4096

// healthPath is served by both vLLM and text-generation-inference.
const healthPath = "/health"

// newUpstreamClient builds the client used to talk to the engine.
// Timeout is left at 0: every call carries a context deadline instead.
func newUpstreamClient(connectTimeout time.Duration) *http.Client {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   connectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	// h2 for https engines behind a gateway; plain http stays on HTTP/1.1.
	_ = http2.ConfigureTransport(tr)
	return &http.Client{Transport: tr, Timeout: 0}
}

func trimBase(u string) string { return strings.TrimRight(strings.TrimSpace(u), "/") }

// postJSON sends in as JSON and decodes the response into out.
func postJSON(ctx context.Context, client *http.Client, url, apiKey string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return errors.Wrap(err, "error marshalling engine request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "error building engine request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}
	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errors.Wrap(err, "error POSTing engine request")
	}
	defer resp.Body.Close()
	b, err := readBody(resp)
	if err != nil {
		return errors.Wrap(err, "error reading engine response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(b) > maxErrorBody {
			b = b[:maxErrorBody]
		}
		return &upstreamStatusError{Status: resp.Status, Body: strings.TrimSpace(string(b))}
	}
	if err := json.Unmarshal(b, out); err != nil {
		return errors.Wrapf(err, "error unmarshaling engine response %s", truncate(string(b), 256))
	}
	return nil
}

// readBody returns the decoded response body honoring Content-Encoding.
func readBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body
	switch strings.ToLower(resp.Header.Get("Content-Encoding")) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, errors.Wrap(err, "error creating gzip reader")
		}
		defer gz.Close()
		reader = gz
	case "br":
		reader = brotli.NewReader(resp.Body)
	case "deflate":
		fl := flate.NewReader(resp.Body)
		defer fl.Close()
		reader = fl
	}
	return io.ReadAll(reader)
}

// isHealthy checks whether the engine at baseURL answers its health probe.
func isHealthy(ctx context.Context, client *http.Client, baseURL string, timeout time.Duration) bool {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+healthPath, nil)
	if err != nil {
		return false
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// waitHealthy polls the health probe until it succeeds, the timeout passes,
// ctx is done, or exited reports that the process behind baseURL is gone.
// A zero timeout waits until ctx is done.
func waitHealthy(ctx context.Context, client *http.Client, baseURL string, timeout time.Duration, exited <-chan struct{}) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	tick := time.NewTicker(250 * time.Millisecond)
	defer tick.Stop()
	for {
		if isHealthy(ctx, client, baseURL, 2*time.Second) {
			return nil
		}
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return errors.Errorf("engine not ready in time: %s", baseURL)
			}
			return ctx.Err()
		case <-exited:
			return errExitedBeforeReady
		case <-tick.C:
		}
	}
}

var errExitedBeforeReady = errors.New("engine exited before ready")

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
