package ingest

import (
	"context"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadgen-cli/internal/resilience"
)

var downloadClient = &http.Client{Timeout: 60 * time.Second}

// Open returns a reader for src, which is either a local file path or an
// http(s) URL. Remote fetches retry transient failures.
func Open(ctx context.Context, src string) (io.ReadCloser, error) {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return download(ctx, src)
	}

	f, err := os.Open(src)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: open file")
	}
	return f, nil
}

func download(ctx context.Context, url string) (io.ReadCloser, error) {
	policy := resilience.DefaultPolicy()
	policy.OnRetry = resilience.Logged("ingest")

	return resilience.Do(ctx, policy, func(ctx context.Context) (io.ReadCloser, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, eris.Wrap(err, "ingest: create request")
		}

		resp, err := downloadClient.Do(req)
		if err != nil {
			return nil, eris.Wrap(err, "ingest: download")
		}

		if resp.StatusCode != http.StatusOK {
			_ = resp.Body.Close()
			err := eris.Errorf("ingest: unexpected status %d from %s", resp.StatusCode, url)
			if resilience.RetryableStatus(resp.StatusCode) {
				return nil, resilience.Transient(err, resp.StatusCode)
			}
			return nil, err
		}

		return resp.Body, nil
	})
}
