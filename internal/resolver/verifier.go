package resolver

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"
)

// HeadVerifier checks liveness with an HTTP HEAD request. It is the default
// verifier for documents; media verification can be swapped for a tool-backed
// implementation.
type HeadVerifier struct {
	client *http.Client
}

// NewHeadVerifier creates a HeadVerifier with the given request timeout.
func NewHeadVerifier(timeout time.Duration) *HeadVerifier {
	return &HeadVerifier{
		client: &http.Client{Timeout: timeout},
	}
}

// Verify reports whether url answers HEAD with a non-error status. Transport
// failures other than context cancellation are treated as verified: many
// municipal servers reject HEAD outright, and a false negative would drop a
// usable URL.
func (v *HeadVerifier) Verify(ctx context.Context, url, mediaType string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false, &VerifyError{Kind: "unsupported_platform", URL: url, Err: err}
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64)")

	resp, err := v.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return false, &VerifyError{Kind: "timeout", URL: url, Err: ctx.Err()}
		}
		if isTimeout(err) {
			return false, &VerifyError{Kind: "timeout", URL: url, Err: err}
		}
		return true, nil
	}
	defer resp.Body.Close()

	return resp.StatusCode < http.StatusBadRequest, nil
}

func isTimeout(err error) bool {
	if os.IsTimeout(err) {
		return true
	}
	return strings.Contains(err.Error(), "Client.Timeout")
}
