package engine

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a fetch failure for retry policy decisions.
type ErrorKind string

const (
	KindTimeout      ErrorKind = "timeout"
	KindNetwork      ErrorKind = "network"
	KindBotDetection ErrorKind = "bot_detection"
	KindCloudflare   ErrorKind = "cloudflare"
	KindServerError  ErrorKind = "server_error"
	KindRateLimited  ErrorKind = "rate_limited"
	KindUnknown      ErrorKind = "unknown"
)

// FetchError is a classified page-fetch failure.
type FetchError struct {
	Kind ErrorKind
	URL  string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s: %s: %v", e.URL, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// KindOf extracts the classification from err, falling back to message
// sniffing for errors that did not come through a FetchError.
func KindOf(err error) ErrorKind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ClassifyMessage(err.Error(), 0)
}

var botIndicators = []string{
	"access denied", "captcha", "blocked", "forbidden", "please verify",
	"security check", "unusual traffic", "robot", "automated",
}

var cloudflareIndicators = []string{
	"cloudflare", "cf-ray", "checking your browser", "ddos protection",
}

// ClassifyMessage maps an error message and optional HTTP status to an
// ErrorKind. Ordering matters: timeouts before network, cloudflare before
// the generic bot indicators it overlaps with.
func ClassifyMessage(msg string, statusCode int) ErrorKind {
	lower := strings.ToLower(msg)

	if strings.Contains(lower, "timeout") || strings.Contains(lower, "timed out") ||
		strings.Contains(lower, "deadline exceeded") {
		return KindTimeout
	}
	if statusCode == 429 || strings.Contains(lower, "rate limit") {
		return KindRateLimited
	}
	for _, ind := range cloudflareIndicators {
		if strings.Contains(lower, ind) {
			return KindCloudflare
		}
	}
	for _, ind := range botIndicators {
		if strings.Contains(lower, ind) {
			return KindBotDetection
		}
	}
	if statusCode >= 500 && statusCode < 600 {
		return KindServerError
	}
	if strings.Contains(lower, "connection") || strings.Contains(lower, "network") ||
		strings.Contains(lower, "no such host") || strings.Contains(lower, "dns") {
		return KindNetwork
	}
	return KindUnknown
}

// Retriable reports whether a failure of this kind is worth another attempt.
func Retriable(kind ErrorKind) bool {
	switch kind {
	case KindTimeout, KindNetwork, KindServerError, KindBotDetection, KindCloudflare, KindRateLimited:
		return true
	}
	return false
}

// NeedsRotation reports whether the fetcher should rotate its identity
// before the next attempt.
func NeedsRotation(kind ErrorKind) bool {
	return kind == KindBotDetection || kind == KindCloudflare
}
