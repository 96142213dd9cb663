package fetcher

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"strings"
)

// statusError marks a completed HTTP exchange with a non-2xx status.
type statusError struct {
	Code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("http status %d", e.Code)
}

// statusToError converts a non-2xx status into a statusError. A zero
// status means no response was observed and is left for other error
// paths to report.
func statusToError(status int) error {
	if status == 0 || (status >= 200 && status < 300) {
		return nil
	}
	return &statusError{Code: status}
}

// classifyError maps an arbitrary fetch failure onto the short
// human-readable classes surfaced in PageRecord.Error.
func classifyError(err error) string {
	if err == nil {
		return ""
	}

	var se *statusError
	if errors.As(err, &se) {
		switch {
		case se.Code == 403:
			return "forbidden"
		case se.Code == 404:
			return "not-found"
		default:
			return "network"
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return "timeout"
	}

	var certErr x509.UnknownAuthorityError
	var hostErr x509.HostnameError
	var recordErr tls.RecordHeaderError
	if errors.As(err, &certErr) || errors.As(err, &hostErr) || errors.As(err, &recordErr) {
		return "ssl"
	}

	var dnsErr *net.DNSError
	var opErr *net.OpError
	if errors.As(err, &dnsErr) || errors.As(err, &opErr) {
		return "network"
	}

	// rod surfaces navigation failures as plain error strings
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline"):
		return "timeout"
	case strings.Contains(msg, "certificate"), strings.Contains(msg, "tls"):
		return "ssl"
	case strings.Contains(msg, "dns"), strings.Contains(msg, "connection"), strings.Contains(msg, "net::"):
		return "network"
	default:
		return "unknown"
	}
}
