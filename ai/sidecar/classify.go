package sidecar

import (
	"errors"
	"io"
	"net"
	"net/http"
	"syscall"

	"github.com/poiesic/civicfaq/retry"
)

// classifyTransportError marks a request error that produced no response.
func classifyTransportError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return retry.Transient(err)
	}

	var opErr *net.OpError
	var dnsErr *net.DNSError
	switch {
	case errors.As(err, &opErr),
		errors.As(err, &dnsErr),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF):
		return retry.Transient(err)
	}

	return err
}

// classifyStatus marks a non-2xx response.
func classifyStatus(code int, body string) error {
	err := &StatusError{StatusCode: code, Body: body}
	switch code {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return retry.Transient(err)
	default:
		return err
	}
}
