package datasource

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrorKind classifies why a forecast fetch failed
type ErrorKind int

const (
	KindNetworkUnreachable ErrorKind = iota + 1
	KindUpstreamNonSuccess
	KindMalformedPayload
	KindTimeout
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetworkUnreachable:
		return "NetworkUnreachable"
	case KindUpstreamNonSuccess:
		return "UpstreamNonSuccess"
	case KindMalformedPayload:
		return "MalformedPayload"
	case KindTimeout:
		return "Timeout"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// FetchError is returned by sources that talk to a remote forecast service
type FetchError struct {
	Kind       ErrorKind
	Source     string
	StatusCode int // set for KindUpstreamNonSuccess
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.Kind == KindUpstreamNonSuccess && e.Err != nil:
		return fmt.Sprintf("%s: %s (status %d): %v", e.Source, e.Kind, e.StatusCode, e.Err)
	case e.Kind == KindUpstreamNonSuccess:
		return fmt.Sprintf("%s: %s (status %d)", e.Source, e.Kind, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Source, e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Source, e.Kind)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// KindOf extracts the ErrorKind from anywhere in err's chain
func KindOf(err error) (ErrorKind, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return 0, false
}

// classifyTransportError maps an error from http.Client.Do to a kind
func classifyTransportError(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	return KindNetworkUnreachable
}
