package market

import (
	"errors"
	"fmt"

	"cryptoconvert/pkg/coingecko"
	"cryptoconvert/pkg/exchangerate"
)

// FailureKind classifies why a fetch produced no data.
type FailureKind int

const (
	// FailureTransport covers network errors, timeouts and cancellation.
	FailureTransport FailureKind = iota
	// FailureUpstreamStatus is a non-2xx answer from the provider.
	FailureUpstreamStatus
	// FailureDecode is a body that could not be parsed.
	FailureDecode
)

func (k FailureKind) String() string {
	switch k {
	case FailureUpstreamStatus:
		return "upstream-status"
	case FailureDecode:
		return "decode"
	default:
		return "transport"
	}
}

// FetchError is returned by the Fetch* operations.
type FetchError struct {
	Op   string
	Kind FailureKind
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("market %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func newFetchError(op string, err error) error {
	var (
		cgStatus *coingecko.StatusError
		erStatus *exchangerate.StatusError
		existing *FetchError
	)
	kind := FailureTransport
	switch {
	case errors.As(err, &existing):
		return err
	case errors.As(err, &cgStatus), errors.As(err, &erStatus):
		kind = FailureUpstreamStatus
	case errors.Is(err, coingecko.ErrDecode), errors.Is(err, exchangerate.ErrDecode):
		kind = FailureDecode
	}
	return &FetchError{Op: op, Kind: kind, Err: err}
}
