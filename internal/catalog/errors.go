package catalog

import (
	"fmt"
)

// ErrorKind classifies a FetchError.
type ErrorKind int

const (
	// KindNetwork covers transport failures, including cancellation.
	KindNetwork ErrorKind = iota
	// KindStatus is a non-success HTTP status.
	KindStatus
	// KindDecode is a malformed or invalid payload.
	KindDecode
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// FetchError is the only error kind returned by Client requests.
type FetchError struct {
	Kind   ErrorKind
	Op     string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Kind == KindStatus {
		return fmt.Sprintf("%s: unexpected status code %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: %s error: %v", e.Op, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
