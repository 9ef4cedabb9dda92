package orchestrator

import (
	"errors"
	"fmt"
)

// Kind classifies conversion failures.
type Kind int

const (
	KindUnknown Kind = iota
	KindInputNotFound
	KindMalformed
	KindRender
	KindOutputUnwritable
	KindInvalidConfig
)

var kindNames = map[Kind]string{
	KindUnknown:          "unknown",
	KindInputNotFound:    "input_not_found",
	KindMalformed:        "malformed",
	KindRender:           "render",
	KindOutputUnwritable: "output_unwritable",
	KindInvalidConfig:    "invalid_config",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is a classified conversion failure. Page is zero-based and -1 when
// the failure is not tied to a page.
type Error struct {
	Kind Kind
	Page int
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Page >= 0 {
		return fmt.Sprintf("%s: page %d: %v", e.Op, e.Page+1, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err, or KindUnknown when err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// ErrBusy is returned by Start while another conversion is running.
var ErrBusy = errors.New("a conversion is already in progress")
