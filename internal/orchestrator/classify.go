package orchestrator

import (
	"errors"
	"io/fs"

	"github.com/local/pdfbw/internal/filetype"
	"github.com/local/pdfbw/internal/pdfdoc"
	"github.com/local/pdfbw/internal/settings"
	"github.com/local/pdfbw/internal/source"
	"github.com/local/pdfbw/internal/transcoder"
)

// classify wraps err into an *Error for op, inferring the Kind from the
// errors produced by the pipeline stages. Already classified errors pass through.
func classify(op string, err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}

	out := &Error{Kind: KindUnknown, Page: -1, Op: op, Err: err}

	// Output write failures
	var oe *transcoder.OutputError
	if errors.As(err, &oe) {
		out.Kind = KindOutputUnwritable
		return out
	}

	// Per-page failures
	var pe *pdfdoc.PageError
	if errors.As(err, &pe) {
		out.Kind = KindRender
		out.Page = pe.Page
		return out
	}

	switch {
	case errors.Is(err, source.ErrNotFound), errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrPermission):
		out.Kind = KindInputNotFound
	case errors.Is(err, filetype.ErrNotPDF), errors.Is(err, transcoder.ErrOpen):
		out.Kind = KindMalformed
	case errors.Is(err, settings.ErrInvalidSize):
		out.Kind = KindInvalidConfig
	}
	return out
}
