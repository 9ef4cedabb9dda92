package orchestrator

import "fmt"

// Status is a progress notification for a running conversion.
type Status struct {
	Progress float64 // 0..100
	Message  string
}

func (s Status) String() string { return fmt.Sprintf("%3.0f%% %s", s.Progress, s.Message) }

// Result is the outcome of a conversion.
type Result struct {
	OK      bool
	Copied  bool // input was already grayscale and copied byte for byte
	Pages   int  // pages transcoded; 0 for a copy
	Message string
	Err     error
}

// Kind returns the failure kind, or KindUnknown for a successful result.
func (r Result) Kind() Kind {
	if r.Err == nil {
		return KindUnknown
	}
	return KindOf(r.Err)
}

// label is the metrics label for the result.
func (r Result) label() string {
	switch {
	case r.OK && r.Copied:
		return "copied"
	case r.OK:
		return "converted"
	default:
		return r.Kind().String()
	}
}

const (
	msgChecking  = "Checking PDF format..."
	msgCopied    = "PDF is already grayscale - copied without changes"
	msgConverted = "Conversion complete"
)
