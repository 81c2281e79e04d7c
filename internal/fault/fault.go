// Package fault defines the closed error taxonomy surfaced by the
// analysis pipeline. Callers can switch exhaustively on Kind instead of
// string-matching wrapped errors.
package fault

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure.
type Kind int

const (
	// KindUnknown is the zero value; it never classifies a Fault built
	// through the constructors below.
	KindUnknown Kind = iota

	// KindInvalidInput rejects empty text, empty file lists, or non-PDF
	// uploads. No session is allocated.
	KindInvalidInput

	// KindQuotaExceeded rejects a request denied by the usage tracker.
	// No session is allocated.
	KindQuotaExceeded

	// KindDecode means a file could not be parsed as a PDF. Fatal to the
	// session that submitted it.
	KindDecode

	// KindRender means an individual page could not be rendered. The
	// rasterizer recovers from this by skipping the page; it only reaches
	// callers when every page of a document fails.
	KindRender

	// KindCollaborator means the external model call failed or returned
	// unparseable output. Fatal to the session.
	KindCollaborator

	// KindSuperseded means the session was cancelled or replaced while
	// the work was in flight. Internal only; never shown to users.
	KindSuperseded
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindQuotaExceeded:
		return "quota_exceeded"
	case KindDecode:
		return "decode_error"
	case KindRender:
		return "render_error"
	case KindCollaborator:
		return "collaborator_error"
	case KindSuperseded:
		return "superseded"
	default:
		return "unknown"
	}
}

// Fault is a classified pipeline error.
type Fault struct {
	Kind Kind
	Msg  string
	// WaitSeconds is set for quota denials caused by the cooldown.
	WaitSeconds int
	Err         error
}

func (f *Fault) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Msg, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Msg)
}

func (f *Fault) Unwrap() error {
	return f.Err
}

// New creates a Fault with the given kind and message.
func New(kind Kind, msg string) *Fault {
	return &Fault{Kind: kind, Msg: msg}
}

// Wrap creates a Fault around an underlying error.
func Wrap(kind Kind, msg string, err error) *Fault {
	return &Fault{Kind: kind, Msg: msg, Err: err}
}

// KindOf extracts the Kind from err, unwrapping as needed. Returns
// KindUnknown for non-Fault errors and nil.
func KindOf(err error) Kind {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind
	}
	return KindUnknown
}
