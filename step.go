package webcite

import "context"

// Outcome tells the pipeline runner what to do after a step.
type Outcome int

const (
	// Continue runs the next step.
	Continue Outcome = iota

	// Finish skips all remaining steps; the record is as complete as this
	// run will make it.
	Finish
)

func (o Outcome) String() string {
	switch o {
	case Continue:
		return "continue"
	case Finish:
		return "finish"
	}
	return "unknown"
}

// Step is one extraction step of the pipeline.
// A non-nil error aborts the whole capture.
type Step interface {
	Name() string
	Run(ctx context.Context, s *Session) (Outcome, error)
}

// Buffer is page content obtained for a capture.
type Buffer struct {
	// Content is the page content decoded as UTF-8.
	Content string

	// Source names the provider that produced the content ("local" or
	// "network").
	Source string

	// Location is the file path or URL the content came from.
	Location string
}

// BufferSource provides the page content of the current capture.
type BufferSource interface {
	Buffer(ctx context.Context) (*Buffer, error)
}

// Session is the per-capture state passed by reference through every step.
// It is owned by a single capture and never shared.
type Session struct {
	capture Capture
	buffers BufferSource

	// Fields is the capture's field store.
	Fields *Fields

	// Resolved holds the raw record text adopted from DOI resolution,
	// if any.
	Resolved string
}

// NewSession returns a session with an empty field store.
func NewSession(c Capture, buffers BufferSource) *Session {
	return &Session{
		capture: c,
		buffers: buffers,
		Fields:  NewFields(),
	}
}

// Capture returns the capture input.
func (s *Session) Capture() Capture {
	return s.capture
}

// Buffer returns the page content, fetching it on first use.
func (s *Session) Buffer(ctx context.Context) (*Buffer, error) {
	if s.buffers == nil {
		return nil, Errorf(EFETCH, "no content source for %s", s.capture.Link)
	}
	return s.buffers.Buffer(ctx)
}

// URL returns the current value of the url field, falling back to the raw
// link when the field has not been derived yet.
func (s *Session) URL() string {
	if u, ok := s.Fields.Get(FieldURL); ok {
		return u
	}
	return s.capture.Link
}
