package pptgen

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Region positions on a generated slide, after ordering placeholders by index.
const (
	TitleRegion = 0
	BodyRegion  = 1
)

// MaxSlidesPerRequest bounds a single request. The web client sends one
// service order (a few dozen slides); anything far above that is a mistake.
const MaxSlidesPerRequest = 1000

// LayoutPolicy decides what happens to a slide whose layout index is absent,
// malformed, or outside the template's layout list.
type LayoutPolicy int

const (
	// LayoutFallback uses the template's first layout.
	LayoutFallback LayoutPolicy = iota
	// LayoutSkip drops the slide and records the failure.
	LayoutSkip
)

// Layout policy names as accepted in configuration.
const (
	LayoutPolicyFallback = "fallback"
	LayoutPolicySkip     = "skip"
)

// ParseLayoutPolicy converts a configuration value to a LayoutPolicy.
// The empty string selects LayoutFallback.
func ParseLayoutPolicy(s string) (LayoutPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", LayoutPolicyFallback:
		return LayoutFallback, nil
	case LayoutPolicySkip:
		return LayoutSkip, nil
	default:
		return LayoutFallback, fmt.Errorf("%w: %q (must be %s or %s)", ErrUnknownPolicy, s, LayoutPolicyFallback, LayoutPolicySkip)
	}
}

func (p LayoutPolicy) String() string {
	if p == LayoutSkip {
		return LayoutPolicySkip
	}
	return LayoutPolicyFallback
}

// resolve maps a requested layout to an index in [0, count).
func (p LayoutPolicy) resolve(l LayoutIndex, count int) (int, error) {
	if count <= 0 {
		return 0, fmt.Errorf("%w: template has no layouts", ErrInvalidLayout)
	}
	if l.Present && !l.Invalid && l.Value >= 0 && l.Value < count {
		return l.Value, nil
	}
	if p == LayoutSkip {
		return 0, fmt.Errorf("%w: %s (template has %d)", ErrInvalidLayout, l, count)
	}
	return 0, nil
}

// LayoutIndex is the requested template layout of a slide.
// The zero value means the field was absent.
type LayoutIndex struct {
	Value   int
	Present bool
	Invalid bool // present but not an integer
}

// Layout returns a LayoutIndex requesting layout n.
func Layout(n int) LayoutIndex {
	return LayoutIndex{Value: n, Present: true}
}

func (l LayoutIndex) String() string {
	switch {
	case !l.Present:
		return "absent"
	case l.Invalid:
		return "invalid"
	default:
		return strconv.Itoa(l.Value)
	}
}

// UnmarshalJSON accepts a number or a numeric string. Anything else marks the
// index invalid instead of failing the whole request.
func (l *LayoutIndex) UnmarshalJSON(data []byte) error {
	*l = LayoutIndex{}
	raw := bytes.TrimSpace(data)
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	l.Present = true

	text := string(raw)
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			l.Invalid = true
			return nil
		}
		text = strings.TrimSpace(s)
	}

	if n, err := strconv.Atoi(text); err == nil {
		l.Value = n
		return nil
	}
	// 1.0 from loosely typed clients
	if f, err := strconv.ParseFloat(text, 64); err == nil && f == math.Trunc(f) && math.Abs(f) < math.MaxInt32 {
		l.Value = int(f)
		return nil
	}
	l.Invalid = true
	return nil
}

// MarshalJSON writes absent and invalid indexes as null.
func (l LayoutIndex) MarshalJSON() ([]byte, error) {
	if !l.Present || l.Invalid {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(l.Value)), nil
}

// SlideSpec describes one slide to generate.
type SlideSpec struct {
	Layout  LayoutIndex
	Title   string
	Body    string // "\n" escape sequences become line breaks
	Section string // starts or continues a named section

	// decodeErr is set when the JSON item could not be read as a slide.
	// The assembler skips such specs instead of failing the batch.
	decodeErr error
}

// slideSpecJSON is the wire shape. judul/isi are the field names used by the
// original web client.
type slideSpecJSON struct {
	LayoutIdx LayoutIndex `json:"layout_idx"`
	Title     textField   `json:"title"`
	Judul     textField   `json:"judul"`
	Body      textField   `json:"body"`
	Isi       textField   `json:"isi"`
	Section   textField   `json:"section"`
}

// UnmarshalJSON reads a slide item. A malformed item never returns an error;
// it is recorded on the SlideSpec so that one bad slide does not reject the batch.
func (s *SlideSpec) UnmarshalJSON(data []byte) error {
	*s = SlideSpec{}
	var w slideSpecJSON
	if err := json.Unmarshal(data, &w); err != nil {
		s.decodeErr = fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		return nil
	}

	s.Layout = w.LayoutIdx
	s.Title = firstNonEmpty(w.Title.value, w.Judul.value)
	s.Body = firstNonEmpty(w.Body.value, w.Isi.value)
	s.Section = strings.TrimSpace(w.Section.value)

	for _, f := range []textField{w.Title, w.Judul, w.Body, w.Isi, w.Section} {
		if f.err != nil {
			s.decodeErr = fmt.Errorf("%w: %v", ErrInvalidRequest, f.err)
			break
		}
	}
	return nil
}

// MarshalJSON writes the English field names.
func (s SlideSpec) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		LayoutIdx LayoutIndex `json:"layout_idx"`
		Title     string      `json:"title,omitempty"`
		Body      string      `json:"body,omitempty"`
		Section   string      `json:"section,omitempty"`
	}{s.Layout, s.Title, s.Body, s.Section})
}

// Err reports why the item could not be decoded, or nil.
func (s SlideSpec) Err() error {
	return s.decodeErr
}

// textField accepts strings, numbers and booleans as text.
type textField struct {
	value string
	err   error
}

func (t *textField) UnmarshalJSON(data []byte) error {
	*t = textField{}
	raw := bytes.TrimSpace(data)
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	switch raw[0] {
	case '"':
		if err := json.Unmarshal(raw, &t.value); err != nil {
			t.err = err
		}
	case '{', '[':
		t.err = fmt.Errorf("expected text, got %s", kindOf(raw[0]))
	default:
		// number or boolean literal
		t.value = string(raw)
	}
	return nil
}

func kindOf(b byte) string {
	if b == '{' {
		return "object"
	}
	return "array"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Request is the body of a generate call.
type Request struct {
	Slides []SlideSpec `json:"slides"`
}

// DecodeRequest reads a Request from JSON. The slides field is required;
// an empty list is valid.
func DecodeRequest(r io.Reader) (*Request, error) {
	var wire struct {
		Slides *[]SlideSpec `json:"slides"`
	}
	dec := json.NewDecoder(r)
	if err := dec.Decode(&wire); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if wire.Slides == nil {
		return nil, fmt.Errorf("%w: missing slides", ErrInvalidRequest)
	}
	if len(*wire.Slides) > MaxSlidesPerRequest {
		return nil, fmt.Errorf("%w: %d slides (max %d)", ErrInvalidRequest, len(*wire.Slides), MaxSlidesPerRequest)
	}
	return &Request{Slides: *wire.Slides}, nil
}

// SlideFailure records a spec that could not be processed completely.
type SlideFailure struct {
	Spec  int   // position in the request
	Added bool  // slide exists in the output but some text is missing
	Err   error // cause
}

// Result is the outcome of one assembly.
type Result struct {
	Document       []byte           // serialized .pptx
	TemplateSlides int              // slides already present in the template
	Generated      int              // slides appended from specs
	Failures       []SlideFailure   // per-slide problems, in spec order
	Sections       *SectionGrouping // nil when sections are disabled
	SectionsErr    error            // sections could not be written; Document has none
}

// Skipped returns the number of specs that produced no slide.
func (r *Result) Skipped() int {
	n := 0
	for _, f := range r.Failures {
		if !f.Added {
			n++
		}
	}
	return n
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithLogger sets the logger used for per-slide failures.
func WithLogger(l *zap.Logger) Option {
	return func(a *Assembler) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithLayoutPolicy sets how unresolvable layout indexes are handled.
func WithLayoutPolicy(p LayoutPolicy) Option {
	return func(a *Assembler) {
		a.cfg.policy = p
	}
}

// WithSections enables or disables section recording and encoding.
func WithSections(enabled bool) Option {
	return func(a *Assembler) {
		a.cfg.sections = enabled
	}
}

// WithSectionAnnotator replaces the default PowerPoint 2010 section encoder.
func WithSectionAnnotator(s SectionAnnotator) Option {
	return func(a *Assembler) {
		if s != nil {
			a.annotator = s
		}
	}
}
