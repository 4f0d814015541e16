package pptgen

import "context"

// DefaultSection holds slides that precede any named section.
const DefaultSection = "Default"

// Section is a named, ordered group of slides.
// Slides are zero-based positions in the output deck's slide list.
type Section struct {
	Name   string
	Slides []int
}

// SectionAnnotator records sections on a serialized presentation.
// Implementations must leave the document otherwise unchanged.
type SectionAnnotator interface {
	Annotate(ctx context.Context, document []byte, sections []Section) ([]byte, error)
}

// SectionGrouping maps section names to slides, preserving the order in which
// sections were first introduced. The zero value is not usable; use
// NewSectionGrouping.
type SectionGrouping struct {
	order   []string
	slides  map[string][]int
	current string
}

// NewSectionGrouping returns an empty grouping whose active section is
// DefaultSection.
func NewSectionGrouping() *SectionGrouping {
	return &SectionGrouping{
		slides:  make(map[string][]int),
		current: DefaultSection,
	}
}

// Assign adds slide to a section and returns the section name used.
// A non-empty name becomes the active section; an empty name continues the
// active one.
func (g *SectionGrouping) Assign(name string, slide int) string {
	if name != "" {
		g.current = name
	}
	if _, ok := g.slides[g.current]; !ok {
		g.order = append(g.order, g.current)
	}
	g.slides[g.current] = append(g.slides[g.current], slide)
	return g.current
}

// Current returns the active section name.
func (g *SectionGrouping) Current() string {
	return g.current
}

// Len returns the number of sections holding at least one slide.
func (g *SectionGrouping) Len() int {
	return len(g.order)
}

// Lookup returns the slides of a section.
func (g *SectionGrouping) Lookup(name string) ([]int, bool) {
	s, ok := g.slides[name]
	if !ok {
		return nil, false
	}
	return append([]int(nil), s...), true
}

// Sections returns a copy of the grouping in introduction order.
func (g *SectionGrouping) Sections() []Section {
	out := make([]Section, 0, len(g.order))
	for _, name := range g.order {
		out = append(out, Section{
			Name:   name,
			Slides: append([]int(nil), g.slides[name]...),
		})
	}
	return out
}
