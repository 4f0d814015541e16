// Package deck wraps the gooxml presentation model behind the few operations
// slide assembly needs: open a template, add a slide from a layout, write text
// into the slide's placeholders, and save.
//
// Placeholders are exposed as regions ordered by placeholder index, so region 0
// is usually the title and region 1 the body of a layout.
package deck

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"

	"baliance.com/gooxml/presentation"
)

// Sentinel errors for deck operations.
var (
	ErrEmptyDocument = errors.New("deck: empty document")
	ErrOpen          = errors.New("deck: cannot open document")
	ErrLayoutRange   = errors.New("deck: layout index out of range")
	ErrRegionRange   = errors.New("deck: region index out of range")
)

// Deck is an in-memory presentation loaded from a template.
// A Deck is not safe for concurrent use.
type Deck struct {
	p       *presentation.Presentation
	layouts []presentation.SlideLayout
}

// Open parses a .pptx (or .potx) document.
func Open(data []byte) (d *Deck, err error) {
	if len(data) == 0 {
		return nil, ErrEmptyDocument
	}

	// gooxml panics on some malformed parts instead of returning an error.
	defer func() {
		if r := recover(); r != nil {
			d, err = nil, fmt.Errorf("%w: %v", ErrOpen, r)
		}
	}()

	p, err := presentation.Read(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpen, err)
	}
	return &Deck{p: p, layouts: p.SlideLayouts()}, nil
}

// LayoutCount returns the number of slide layouts in the template.
func (d *Deck) LayoutCount() int {
	return len(d.layouts)
}

// LayoutNames returns the layout names in index order.
func (d *Deck) LayoutNames() []string {
	names := make([]string, len(d.layouts))
	for i, l := range d.layouts {
		names[i] = l.Name()
	}
	return names
}

// SlideCount returns the number of slides currently in the deck.
func (d *Deck) SlideCount() int {
	return len(d.p.Slides())
}

// AddSlide appends a slide built from layout the way PowerPoint does:
// placeholders are copied with their prompt text cleared and the date,
// footer and slide number placeholders dropped.
func (d *Deck) AddSlide(layout int) (*Slide, error) {
	if layout < 0 || layout >= len(d.layouts) {
		return nil, fmt.Errorf("%w: %d (have %d)", ErrLayoutRange, layout, len(d.layouts))
	}

	s, err := d.p.AddDefaultSlideWithLayout(d.layouts[layout])
	if err != nil {
		return nil, fmt.Errorf("adding slide with layout %d: %w", layout, err)
	}

	regions := s.PlaceHolders()
	sort.SliceStable(regions, func(i, j int) bool {
		return regions[i].Index() < regions[j].Index()
	})
	return &Slide{regions: regions}, nil
}

// Save serializes the deck.
func (d *Deck) Save(w io.Writer) error {
	return d.p.Save(w)
}

// Slide is a slide added to a Deck.
type Slide struct {
	regions []presentation.PlaceHolder
}

// RegionCount returns the number of fillable placeholders on the slide.
func (s *Slide) RegionCount() int {
	return len(s.regions)
}

// SetText replaces the text of a region, one paragraph per line.
func (s *Slide) SetText(region int, lines []string) error {
	if region < 0 || region >= len(s.regions) {
		return fmt.Errorf("%w: %d (have %d)", ErrRegionRange, region, len(s.regions))
	}
	if len(lines) == 0 {
		lines = []string{""}
	}

	ph := s.regions[region]
	ph.ClearAll()
	for _, line := range lines {
		run := ph.AddParagraph().AddRun()
		run.SetText(line)
	}
	return nil
}
