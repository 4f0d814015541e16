package pptgen

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/alnah/go-pptgen/internal/deck"
	"github.com/alnah/go-pptgen/internal/sections"
)

// Compile-time interface implementation checks.
var (
	_ document         = deckDocument{}
	_ slideRegions     = (*deck.Slide)(nil)
	_ SectionAnnotator = (*p14Annotator)(nil)
)

// document is the part of the presentation model the assembler drives.
type document interface {
	LayoutCount() int
	SlideCount() int
	AddSlide(layout int) (slideRegions, error)
	Save(w io.Writer) error
}

// slideRegions is a generated slide's placeholders, ordered by index.
type slideRegions interface {
	RegionCount() int
	SetText(region int, lines []string) error
}

type documentOpener func(data []byte) (document, error)

// assemblerConfig holds per-assembler settings.
type assemblerConfig struct {
	policy   LayoutPolicy
	sections bool
}

// Assembler builds presentations from a template and slide specs.
// An Assembler holds no per-request state and is safe for concurrent use;
// every call works on its own copy of the template.
type Assembler struct {
	cfg       assemblerConfig
	logger    *zap.Logger
	open      documentOpener
	annotator SectionAnnotator
}

// NewAssembler creates an Assembler with the fallback layout policy and
// PowerPoint 2010 sections enabled.
func NewAssembler(opts ...Option) *Assembler {
	a := &Assembler{
		cfg:       assemblerConfig{policy: LayoutFallback, sections: true},
		logger:    zap.NewNop(),
		open:      openDeck,
		annotator: &p14Annotator{enc: sections.NewEncoder()},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Policy returns the layout policy in effect.
func (a *Assembler) Policy() LayoutPolicy {
	return a.cfg.policy
}

// AssembleFile reads the template at path and assembles specs into it.
// A template that cannot be read yields ErrTemplateNotFound.
func (a *Assembler) AssembleFile(ctx context.Context, path string, specs []SlideSpec) (*Result, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- template path comes from service configuration
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrTemplateNotFound, path, err)
	}
	return a.Assemble(ctx, data, specs)
}

// Assemble appends one slide per spec to a copy of template and returns the
// serialized result. Only template loading and serialization fail the call;
// a spec that cannot be processed is logged, recorded in Result.Failures,
// and the remaining specs still run.
func (a *Assembler) Assemble(ctx context.Context, template []byte, specs []SlideSpec) (*Result, error) {
	if len(template) == 0 {
		return nil, fmt.Errorf("%w: empty template", ErrTemplateNotFound)
	}

	doc, err := a.open(template)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateInvalid, err)
	}

	result := &Result{TemplateSlides: doc.SlideCount()}
	var groups *SectionGrouping
	if a.cfg.sections {
		groups = NewSectionGrouping()
		result.Sections = groups
		// Every slide must belong to a section once a section list exists.
		for i := 0; i < result.TemplateSlides; i++ {
			groups.Assign("", i)
		}
	}

	for i, spec := range specs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		added, err := a.addSlide(doc, spec, groups)
		if added {
			result.Generated++
		}
		if err != nil {
			result.Failures = append(result.Failures, SlideFailure{Spec: i, Added: added, Err: err})
			a.logger.Warn("slide not fully generated",
				zap.Int("index", i),
				zap.Stringer("layout", spec.Layout),
				zap.Bool("added", added),
				zap.Error(err))
		}
	}

	out, err := save(doc)
	if err != nil {
		return nil, err
	}

	if groups != nil && groups.Len() > 0 {
		annotated, err := a.annotator.Annotate(ctx, out, groups.Sections())
		if err != nil {
			// The slides are fine; deliver them without sections.
			result.SectionsErr = fmt.Errorf("%w: %v", ErrSectionEncode, err)
			a.logger.Error("sections not written", zap.Int("sections", groups.Len()), zap.Error(err))
		} else {
			out = annotated
		}
	}

	result.Document = out
	a.logger.Debug("presentation assembled",
		zap.Int("template_slides", result.TemplateSlides),
		zap.Int("generated", result.Generated),
		zap.Int("failures", len(result.Failures)),
		zap.Int("bytes", len(out)))
	return result, nil
}

// addSlide processes one spec. added reports whether a slide was appended,
// which stays true when filling its text fails afterwards.
// Recovers from panics raised by the presentation model.
func (a *Assembler) addSlide(doc document, spec SlideSpec, groups *SectionGrouping) (added bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if spec.decodeErr != nil {
		return false, spec.decodeErr
	}

	layout, err := a.cfg.policy.resolve(spec.Layout, doc.LayoutCount())
	if err != nil {
		return false, err
	}

	position := doc.SlideCount()
	slide, err := doc.AddSlide(layout)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrSlideCreate, err)
	}
	added = true

	if groups != nil {
		groups.Assign(spec.Section, position)
	}

	return true, fillRegions(slide, spec)
}

// fillRegions writes the title into region 0 and the body into region 1.
// Missing text or missing regions leave the slide as the layout made it.
func fillRegions(s slideRegions, spec SlideSpec) error {
	n := s.RegionCount()
	if spec.Title != "" && n > TitleRegion {
		if err := s.SetText(TitleRegion, SplitLines(spec.Title)); err != nil {
			return fmt.Errorf("%w: title: %v", ErrRegionFill, err)
		}
	}
	if spec.Body != "" && n > BodyRegion {
		if err := s.SetText(BodyRegion, BodyLines(spec.Body)); err != nil {
			return fmt.Errorf("%w: body: %v", ErrRegionFill, err)
		}
	}
	return nil
}

// save serializes doc, recovering from panics in the presentation model.
func save(doc document) (out []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("%w: internal error: %v", ErrSerialize, r)
		}
	}()

	var buf bytes.Buffer
	if err := doc.Save(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialize, err)
	}
	return buf.Bytes(), nil
}

// deckDocument adapts *deck.Deck to document.
type deckDocument struct {
	*deck.Deck
}

func openDeck(data []byte) (document, error) {
	d, err := deck.Open(data)
	if err != nil {
		return nil, err
	}
	return deckDocument{d}, nil
}

func (d deckDocument) AddSlide(layout int) (slideRegions, error) {
	s, err := d.Deck.AddSlide(layout)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// p14Annotator is the default SectionAnnotator.
type p14Annotator struct {
	enc *sections.Encoder
}

func (p *p14Annotator) Annotate(ctx context.Context, doc []byte, secs []Section) ([]byte, error) {
	groups := make([]sections.Group, len(secs))
	for i, s := range secs {
		groups[i] = sections.Group(s)
	}
	return p.enc.Annotate(ctx, doc, groups)
}
