// Package pptgen builds PowerPoint presentations from JSON slide lists and a
// .pptx template.
//
// # Quick Start
//
// Decode a request and assemble it into a template:
//
//	req, err := pptgen.DecodeRequest(r.Body)
//	if err != nil {
//	    return err
//	}
//
//	asm := pptgen.NewAssembler()
//	result, err := asm.AssembleFile(ctx, "Template PowerPoint.pptx", req.Slides)
//	if err != nil {
//	    return err
//	}
//	os.WriteFile("Ibadah_Minggu.pptx", result.Document, 0o644)
//
// # Slide Specifications
//
// Each slide item names a template layout and optional text:
//
//	{"layout_idx": 1, "title": "Pujian", "body": "Bait 1\nBait 2", "section": "Pembukaan"}
//
// The fields judul and isi are accepted as aliases of title and body. Literal
// "\n" sequences in the body become line breaks. The title fills the slide's
// first placeholder and the body its second, placeholders being ordered by
// their index in the layout.
//
// # Layout Policy
//
// A layout_idx that is absent, malformed, or outside the template's layout
// list is resolved by the assembler's LayoutPolicy: LayoutFallback (default)
// uses the first layout, LayoutSkip drops the slide and records a
// SlideFailure.
//
// # Sections
//
// A slide with a section name starts that section; following slides without
// one continue it. Slides before the first named section, including the
// template's own slides, belong to DefaultSection. The grouping is written
// as a PowerPoint 2010 section list through a SectionAnnotator; use
// WithSectionAnnotator to swap the encoding or WithSections(false) to turn it
// off.
//
// # Error Handling
//
// Only an unreadable template or a failed save abort an assembly. Any other
// per-slide problem is logged and collected in Result.Failures:
//
//	if errors.Is(err, pptgen.ErrTemplateNotFound) {
//	    // template missing
//	}
package pptgen
