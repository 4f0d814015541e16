package pptgen

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"baliance.com/gooxml/presentation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests run the gooxml document and the p14 encoder end to end against
// testdata/template.pptx: two layouts and one slide already in the deck.

func loadTestTemplate(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "template.pptx"))
	require.NoError(t, err)
	return data
}

func reopen(t *testing.T, doc []byte) *presentation.Presentation {
	t.Helper()
	p, err := presentation.Read(bytes.NewReader(doc), int64(len(doc)))
	require.NoError(t, err)
	return p
}

// regionText returns the paragraphs of the placeholder with index idx.
func regionText(t *testing.T, s presentation.Slide, idx uint32) []string {
	t.Helper()
	for _, ph := range s.PlaceHolders() {
		if ph.Index() != idx || ph.X().TxBody == nil {
			continue
		}
		var lines []string
		for _, p := range ph.X().TxBody.P {
			var sb strings.Builder
			for _, run := range p.EG_TextRun {
				if run.R != nil {
					sb.WriteString(run.R.T)
				}
			}
			lines = append(lines, sb.String())
		}
		return lines
	}
	t.Fatalf("placeholder %d not found", idx)
	return nil
}

type slideRef struct {
	ID uint32 `xml:"id,attr"`
}

// presentationPart is the part of ppt/presentation.xml the tests inspect.
// Tags match on local names, so the p and p14 prefixes do not matter.
type presentationPart struct {
	Slides   []slideRef `xml:"sldIdLst>sldId"`
	Sections []struct {
		Name   string     `xml:"name,attr"`
		Slides []slideRef `xml:"sldIdLst>sldId"`
	} `xml:"extLst>ext>sectionLst>section"`
}

func readPresentationPart(t *testing.T, doc []byte) presentationPart {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(doc), int64(len(doc)))
	require.NoError(t, err)

	for _, f := range zr.File {
		if f.Name != "ppt/presentation.xml" {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, rc.Close())
		require.NoError(t, err)

		var part presentationPart
		require.NoError(t, xml.Unmarshal(data, &part))
		return part
	}
	t.Fatal("ppt/presentation.xml not found")
	return presentationPart{}
}

func TestAssemble_Template_FillsSlides(t *testing.T) {
	t.Parallel()

	a := NewAssembler()
	result, err := a.Assemble(context.Background(), loadTestTemplate(t), []SlideSpec{
		{Layout: Layout(1), Title: "Pujian", Body: `Haleluya\nAmin`, Section: "Pujian"},
		{Layout: Layout(9), Title: "Fallback"},
		{Title: "Doa", Body: "Satu baris", Section: "Doa"},
	})
	require.NoError(t, err)
	require.NoError(t, result.SectionsErr)

	assert.Equal(t, 1, result.TemplateSlides)
	assert.Equal(t, 3, result.Generated)
	assert.Empty(t, result.Failures)

	slides := reopen(t, result.Document).Slides()
	require.Len(t, slides, 4)

	assert.Equal(t, []string{"Template"}, regionText(t, slides[0], 0))
	assert.Equal(t, []string{"Pujian"}, regionText(t, slides[1], 0))
	assert.Equal(t, []string{"Haleluya", "Amin"}, regionText(t, slides[1], 1))
	assert.Equal(t, []string{"Fallback"}, regionText(t, slides[2], 0))
	assert.Equal(t, []string{"Satu baris"}, regionText(t, slides[3], 1))
}

func TestAssemble_Template_SectionsReferenceSlideIDs(t *testing.T) {
	t.Parallel()

	a := NewAssembler()
	result, err := a.Assemble(context.Background(), loadTestTemplate(t), []SlideSpec{
		{Layout: Layout(1), Title: "Pujian", Section: "Pujian"},
		{Layout: Layout(1), Title: "Lanjutan"},
		{Layout: Layout(0), Title: "Doa", Section: "Doa"},
	})
	require.NoError(t, err)
	require.NoError(t, result.SectionsErr)

	part := readPresentationPart(t, result.Document)
	require.Len(t, part.Slides, 4)

	ids := func(positions ...int) []slideRef {
		refs := make([]slideRef, len(positions))
		for i, pos := range positions {
			refs[i] = part.Slides[pos]
		}
		return refs
	}

	require.Len(t, part.Sections, 3)
	assert.Equal(t, DefaultSection, part.Sections[0].Name)
	assert.Equal(t, ids(0), part.Sections[0].Slides)
	assert.Equal(t, "Pujian", part.Sections[1].Name)
	assert.Equal(t, ids(1, 2), part.Sections[1].Slides)
	assert.Equal(t, "Doa", part.Sections[2].Name)
	assert.Equal(t, ids(3), part.Sections[2].Slides)
}

func TestAssemble_Template_SkipPolicy(t *testing.T) {
	t.Parallel()

	a := NewAssembler(WithLayoutPolicy(LayoutSkip))
	result, err := a.Assemble(context.Background(), loadTestTemplate(t), []SlideSpec{
		{Layout: Layout(1), Title: "Kept"},
		{Layout: Layout(7), Title: "Dropped"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Generated)
	require.Len(t, result.Failures, 1)
	assert.ErrorIs(t, result.Failures[0].Err, ErrInvalidLayout)
	assert.Len(t, reopen(t, result.Document).Slides(), 2)
}

func TestAssemble_Template_EmptyListKeepsTemplateSlides(t *testing.T) {
	t.Parallel()

	a := NewAssembler(WithSections(false))
	result, err := a.Assemble(context.Background(), loadTestTemplate(t), nil)
	require.NoError(t, err)

	assert.Zero(t, result.Generated)
	assert.Len(t, reopen(t, result.Document).Slides(), 1)
	assert.Empty(t, readPresentationPart(t, result.Document).Sections)
}
