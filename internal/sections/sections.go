// Package sections writes PowerPoint 2010 slide sections into a .pptx package.
//
// Sections live in the presentation part's extension list:
//
//	<p:extLst>
//	  <p:ext uri="{521415D9-36F7-43E2-AB2F-B90AF26B5E84}">
//	    <p14:sectionLst xmlns:p14="http://schemas.microsoft.com/office/powerpoint/2010/main">
//	      <p14:section name="Default" id="{GUID}">
//	        <p14:sldIdLst><p14:sldId id="256"/></p14:sldIdLst>
//	      </p14:section>
//	    </p14:sectionLst>
//	  </p:ext>
//	</p:extLst>
//
// The encoder patches the part in place at the byte level so that namespace
// prefixes and unrelated markup written by other tools survive untouched.
package sections

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ExtensionURI identifies the sections extension.
const ExtensionURI = "{521415D9-36F7-43E2-AB2F-B90AF26B5E84}"

// NamespaceP14 is the PowerPoint 2010 main namespace.
const NamespaceP14 = "http://schemas.microsoft.com/office/powerpoint/2010/main"

const (
	defaultMainPart  = "ppt/presentation.xml"
	rootRelsPart     = "_rels/.rels"
	officeDocRelType = "/officeDocument"
)

// Sentinel errors for section encoding.
var (
	ErrPackage      = errors.New("sections: invalid presentation package")
	ErrMainPart     = errors.New("sections: presentation part not found")
	ErrMalformed    = errors.New("sections: malformed presentation part")
	ErrUnknownSlide = errors.New("sections: slide position not in deck")
	ErrEmptyName    = errors.New("sections: empty section name")
)

// Group is a named section holding slides by position in the deck's slide list.
type Group struct {
	Name   string
	Slides []int
}

// Encoder writes section lists. The zero value is not usable; use NewEncoder.
type Encoder struct {
	// NewID returns a braced GUID for each section.
	NewID func() string
}

// NewEncoder returns an Encoder that assigns random GUIDs.
func NewEncoder() *Encoder {
	return &Encoder{NewID: NewGUID}
}

// NewGUID returns a random GUID in the braced upper-case form Office uses.
func NewGUID() string {
	return "{" + strings.ToUpper(uuid.NewString()) + "}"
}

// Annotate returns pkg with groups recorded as the presentation's sections.
// An existing sections extension is replaced; other extensions are kept.
// With no groups, pkg is returned unchanged.
func (e *Encoder) Annotate(ctx context.Context, pkg []byte, groups []Group) ([]byte, error) {
	if len(groups) == 0 {
		return pkg, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	zr, err := zip.NewReader(bytes.NewReader(pkg), int64(len(pkg)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPackage, err)
	}

	mainPart := findMainPart(zr)
	var main *zip.File
	for _, f := range zr.File {
		if f.Name == mainPart {
			main = f
			break
		}
	}
	if main == nil {
		return nil, fmt.Errorf("%w: %s", ErrMainPart, mainPart)
	}

	original, err := readPart(main)
	if err != nil {
		return nil, err
	}
	patched, err := e.patch(original, groups)
	if err != nil {
		return nil, err
	}

	return rewritePackage(zr, mainPart, patched)
}

// patch inserts the section list into a presentation part.
func (e *Encoder) patch(part []byte, groups []Group) ([]byte, error) {
	layout, err := scan(part)
	if err != nil {
		return nil, err
	}

	fragment, err := e.render(layout, groups)
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	out.Grow(len(part) + len(fragment) + 64)

	if layout.extLst == nil {
		// extLst is the last child of presentation, so it goes right before the
		// closing tag.
		out.Write(part[:layout.rootClose])
		out.WriteString("<" + layout.qualify("extLst") + ">")
		out.WriteString(fragment)
		out.WriteString("</" + layout.qualify("extLst") + ">")
		out.Write(part[layout.rootClose:])
		return out.Bytes(), nil
	}

	ext := layout.extLst
	if ext.selfClosing {
		out.Write(part[:ext.start])
		out.WriteString("<" + layout.qualify("extLst") + ">")
		out.WriteString(fragment)
		out.WriteString("</" + layout.qualify("extLst") + ">")
		out.Write(part[ext.end:])
		return out.Bytes(), nil
	}

	// Copy the list, dropping any previous sections extension, and append ours.
	cursor := 0
	for _, r := range ext.stale {
		out.Write(part[cursor:r.start])
		cursor = r.end
	}
	out.Write(part[cursor:ext.close])
	out.WriteString(fragment)
	out.Write(part[ext.close:])
	return out.Bytes(), nil
}

// render builds the <p:ext> element for groups.
func (e *Encoder) render(layout *partLayout, groups []Group) (string, error) {
	newID := e.NewID
	if newID == nil {
		newID = NewGUID
	}

	var b strings.Builder
	b.WriteString("<" + layout.qualify("ext") + ` uri="` + ExtensionURI + `">`)
	b.WriteString(`<p14:sectionLst xmlns:p14="` + NamespaceP14 + `">`)
	for _, g := range groups {
		if g.Name == "" {
			return "", ErrEmptyName
		}
		b.WriteString(`<p14:section name="`)
		b.WriteString(escapeAttr(g.Name))
		b.WriteString(`" id="`)
		b.WriteString(escapeAttr(newID()))
		b.WriteString(`"><p14:sldIdLst>`)
		for _, pos := range g.Slides {
			if pos < 0 || pos >= len(layout.slideIDs) {
				return "", fmt.Errorf("%w: %d in section %q (deck has %d)", ErrUnknownSlide, pos, g.Name, len(layout.slideIDs))
			}
			b.WriteString(`<p14:sldId id="`)
			b.WriteString(strconv.FormatUint(uint64(layout.slideIDs[pos]), 10))
			b.WriteString(`"/>`)
		}
		b.WriteString(`</p14:sldIdLst></p14:section>`)
	}
	b.WriteString(`</p14:sectionLst>`)
	b.WriteString("</" + layout.qualify("ext") + ">")
	return b.String(), nil
}

func escapeAttr(s string) string {
	var b strings.Builder
	// EscapeText only fails when the writer does.
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

// span is a byte range [start, end) in the part.
type span struct {
	start, end int
}

// extList locates the root's extension list.
type extList struct {
	start, end  int    // whole element
	close       int    // offset of the closing tag
	selfClosing bool   // <p:extLst/>
	stale       []span // previous sections extensions, in order
}

// partLayout is what scan learns about a presentation part.
type partLayout struct {
	prefix    string // namespace prefix of the root element, "" for default
	rootClose int    // offset of </p:presentation>
	slideIDs  []uint32
	extLst    *extList
}

func (l *partLayout) qualify(local string) string {
	if l.prefix == "" {
		return local
	}
	return l.prefix + ":" + local
}

// scan walks the part with a raw tokenizer, recording byte offsets.
func scan(part []byte) (*partLayout, error) {
	dec := xml.NewDecoder(bytes.NewReader(part))
	layout := &partLayout{rootClose: -1}

	depth := 0
	inSlideList := false
	var staleStart = -1

	for {
		start := int(dec.InputOffset())
		tok, err := dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		end := int(dec.InputOffset())

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch {
			case depth == 1:
				if t.Name.Local != "presentation" {
					return nil, fmt.Errorf("%w: root element %q", ErrMalformed, t.Name.Local)
				}
				layout.prefix = t.Name.Space
			case depth == 2 && t.Name.Local == "sldIdLst":
				inSlideList = true
			case depth == 3 && inSlideList && t.Name.Local == "sldId":
				id, err := slideID(t)
				if err != nil {
					return nil, err
				}
				layout.slideIDs = append(layout.slideIDs, id)
			case depth == 2 && t.Name.Local == "extLst":
				layout.extLst = &extList{start: start}
			case depth == 3 && layout.extLst != nil && layout.extLst.end == 0 &&
				t.Name.Local == "ext" && attr(t, "uri") == ExtensionURI:
				staleStart = start
			}

		case xml.EndElement:
			switch {
			case depth == 1:
				if start == end {
					return nil, fmt.Errorf("%w: empty presentation element", ErrMalformed)
				}
				layout.rootClose = start
			case depth == 2 && t.Name.Local == "sldIdLst":
				inSlideList = false
			case depth == 2 && t.Name.Local == "extLst" && layout.extLst != nil:
				layout.extLst.end = end
				layout.extLst.close = start
				layout.extLst.selfClosing = start == end
			case depth == 3 && staleStart >= 0:
				layout.extLst.stale = append(layout.extLst.stale, span{start: staleStart, end: end})
				staleStart = -1
			}
			depth--
		}
	}

	if layout.rootClose < 0 {
		return nil, fmt.Errorf("%w: missing presentation closing tag", ErrMalformed)
	}
	return layout, nil
}

func slideID(t xml.StartElement) (uint32, error) {
	v := attr(t, "id")
	id, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: slide id %q", ErrMalformed, v)
	}
	return uint32(id), nil
}

// attr returns an unprefixed attribute value.
func attr(t xml.StartElement, local string) string {
	for _, a := range t.Attr {
		if a.Name.Space == "" && a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// findMainPart resolves the presentation part from the package relationships,
// falling back to the conventional location.
func findMainPart(zr *zip.Reader) string {
	for _, f := range zr.File {
		if f.Name != rootRelsPart {
			continue
		}
		data, err := readPart(f)
		if err != nil {
			break
		}
		var rels struct {
			Relationship []struct {
				Type   string `xml:"Type,attr"`
				Target string `xml:"Target,attr"`
			} `xml:"Relationship"`
		}
		if err := xml.Unmarshal(data, &rels); err != nil {
			break
		}
		for _, r := range rels.Relationship {
			if strings.HasSuffix(r.Type, officeDocRelType) {
				return path.Clean(strings.TrimPrefix(r.Target, "/"))
			}
		}
	}
	return defaultMainPart
}

func readPart(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", ErrPackage, f.Name, err)
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrPackage, f.Name, err)
	}
	return data, nil
}

// rewritePackage copies every entry of zr, replacing the named part.
func rewritePackage(zr *zip.Reader, name string, content []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, f := range zr.File {
		if f.Name != name {
			if err := zw.Copy(f); err != nil {
				return nil, fmt.Errorf("%w: copying %s: %v", ErrPackage, f.Name, err)
			}
			continue
		}
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     f.Name,
			Method:   zip.Deflate,
			Modified: f.Modified,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPackage, err)
		}
		if _, err := w.Write(content); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPackage, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPackage, err)
	}
	return buf.Bytes(), nil
}
