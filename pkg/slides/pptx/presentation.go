package pptx

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/beevik/etree"
)

const defaultPresentationPart = "ppt/presentation.xml"

// Presentation is an opened PPTX document. Slide XML is parsed eagerly and
// serialized back into the package on write; every other part is carried as is.
type Presentation struct {
	pkg    *Package
	part   string
	slides []*Slide
}

// Open reads a presentation from r.
func Open(r io.ReaderAt, size int64) (*Presentation, error) {
	pkg, err := ReadPackage(r, size)
	if err != nil {
		return nil, err
	}
	return newPresentation(pkg)
}

// OpenBytes reads a presentation held in memory.
func OpenBytes(data []byte) (*Presentation, error) {
	return Open(bytes.NewReader(data), int64(len(data)))
}

// OpenFile reads a presentation from disk.
func OpenFile(path string) (*Presentation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return OpenBytes(data)
}

func newPresentation(pkg *Package) (*Presentation, error) {
	part, err := mainPart(pkg)
	if err != nil {
		return nil, err
	}

	content, _ := pkg.Part(part)
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(content); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", part, err)
	}
	root := doc.Root()
	if !isElem(root, NamespaceMain, "presentation") {
		return nil, fmt.Errorf("%w: %s has no presentation root", ErrNotPresentation, part)
	}

	rels, err := pkg.Relationships(part)
	if err != nil {
		return nil, err
	}
	targets := make(map[string]string, len(rels))
	for _, rel := range rels {
		if rel.Type == relTypeSlide {
			targets[rel.ID] = resolveTarget(part, rel.Target)
		}
	}

	pres := &Presentation{pkg: pkg, part: part}
	for _, sldID := range children(child(root, NamespaceMain, "sldIdLst"), NamespaceMain, "sldId") {
		rid := relationshipID(sldID)
		target, ok := targets[rid]
		if !ok {
			return nil, fmt.Errorf("slide relationship %q not found in %s", rid, part)
		}
		data, ok := pkg.Part(target)
		if !ok {
			return nil, fmt.Errorf("slide part %s is missing", target)
		}
		slide, err := parseSlide(target, data)
		if err != nil {
			return nil, err
		}
		slide.index = len(pres.slides)
		pres.slides = append(pres.slides, slide)
	}

	return pres, nil
}

// mainPart finds the presentation part through the package relationships,
// falling back to the conventional location.
func mainPart(pkg *Package) (string, error) {
	rels, err := pkg.Relationships("")
	if err != nil {
		return "", err
	}
	for _, rel := range rels {
		if rel.Type == relTypeOfficeDocument {
			part := resolveTarget("", rel.Target)
			if _, ok := pkg.Part(part); ok {
				return part, nil
			}
		}
	}
	if _, ok := pkg.Part(defaultPresentationPart); ok {
		return defaultPresentationPart, nil
	}
	return "", ErrNotPresentation
}

func relationshipID(el *etree.Element) string {
	for i := range el.Attr {
		attr := &el.Attr[i]
		if attr.Key == "id" && attr.NamespaceURI() == NamespaceRelationship {
			return attr.Value
		}
	}
	return ""
}

// Slides returns the slides in presentation order.
func (p *Presentation) Slides() []*Slide {
	out := make([]*Slide, len(p.slides))
	copy(out, p.slides)
	return out
}

// Package exposes the underlying parts.
func (p *Presentation) Package() *Package {
	return p.pkg
}

// WriteTo serializes the presentation as a PPTX archive.
func (p *Presentation) WriteTo(w io.Writer) (int64, error) {
	for _, slide := range p.slides {
		data, err := slide.doc.WriteToBytes()
		if err != nil {
			return 0, fmt.Errorf("failed to serialize %s: %w", slide.part, err)
		}
		p.pkg.SetPart(slide.part, data)
	}
	return p.pkg.WriteTo(w)
}

// Bytes returns the serialized archive.
func (p *Presentation) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := p.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
