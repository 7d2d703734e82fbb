package pptx

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/beevik/etree"
)

// ErrGeometry is returned when a shape has no readable position or extent.
var ErrGeometry = errors.New("shape geometry unavailable")

// Kind identifies the element behind a shape.
type Kind int

const (
	KindNone Kind = iota
	KindShape
	KindGroup
	KindGraphicFrame
	KindConnector
	KindPicture
	KindContentPart
)

var kindTags = map[string]Kind{
	"sp":           KindShape,
	"grpSp":        KindGroup,
	"graphicFrame": KindGraphicFrame,
	"cxnSp":        KindConnector,
	"pic":          KindPicture,
	"contentPart":  KindContentPart,
}

func kindOf(el *etree.Element) Kind {
	kind, ok := kindTags[el.Tag]
	if !ok || el.NamespaceURI() != NamespaceMain {
		return KindNone
	}
	return kind
}

// Geometry is a shape's position and size in EMU.
type Geometry struct {
	X, Y   int64
	CX, CY int64
}

// Shape is a top-level element of a slide's shape tree.
type Shape struct {
	slide *Slide
	el    *etree.Element
	kind  Kind
}

// Kind reports what kind of element the shape is.
func (s *Shape) Kind() Kind { return s.kind }

// Slide returns the slide holding the shape.
func (s *Shape) Slide() *Slide { return s.slide }

// nonVisual returns the cNvPr element, which every shape kind carries under its nv*Pr child.
func (s *Shape) nonVisual() *etree.Element {
	for _, c := range s.el.ChildElements() {
		if len(c.Tag) > 2 && c.Tag[:2] == "nv" && c.NamespaceURI() == NamespaceMain {
			return child(c, NamespaceMain, "cNvPr")
		}
	}
	return nil
}

// ID returns the cNvPr id, or 0 when absent.
func (s *Shape) ID() int {
	nv := s.nonVisual()
	if nv == nil {
		return 0
	}
	id, _ := strconv.Atoi(nv.SelectAttrValue("id", "0"))
	return id
}

// Name returns the cNvPr name.
func (s *Shape) Name() string {
	nv := s.nonVisual()
	if nv == nil {
		return ""
	}
	return nv.SelectAttrValue("name", "")
}

// HasTextFrame reports whether the shape is an sp with a text body.
func (s *Shape) HasTextFrame() bool {
	return s.kind == KindShape && child(s.el, NamespaceMain, "txBody") != nil
}

// TextFrame returns the shape's text body, or nil.
func (s *Shape) TextFrame() *TextFrame {
	if s.kind != KindShape {
		return nil
	}
	body := child(s.el, NamespaceMain, "txBody")
	if body == nil {
		return nil
	}
	return &TextFrame{slide: s.slide, el: body}
}

func (s *Shape) tableElement() *etree.Element {
	if s.kind != KindGraphicFrame {
		return nil
	}
	data := descend(s.el, NamespaceDrawing, "graphic", "graphicData")
	if data == nil {
		return nil
	}
	return child(data, NamespaceDrawing, "tbl")
}

// HasTable reports whether the shape is a graphic frame holding a table.
func (s *Shape) HasTable() bool {
	return s.tableElement() != nil
}

// Table returns the shape's table, or nil.
func (s *Shape) Table() *Table {
	tbl := s.tableElement()
	if tbl == nil {
		return nil
	}
	return &Table{slide: s.slide, el: tbl}
}

// Geometry reads the shape's offset and extent.
func (s *Shape) Geometry() (Geometry, error) {
	var xfrm *etree.Element
	switch s.kind {
	case KindGraphicFrame:
		xfrm = child(s.el, NamespaceMain, "xfrm")
	case KindGroup:
		xfrm = child(child(s.el, NamespaceMain, "grpSpPr"), NamespaceDrawing, "xfrm")
	default:
		xfrm = child(child(s.el, NamespaceMain, "spPr"), NamespaceDrawing, "xfrm")
	}

	off := child(xfrm, NamespaceDrawing, "off")
	ext := child(xfrm, NamespaceDrawing, "ext")
	if off == nil || ext == nil {
		return Geometry{}, fmt.Errorf("%w: %q has no xfrm", ErrGeometry, s.Name())
	}

	var g Geometry
	fields := []struct {
		el   *etree.Element
		attr string
		dst  *int64
	}{
		{off, "x", &g.X},
		{off, "y", &g.Y},
		{ext, "cx", &g.CX},
		{ext, "cy", &g.CY},
	}
	for _, f := range fields {
		v, err := strconv.ParseInt(f.el.SelectAttrValue(f.attr, ""), 10, 64)
		if err != nil {
			return Geometry{}, fmt.Errorf("%w: %q has invalid %s: %v", ErrGeometry, s.Name(), f.attr, err)
		}
		*f.dst = v
	}
	return g, nil
}
