package pptx

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/beevik/etree"
)

// ErrMalformedSlide is returned when a slide part lacks the shape tree.
var ErrMalformedSlide = errors.New("malformed slide")

// Slide is one parsed slide part.
type Slide struct {
	index int
	part  string
	doc   *etree.Document
	tree  *etree.Element

	// prefixes bound in this part
	p, a string
}

func parseSlide(part string, data []byte) (*Slide, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", part, err)
	}
	root := doc.Root()
	if !isElem(root, NamespaceMain, "sld") {
		return nil, fmt.Errorf("%w: %s has no sld root", ErrMalformedSlide, part)
	}
	tree := descend(root, NamespaceMain, "cSld", "spTree")
	if tree == nil {
		return nil, fmt.Errorf("%w: %s has no shape tree", ErrMalformedSlide, part)
	}

	return &Slide{
		part: part,
		doc:  doc,
		tree: tree,
		p:    prefixFor(root, NamespaceMain, "p"),
		a:    prefixFor(root, NamespaceDrawing, "a"),
	}, nil
}

// Index is the zero-based position of the slide in the presentation.
func (s *Slide) Index() int { return s.index }

// Part is the package part name, e.g. ppt/slides/slide1.xml.
func (s *Slide) Part() string { return s.part }

// Shapes returns a snapshot of the top-level shapes in z-order. Later
// structural edits do not change a snapshot already taken.
func (s *Slide) Shapes() []*Shape {
	var shapes []*Shape
	for _, el := range s.tree.ChildElements() {
		if kind := kindOf(el); kind != KindNone {
			shapes = append(shapes, &Shape{slide: s, el: el, kind: kind})
		}
	}
	return shapes
}

// RemoveShape detaches a shape from the slide.
func (s *Slide) RemoveShape(shape *Shape) error {
	if shape.slide != s || s.tree.RemoveChild(shape.el) == nil {
		return fmt.Errorf("shape %q is not on slide %d", shape.Name(), s.index+1)
	}
	return nil
}

// ReplaceWithTable removes old and inserts a rows x cols table frame with the
// given geometry at the same z-order position. The new frame gets the next
// free shape id and the name "Table N".
func (s *Slide) ReplaceWithTable(old *Shape, g Geometry, rows, cols int) (*Shape, error) {
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("invalid table size %dx%d", rows, cols)
	}
	at := childIndex(s.tree, old.el)
	if old.slide != s || at < 0 {
		return nil, fmt.Errorf("shape %q is not on slide %d", old.Name(), s.index+1)
	}
	s.tree.RemoveChildAt(at)

	id := s.nextShapeID()
	frame := s.newTableFrame(id, "Table "+strconv.Itoa(id-1), g, rows, cols)
	s.tree.InsertChildAt(at, frame)

	return &Shape{slide: s, el: frame, kind: KindGraphicFrame}, nil
}

// nextShapeID returns one more than the largest cNvPr id anywhere in the tree.
func (s *Slide) nextShapeID() int {
	maxID := 0
	var walk func(el *etree.Element)
	walk = func(el *etree.Element) {
		for _, c := range el.ChildElements() {
			if isElem(c, NamespaceMain, "cNvPr") {
				if id, err := strconv.Atoi(c.SelectAttrValue("id", "")); err == nil && id > maxID {
					maxID = id
				}
				continue
			}
			walk(c)
		}
	}
	walk(s.tree)
	return maxID + 1
}

func (s *Slide) pTag(local string) string { return qualify(s.p, local) }
func (s *Slide) aTag(local string) string { return qualify(s.a, local) }
