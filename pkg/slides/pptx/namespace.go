package pptx

import (
	"github.com/beevik/etree"
)

// Namespace URIs used by PresentationML parts.
const (
	NamespaceMain         = "http://schemas.openxmlformats.org/presentationml/2006/main"
	NamespaceDrawing      = "http://schemas.openxmlformats.org/drawingml/2006/main"
	NamespaceRelationship = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	NamespacePackageRels  = "http://schemas.openxmlformats.org/package/2006/relationships"

	// TableGraphicURI is the graphicData uri marking a DrawingML table.
	TableGraphicURI = "http://schemas.openxmlformats.org/drawingml/2006/table"

	relTypeOfficeDocument = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	relTypeSlide          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide"
)

// isElem reports whether el is the element local in namespace ns.
func isElem(el *etree.Element, ns, local string) bool {
	return el != nil && el.Tag == local && el.NamespaceURI() == ns
}

// child returns the first child element matching ns and local.
func child(el *etree.Element, ns, local string) *etree.Element {
	if el == nil {
		return nil
	}
	for _, c := range el.ChildElements() {
		if isElem(c, ns, local) {
			return c
		}
	}
	return nil
}

// children returns every child element matching ns and local.
func children(el *etree.Element, ns, local string) []*etree.Element {
	if el == nil {
		return nil
	}
	var out []*etree.Element
	for _, c := range el.ChildElements() {
		if isElem(c, ns, local) {
			out = append(out, c)
		}
	}
	return out
}

// descend follows a path of local names, all in namespace ns.
func descend(el *etree.Element, ns string, path ...string) *etree.Element {
	for _, local := range path {
		el = child(el, ns, local)
		if el == nil {
			return nil
		}
	}
	return el
}

// childIndex returns the position of el within parent.Child, or -1.
func childIndex(parent, el *etree.Element) int {
	if parent == nil {
		return -1
	}
	for i, tok := range parent.Child {
		if c, ok := tok.(*etree.Element); ok && c == el {
			return i
		}
	}
	return -1
}

// prefixFor returns the prefix root uses for ns, declaring fallback when ns is not bound.
func prefixFor(root *etree.Element, ns, fallback string) string {
	for _, attr := range root.Attr {
		if attr.Value != ns {
			continue
		}
		if attr.Space == "xmlns" {
			return attr.Key
		}
		if attr.Space == "" && attr.Key == "xmlns" {
			return ""
		}
	}
	root.CreateAttr("xmlns:"+fallback, ns)
	return fallback
}

func qualify(prefix, local string) string {
	if prefix == "" {
		return local
	}
	return prefix + ":" + local
}
