package slides

import (
	"fmt"

	"github.com/benjaminschreck/go-slides/pkg/slides/pptx"
)

// Template is a prepared PPTX template. It holds the package bytes only, so it is safe
// for concurrent use; every render opens its own document from it.
type Template struct {
	name   string
	data   []byte
	slides int
}

// Name returns the path or label the template was prepared from.
func (t *Template) Name() string { return t.name }

// SlideCount returns the number of slides in the template.
func (t *Template) SlideCount() int { return t.slides }

// Open parses a fresh, private copy of the template.
func (t *Template) Open() (*pptx.Presentation, error) {
	pres, err := pptx.OpenBytes(t.data)
	if err != nil {
		return nil, NewDocumentError("open", t.name, err)
	}
	return pres, nil
}

func newTemplate(name string, data []byte) (*Template, error) {
	pres, err := pptx.OpenBytes(data)
	if err != nil {
		return nil, NewDocumentError("prepare", name, err)
	}
	if len(pres.Slides()) == 0 {
		return nil, NewDocumentError("prepare", name, fmt.Errorf("template has no slides"))
	}
	return &Template{name: name, data: data, slides: len(pres.Slides())}, nil
}
