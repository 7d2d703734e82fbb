package pptx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"
)

// ErrNotPresentation is returned for archives that carry no presentation part.
var ErrNotPresentation = errors.New("not a valid PPTX file")

// Package is the set of parts inside a PPTX archive, kept in archive order.
type Package struct {
	order   []string
	parts   map[string][]byte
	headers map[string]zip.FileHeader
}

// Relationship represents a relationship in the package
type Relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr,omitempty"`
}

// Relationships represents the collection of relationships
type Relationships struct {
	XMLName      xml.Name       `xml:"Relationships"`
	Namespace    string         `xml:"xmlns,attr"`
	Relationship []Relationship `xml:"Relationship"`
}

// ReadPackage loads every part of the archive into memory.
func ReadPackage(r io.ReaderAt, size int64) (*Package, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to read zip file: %w", err)
	}

	pkg := &Package{
		parts:   make(map[string][]byte, len(zr.File)),
		headers: make(map[string]zip.FileHeader, len(zr.File)),
	}

	for _, file := range zr.File {
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open part %s: %w", file.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read part %s: %w", file.Name, err)
		}
		pkg.order = append(pkg.order, file.Name)
		pkg.parts[file.Name] = content
		pkg.headers[file.Name] = file.FileHeader
	}

	return pkg, nil
}

// Part returns the content of a part.
func (p *Package) Part(name string) ([]byte, bool) {
	content, ok := p.parts[name]
	return content, ok
}

// SetPart replaces the content of an existing part or appends a new one.
func (p *Package) SetPart(name string, content []byte) {
	if _, ok := p.parts[name]; !ok {
		p.order = append(p.order, name)
		p.headers[name] = zip.FileHeader{Name: name, Method: zip.Deflate, Modified: time.Now()}
	}
	p.parts[name] = content
}

// PartNames lists the parts in archive order.
func (p *Package) PartNames() []string {
	names := make([]string, len(p.order))
	copy(names, p.order)
	return names
}

// Relationships returns the relationships declared for a part. A part without a
// relationships part has none.
func (p *Package) Relationships(partName string) ([]Relationship, error) {
	content, ok := p.parts[relsPartName(partName)]
	if !ok {
		return []Relationship{}, nil
	}

	var rels Relationships
	if err := xml.Unmarshal(content, &rels); err != nil {
		return nil, fmt.Errorf("failed to parse relationships of %s: %w", partName, err)
	}
	return rels.Relationship, nil
}

// relsPartName maps "ppt/presentation.xml" to "ppt/_rels/presentation.xml.rels" and
// the package root "" to "_rels/.rels".
func relsPartName(partName string) string {
	dir, base := path.Split(partName)
	return dir + "_rels/" + base + ".rels"
}

// resolveTarget resolves a relationship target against the part declaring it.
func resolveTarget(source, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Join(path.Dir(source), target)
}

// WriteTo writes the package as a zip archive, parts in their original order.
func (p *Package) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	zw := zip.NewWriter(cw)

	for _, name := range p.order {
		src := p.headers[name]
		hdr := zip.FileHeader{
			Name:     name,
			Method:   src.Method,
			Modified: src.Modified,
		}
		fw, err := zw.CreateHeader(&hdr)
		if err != nil {
			return cw.n, fmt.Errorf("failed to create %s: %w", name, err)
		}
		if _, err := fw.Write(p.parts[name]); err != nil {
			return cw.n, fmt.Errorf("failed to write %s: %w", name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return cw.n, fmt.Errorf("failed to finish archive: %w", err)
	}
	return cw.n, nil
}

// ReadPackageFile reads a package from a file path.
func ReadPackageFile(path string) (*Package, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return ReadPackage(bytes.NewReader(content), int64(len(content)))
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(b []byte) (int, error) {
	n, err := c.w.Write(b)
	c.n += int64(n)
	return n, err
}
