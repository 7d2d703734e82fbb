// Package render provides the pure helpers behind placeholder resolution.
//
// Nothing in this package touches a document. It works on strings and content values so the
// decision logic can be tested without building a presentation:
//
//   - text.go: {{name}} substitution and the n/a fallback for unresolved tokens
//   - table.go: table anchor recognition and schema inference for array-of-object values
//
// The slides package feeds paragraph text and anchor cell text through these helpers and
// applies the results to the slide XML.
//
// Example of resolving a paragraph:
//
//	res := render.ResolveText("Report {{jobid}} for {{owner}}", m, "n/a")
//	// res.Text == "Report J1 for n/a" when m only binds jobid
//
// Example of inferring a table:
//
//	name, ok := render.ParseTableAnchor("{{table:items}}", "{{table:", "}}")
//	v, found := m.Lookup(name)
//	schema, err := render.InferSchema(v, found, false)
//	rows, cols := schema.Dims()
package render
