// Package slides renders PowerPoint (PPTX) templates from structured records.
//
// A template carries two kinds of placeholders:
//
//   - {{name}} tokens anywhere in the text of a shape. They are replaced with the
//     value bound to name, or with the fallback "n/a" when nothing is bound.
//   - tables whose top-left cell reads {{table:name}}. When name is bound to an array
//     of objects, the table is replaced by a new one sized to the data: a header row
//     from the first object's keys and one row per object.
//
// Each input row carries its values as a JSON object in a content field
// ("jeschro_content" by default). Every row also binds "jobid" and "jobdate".
//
// Basic Usage:
//
//	engine, err := slides.New(slides.WithLogger(logger))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	tmpl, err := engine.PrepareFile("template.pptx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	rows := []content.Row{
//	    {"jeschro_content": `{"customer":"Acme","items":[{"sku":"A1","qty":2}]}`},
//	}
//
//	out, err := os.Create("report.pptx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer out.Close()
//
//	report, err := engine.Render(ctx, tmpl, engine.NewJob("J-42"), rows, out)
//
// Render writes every row into one document. RenderEach writes one document per row.
//
// Sub-packages:
//
//   - content: JSON content values and the normalizer building per-row maps
//   - render: token substitution and table schema inference on plain values
//   - pptx: the PPTX document model
package slides
