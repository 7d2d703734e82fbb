// Package pptx is a small document model over PowerPoint packages.
//
// A Presentation keeps every archive part as raw bytes and parses only the slide
// parts, using etree so namespace prefixes and unknown markup survive a round trip.
// The model covers what placeholder rendering needs:
//
//   - slides in sldIdLst order
//   - top-level shapes with their name, id and geometry
//   - text frames, paragraphs and runs with size and bold
//   - tables, cells and table style ids
//   - replacing a shape with a new table frame at the same z-order position
//
// Example:
//
//	pres, err := pptx.OpenFile("deck.pptx")
//	if err != nil {
//		return err
//	}
//	for _, slide := range pres.Slides() {
//		for _, shape := range slide.Shapes() {
//			if shape.HasTable() {
//				fmt.Println(shape.Name(), shape.Table().Cell(0, 0).Text())
//			}
//		}
//	}
//	_, err = pres.WriteTo(out)
package pptx
