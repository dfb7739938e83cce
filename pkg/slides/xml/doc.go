// Package xml provides an order-preserving XML tree for PPTX parts.
//
// PPTX files are ZIP archives of XML parts (slides, notes, the presentation
// itself). go-slides only edits small pieces of those parts: text runs, table
// rows, relationship ids. Everything it does not understand must survive a
// round trip untouched, so instead of mapping every PresentationML element to
// a struct this package keeps a generic tree.
//
// # Structure Organization
//
//   - node.go: Node, parsing and tree navigation/mutation
//   - write.go: serialization
//   - namespaces.go: namespace URIs and their conventional prefixes
//
// # Key Concepts
//
// Names are kept exactly as written, prefix included. Lookups therefore use
// qualified names:
//
//	doc, _ := xml.ParseBytes(slideXML)
//	for _, sp := range doc.Root().FindAll("p:sp") {
//	    if body := sp.Child("p:txBody"); body != nil {
//	        fmt.Println(body.Text())
//	    }
//	}
//
// This matches how PowerPoint and other producers write parts: the prefixes
// p, a and r are used consistently for PresentationML, DrawingML and
// relationships.
package xml
