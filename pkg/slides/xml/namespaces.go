package xml

// Namespace URIs used by PresentationML packages.
const (
	NamespacePresentation  = "http://schemas.openxmlformats.org/presentationml/2006/main"
	NamespaceDrawing       = "http://schemas.openxmlformats.org/drawingml/2006/main"
	NamespaceRelationships = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	NamespaceTable         = "http://schemas.openxmlformats.org/drawingml/2006/table"
)

var prefixes = map[string]string{
	NamespacePresentation:  "p",
	NamespaceDrawing:       "a",
	NamespaceRelationships: "r",
	"http://schemas.openxmlformats.org/markup-compatibility/2006": "mc",
	"http://schemas.microsoft.com/office/powerpoint/2010/main":    "p14",
	"http://schemas.microsoft.com/office/powerpoint/2012/main":    "p15",
	"http://schemas.microsoft.com/office/drawing/2010/main":       "a14",
	"http://schemas.microsoft.com/office/drawing/2014/main":       "a16",
	"http://www.w3.org/XML/1998/namespace":                        "xml",
}

// prefixFor returns the conventional prefix for a namespace URI, or "" when
// the URI is unknown.
func prefixFor(uri string) string {
	return prefixes[uri]
}

// DeclareNamespaces adds xmlns declarations for the given URIs to el using
// their conventional prefixes. Existing declarations are left alone.
func DeclareNamespaces(el *Node, uris ...string) {
	for _, uri := range uris {
		prefix := prefixFor(uri)
		if prefix == "" {
			continue
		}
		if _, ok := el.Attr("xmlns:" + prefix); ok {
			continue
		}
		el.SetAttr("xmlns:"+prefix, uri)
	}
}
