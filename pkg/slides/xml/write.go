package xml

import (
	"bufio"
	"bytes"
	"io"
	"strings"
)

var (
	textEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
	)
	attrEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"\n", "&#xA;",
		"\r", "&#xD;",
		"\t", "&#x9;",
	)
)

// WriteTo serializes n and its descendants.
func (n *Node) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: bufio.NewWriter(w)}
	n.write(cw)
	if cw.err == nil {
		cw.err = cw.w.Flush()
	}
	return cw.n, cw.err
}

// Bytes serializes n into a new slice.
func (n *Node) Bytes() []byte {
	var buf bytes.Buffer
	n.WriteTo(&buf)
	return buf.Bytes()
}

// String serializes n. Handy in tests and log output.
func (n *Node) String() string {
	return string(n.Bytes())
}

func (n *Node) write(w *countingWriter) {
	switch n.Kind {
	case DocumentNode:
		for _, c := range n.Children {
			c.write(w)
		}
	case ElementNode:
		w.WriteString("<")
		w.WriteString(n.Name)
		for _, a := range n.Attrs {
			w.WriteString(" ")
			w.WriteString(qualifiedName(a.Name))
			w.WriteString(`="`)
			w.WriteString(attrEscaper.Replace(a.Value))
			w.WriteString(`"`)
		}
		if len(n.Children) == 0 {
			w.WriteString("/>")
			return
		}
		w.WriteString(">")
		for _, c := range n.Children {
			c.write(w)
		}
		w.WriteString("</")
		w.WriteString(n.Name)
		w.WriteString(">")
	case TextNode:
		w.WriteString(textEscaper.Replace(n.Data))
	case CommentNode:
		w.WriteString("<!--")
		w.WriteString(n.Data)
		w.WriteString("-->")
	case ProcInstNode:
		w.WriteString("<?")
		w.WriteString(n.Name)
		if n.Data != "" {
			w.WriteString(" ")
			w.WriteString(n.Data)
		}
		w.WriteString("?>")
	case DirectiveNode:
		w.WriteString("<!")
		w.WriteString(n.Data)
		w.WriteString(">")
	}
}

type countingWriter struct {
	w   *bufio.Writer
	n   int64
	err error
}

func (c *countingWriter) WriteString(s string) {
	if c.err != nil {
		return
	}
	k, err := c.w.WriteString(s)
	c.n += int64(k)
	c.err = err
}
