package xml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// NodeKind tells what a Node holds.
type NodeKind int

const (
	DocumentNode NodeKind = iota
	ElementNode
	TextNode
	CommentNode
	ProcInstNode
	DirectiveNode
)

// Node is one item of a parsed XML part.
//
// Element names and attribute names keep the prefix exactly as written in the
// source ("a:t", "r:id"), so a part can be written back without knowing every
// namespace it uses.
type Node struct {
	Kind     NodeKind
	Name     string
	Attrs    []xml.Attr
	Data     string
	Children []*Node
	Parent   *Node
}

// Parse reads a complete XML document.
func Parse(r io.Reader) (*Node, error) {
	d := xml.NewDecoder(r)
	doc := &Node{Kind: DocumentNode}
	current := doc

	for {
		tok, err := d.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &Node{
				Kind:  ElementNode,
				Name:  qualifiedName(t.Name),
				Attrs: copyAttrs(t.Attr),
			}
			current.AppendChild(el)
			current = el
		case xml.EndElement:
			if current.Kind != ElementNode || current.Name != qualifiedName(t.Name) {
				return nil, fmt.Errorf("parse xml: unexpected end element </%s>", qualifiedName(t.Name))
			}
			current = current.Parent
		case xml.CharData:
			current.AppendChild(&Node{Kind: TextNode, Data: string(t)})
		case xml.Comment:
			current.AppendChild(&Node{Kind: CommentNode, Data: string(t)})
		case xml.ProcInst:
			current.AppendChild(&Node{Kind: ProcInstNode, Name: t.Target, Data: string(t.Inst)})
		case xml.Directive:
			current.AppendChild(&Node{Kind: DirectiveNode, Data: string(t)})
		}
	}

	if current != doc {
		return nil, fmt.Errorf("parse xml: unclosed element <%s>", current.Name)
	}
	if doc.Root() == nil {
		return nil, errors.New("parse xml: no root element")
	}
	return doc, nil
}

// ParseBytes is Parse for an in-memory part.
func ParseBytes(data []byte) (*Node, error) {
	return Parse(bytes.NewReader(data))
}

// MustParseString parses s and panics on error. Meant for fixed snippets.
func MustParseString(s string) *Node {
	doc, err := Parse(strings.NewReader(s))
	if err != nil {
		panic(err)
	}
	return doc
}

func qualifiedName(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

func copyAttrs(attrs []xml.Attr) []xml.Attr {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]xml.Attr, len(attrs))
	copy(out, attrs)
	return out
}

// NewElement creates a detached element. name may carry a prefix.
func NewElement(name string, attrs ...string) *Node {
	n := &Node{Kind: ElementNode, Name: name}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.SetAttr(attrs[i], attrs[i+1])
	}
	return n
}

// NewText creates a detached text node.
func NewText(s string) *Node {
	return &Node{Kind: TextNode, Data: s}
}

// Root returns the document element of a document node, or n itself for an
// element.
func (n *Node) Root() *Node {
	if n.Kind == ElementNode {
		return n
	}
	for _, c := range n.Children {
		if c.Kind == ElementNode {
			return c
		}
	}
	return nil
}

// Local returns the element name without its prefix.
func (n *Node) Local() string {
	if i := strings.IndexByte(n.Name, ':'); i >= 0 {
		return n.Name[i+1:]
	}
	return n.Name
}

// Is reports whether n is an element with the given qualified name.
func (n *Node) Is(name string) bool {
	return n != nil && n.Kind == ElementNode && n.Name == name
}

// Elements returns the element children of n.
func (n *Node) Elements() []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Kind == ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// Child returns the first element child named name.
func (n *Node) Child(name string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Is(name) {
			return c
		}
	}
	return nil
}

// ChildrenNamed returns all element children named name.
func (n *Node) ChildrenNamed(name string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if c.Is(name) {
			out = append(out, c)
		}
	}
	return out
}

// Path follows a chain of child names, returning nil when a step is missing.
func (n *Node) Path(names ...string) *Node {
	cur := n
	for _, name := range names {
		cur = cur.Child(name)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// Find returns the first descendant element named name, depth first.
func (n *Node) Find(name string) *Node {
	var found *Node
	n.Walk(func(el *Node) bool {
		if found != nil {
			return false
		}
		if el != n && el.Is(name) {
			found = el
			return false
		}
		return true
	})
	return found
}

// FindAll returns every descendant element named name in document order.
// Matches are not searched for nested matches.
func (n *Node) FindAll(name string) []*Node {
	var out []*Node
	n.Walk(func(el *Node) bool {
		if el != n && el.Is(name) {
			out = append(out, el)
			return false
		}
		return true
	})
	return out
}

// Walk visits n and its element descendants depth first. Returning false from
// fn skips the children of that element.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil {
		return
	}
	if n.Kind == ElementNode || n.Kind == DocumentNode {
		if !fn(n) {
			return
		}
	}
	for _, c := range n.Children {
		if c.Kind == ElementNode {
			c.Walk(fn)
		}
	}
}

// Attr returns the value of the attribute with the given qualified name.
func (n *Node) Attr(name string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attrs {
		if qualifiedName(a.Name) == name {
			return a.Value, true
		}
	}
	return "", false
}

// AttrOr returns the attribute value or def when it is absent.
func (n *Node) AttrOr(name, def string) string {
	if v, ok := n.Attr(name); ok {
		return v
	}
	return def
}

// SetAttr sets or adds an attribute, keeping the position of an existing one.
func (n *Node) SetAttr(name, value string) {
	for i, a := range n.Attrs {
		if qualifiedName(a.Name) == name {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, xml.Attr{Name: splitName(name), Value: value})
}

// RemoveAttr deletes an attribute if present.
func (n *Node) RemoveAttr(name string) {
	for i, a := range n.Attrs {
		if qualifiedName(a.Name) == name {
			n.Attrs = append(n.Attrs[:i], n.Attrs[i+1:]...)
			return
		}
	}
}

func splitName(name string) xml.Name {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return xml.Name{Space: name[:i], Local: name[i+1:]}
	}
	return xml.Name{Local: name}
}

// Text returns the concatenated character data below n.
func (n *Node) Text() string {
	var sb strings.Builder
	n.collectText(&sb)
	return sb.String()
}

func (n *Node) collectText(sb *strings.Builder) {
	for _, c := range n.Children {
		switch c.Kind {
		case TextNode:
			sb.WriteString(c.Data)
		case ElementNode:
			c.collectText(sb)
		}
	}
}

// SetText replaces all children of n with a single text node.
func (n *Node) SetText(s string) {
	for _, c := range n.Children {
		c.Parent = nil
	}
	n.Children = nil
	if s != "" {
		n.AppendChild(NewText(s))
	}
}

// AppendChild adds c as the last child of n.
func (n *Node) AppendChild(c *Node) {
	c.detach()
	c.Parent = n
	n.Children = append(n.Children, c)
}

// InsertBefore inserts c before ref. A nil or foreign ref appends.
func (n *Node) InsertBefore(c, ref *Node) {
	idx := n.indexOf(ref)
	if idx < 0 {
		n.AppendChild(c)
		return
	}
	c.detach()
	idx = n.indexOf(ref)
	c.Parent = n
	n.Children = append(n.Children, nil)
	copy(n.Children[idx+1:], n.Children[idx:])
	n.Children[idx] = c
}

// InsertAfter inserts c directly after ref. A nil or foreign ref appends.
func (n *Node) InsertAfter(c, ref *Node) {
	idx := n.indexOf(ref)
	if idx < 0 || idx == len(n.Children)-1 {
		n.AppendChild(c)
		return
	}
	n.InsertBefore(c, n.Children[idx+1])
}

// PrependChild inserts c as the first child of n.
func (n *Node) PrependChild(c *Node) {
	if len(n.Children) == 0 {
		n.AppendChild(c)
		return
	}
	n.InsertBefore(c, n.Children[0])
}

// RemoveChild detaches c from n. It is a no-op if c is not a child of n.
func (n *Node) RemoveChild(c *Node) {
	idx := n.indexOf(c)
	if idx < 0 {
		return
	}
	n.Children = append(n.Children[:idx], n.Children[idx+1:]...)
	c.Parent = nil
}

// Remove detaches n from its parent.
func (n *Node) Remove() {
	n.detach()
}

func (n *Node) detach() {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

func (n *Node) indexOf(c *Node) int {
	if c == nil {
		return -1
	}
	for i, x := range n.Children {
		if x == c {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of n without a parent.
func (n *Node) Clone() *Node {
	c := &Node{
		Kind:  n.Kind,
		Name:  n.Name,
		Attrs: copyAttrs(n.Attrs),
		Data:  n.Data,
	}
	for _, child := range n.Children {
		cc := child.Clone()
		cc.Parent = c
		c.Children = append(c.Children, cc)
	}
	return c
}
