package slides

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"path"
	"strconv"
	"strings"
)

// Relationship types used by presentation parts
const (
	slideRelationshipType       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide"
	slideLayoutRelationshipType = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout"
	notesSlideRelationshipType  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/notesSlide"
	notesMasterRelationshipType = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/notesMaster"

	relationshipsNamespace = "http://schemas.openxmlformats.org/package/2006/relationships"
	contentTypesNamespace  = "http://schemas.openxmlformats.org/package/2006/content-types"

	slideContentType      = "application/vnd.openxmlformats-officedocument.presentationml.slide+xml"
	notesSlideContentType = "application/vnd.openxmlformats-officedocument.presentationml.notesSlide+xml"
)

// Relationship represents a relationship in the PPTX package
type Relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr,omitempty"`
}

// IsExternal reports whether the target lies outside the package
func (r Relationship) IsExternal() bool {
	return r.TargetMode == "External"
}

// Relationships represents the relationships file of one part
type Relationships struct {
	XMLName      xml.Name       `xml:"Relationships"`
	Namespace    string         `xml:"xmlns,attr"`
	Relationship []Relationship `xml:"Relationship"`
}

func parseRelationships(data []byte) (*Relationships, error) {
	var rels Relationships
	if err := xml.Unmarshal(data, &rels); err != nil {
		return nil, fmt.Errorf("failed to parse relationships: %w", err)
	}
	return &rels, nil
}

// Get returns the relationship with the given id
func (r *Relationships) Get(id string) (Relationship, bool) {
	for _, rel := range r.Relationship {
		if rel.ID == id {
			return rel, true
		}
	}
	return Relationship{}, false
}

// ByType returns all relationships of one type
func (r *Relationships) ByType(relType string) []Relationship {
	var out []Relationship
	for _, rel := range r.Relationship {
		if rel.Type == relType {
			out = append(out, rel)
		}
	}
	return out
}

// Add appends a relationship under the next free id and returns that id
func (r *Relationships) Add(relType, target string) string {
	id := r.nextID()
	r.Relationship = append(r.Relationship, Relationship{ID: id, Type: relType, Target: target})
	return id
}

// Remove deletes the relationship with the given id
func (r *Relationships) Remove(id string) {
	for i, rel := range r.Relationship {
		if rel.ID == id {
			r.Relationship = append(r.Relationship[:i], r.Relationship[i+1:]...)
			return
		}
	}
}

// nextID generates the next available relationship ID
func (r *Relationships) nextID() string {
	maxID := 0
	for _, rel := range r.Relationship {
		if strings.HasPrefix(rel.ID, "rId") {
			if id, err := strconv.Atoi(rel.ID[3:]); err == nil && id > maxID {
				maxID = id
			}
		}
	}
	return fmt.Sprintf("rId%d", maxID+1)
}

// Marshal renders the relationships part
func (r *Relationships) Marshal() ([]byte, error) {
	out := Relationships{
		XMLName:      xml.Name{Local: "Relationships"},
		Namespace:    relationshipsNamespace,
		Relationship: r.Relationship,
	}
	return marshalPart(out)
}

// ContentTypes is the [Content_Types].xml part
type ContentTypes struct {
	XMLName   xml.Name              `xml:"Types"`
	Namespace string                `xml:"xmlns,attr"`
	Defaults  []ContentTypeDefault  `xml:"Default"`
	Overrides []ContentTypeOverride `xml:"Override"`
}

// ContentTypeDefault maps a file extension to a content type
type ContentTypeDefault struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

// ContentTypeOverride sets the content type of a single part
type ContentTypeOverride struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

func parseContentTypes(data []byte) (*ContentTypes, error) {
	var ct ContentTypes
	if err := xml.Unmarshal(data, &ct); err != nil {
		return nil, fmt.Errorf("failed to parse content types: %w", err)
	}
	return &ct, nil
}

// TypeOf returns the content type of a part
func (ct *ContentTypes) TypeOf(partName string) string {
	for _, o := range ct.Overrides {
		if o.PartName == "/"+partName {
			return o.ContentType
		}
	}
	ext := strings.TrimPrefix(path.Ext(partName), ".")
	for _, d := range ct.Defaults {
		if strings.EqualFold(d.Extension, ext) {
			return d.ContentType
		}
	}
	return ""
}

// SetOverride adds or updates the override for a part
func (ct *ContentTypes) SetOverride(partName, contentType string) {
	name := "/" + partName
	for i, o := range ct.Overrides {
		if o.PartName == name {
			ct.Overrides[i].ContentType = contentType
			return
		}
	}
	ct.Overrides = append(ct.Overrides, ContentTypeOverride{PartName: name, ContentType: contentType})
}

// RemoveOverride drops the override for a part
func (ct *ContentTypes) RemoveOverride(partName string) {
	name := "/" + partName
	for i, o := range ct.Overrides {
		if o.PartName == name {
			ct.Overrides = append(ct.Overrides[:i], ct.Overrides[i+1:]...)
			return
		}
	}
}

// EnsureDefault registers an extension unless it is already known
func (ct *ContentTypes) EnsureDefault(ext, contentType string) {
	for _, d := range ct.Defaults {
		if strings.EqualFold(d.Extension, ext) {
			return
		}
	}
	ct.Defaults = append(ct.Defaults, ContentTypeDefault{Extension: ext, ContentType: contentType})
}

// Marshal renders the content types part
func (ct *ContentTypes) Marshal() ([]byte, error) {
	out := ContentTypes{
		XMLName:   xml.Name{Local: "Types"},
		Namespace: contentTypesNamespace,
		Defaults:  ct.Defaults,
		Overrides: ct.Overrides,
	}
	return marshalPart(out)
}

func marshalPart(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// nextPartName returns prefix+N+suffix for the smallest N above every
// existing part with the same prefix and suffix.
func nextPartName(parts map[string][]byte, prefix, suffix string) string {
	maxN := 0
	for name := range parts {
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, suffix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, prefix), suffix))
		if err == nil && n > maxN {
			maxN = n
		}
	}
	return fmt.Sprintf("%s%d%s", prefix, maxN+1, suffix)
}
