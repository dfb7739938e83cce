package slides

import (
	"archive/zip"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
)

const (
	contentTypesPart     = "[Content_Types].xml"
	presentationPart     = "ppt/presentation.xml"
	presentationRelsPart = "ppt/_rels/presentation.xml.rels"
)

// PptxReader handles reading the parts of a PPTX package
type PptxReader struct {
	reader *zip.Reader
	Parts  map[string]*zip.File
	order  []string
}

// NewPptxReader creates a new PPTX reader
func NewPptxReader(r io.ReaderAt, size int64) (*PptxReader, error) {
	zipReader, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to read zip file: %w", err)
	}

	pr := &PptxReader{
		reader: zipReader,
		Parts:  make(map[string]*zip.File),
	}

	// Index all parts by name, keeping archive order for writing back
	for _, file := range zipReader.File {
		if strings.HasSuffix(file.Name, "/") {
			continue
		}
		pr.Parts[file.Name] = file
		pr.order = append(pr.order, file.Name)
	}

	if _, ok := pr.Parts[presentationPart]; !ok {
		return nil, fmt.Errorf("not a valid PPTX file: missing %s", presentationPart)
	}
	if _, ok := pr.Parts[contentTypesPart]; !ok {
		return nil, fmt.Errorf("not a valid PPTX file: missing %s", contentTypesPart)
	}

	return pr, nil
}

// GetPart retrieves the content of a specific part
func (pr *PptxReader) GetPart(partName string) ([]byte, error) {
	file, ok := pr.Parts[partName]
	if !ok {
		return nil, fmt.Errorf("part %s not found", partName)
	}

	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open part %s: %w", partName, err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read part %s: %w", partName, err)
	}

	return content, nil
}

// GetRelationships retrieves relationships for a given part
func (pr *PptxReader) GetRelationships(partName string) ([]Relationship, error) {
	file, ok := pr.Parts[relsPartFor(partName)]
	if !ok {
		// Missing relationships file is not an error, just return empty
		return []Relationship{}, nil
	}

	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open relationships file: %w", err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read relationships file: %w", err)
	}

	rels, err := parseRelationships(content)
	if err != nil {
		return nil, err
	}
	return rels.Relationship, nil
}

// ListParts returns the part names in archive order
func (pr *PptxReader) ListParts() []string {
	parts := make([]string, len(pr.order))
	copy(parts, pr.order)
	return parts
}

// ReadAll loads every part into memory
func (pr *PptxReader) ReadAll() (map[string][]byte, error) {
	parts := make(map[string][]byte, len(pr.Parts))
	for _, name := range pr.order {
		content, err := pr.GetPart(name)
		if err != nil {
			return nil, err
		}
		parts[name] = content
	}
	return parts, nil
}

// relsPartFor converts a part name to its relationships part name,
// e.g. "ppt/slides/slide1.xml" -> "ppt/slides/_rels/slide1.xml.rels"
func relsPartFor(partName string) string {
	dir, base := path.Split(partName)
	return dir + "_rels/" + base + ".rels"
}

// resolveTarget turns a relationship target into a part name
func resolveTarget(sourcePart, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	return path.Clean(path.Join(path.Dir(sourcePart), target))
}

// relativeTarget is the inverse of resolveTarget
func relativeTarget(sourcePart, targetPart string) string {
	rel, err := filepath.Rel(filepath.FromSlash(path.Dir(sourcePart)), filepath.FromSlash(targetPart))
	if err != nil {
		return "/" + targetPart
	}
	return filepath.ToSlash(rel)
}

// writePackage writes parts as a zip archive. The content types part goes
// first; the rest follow order, then any parts missing from order.
func writePackage(w io.Writer, parts map[string][]byte, order []string) error {
	zw := zip.NewWriter(w)

	written := make(map[string]bool, len(parts))
	write := func(name string) error {
		content, ok := parts[name]
		if !ok || written[name] {
			return nil
		}
		written[name] = true
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", name, err)
		}
		if _, err := fw.Write(content); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
		return nil
	}

	if err := write(contentTypesPart); err != nil {
		return err
	}
	for _, name := range order {
		if err := write(name); err != nil {
			return err
		}
	}
	for name := range parts {
		if err := write(name); err != nil {
			return err
		}
	}

	return zw.Close()
}
