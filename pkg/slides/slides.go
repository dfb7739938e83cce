package slides

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"
)

// PreparedTemplate is a template presentation loaded into memory and ready
// to generate decks. It is safe for concurrent use; every Generate call works
// on its own copy of the template.
type PreparedTemplate struct {
	source []byte
	config *Config
	closed bool
	mu     sync.Mutex

	// parsed once for inspection and validation, never modified
	presentation *Presentation
}

// prepare is the internal implementation of template preparation
func prepare(r io.Reader, config *Config) (*PreparedTemplate, error) {
	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, NewDocumentError("read", "template", err)
	}
	source := buf.Bytes()

	pres, err := OpenPresentation(bytes.NewReader(source), int64(len(source)))
	if err != nil {
		return nil, err
	}

	if config == nil {
		config = GetGlobalConfig()
	}

	GetLogger().WithFields(Fields{
		"slides": pres.NumSlides(),
		"bytes":  len(source),
	}).Debug("Prepared template")

	return &PreparedTemplate{
		source:       source,
		config:       config,
		presentation: pres,
	}, nil
}

// Presentation returns the parsed template. Callers must not modify it.
func (pt *PreparedTemplate) Presentation() *Presentation {
	return pt.presentation
}

// Config returns the configuration the template generates with.
func (pt *PreparedTemplate) Config() *Config {
	return pt.config
}

func (pt *PreparedTemplate) sourceBytes() ([]byte, error) {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	if pt.closed {
		return nil, fmt.Errorf("template is closed")
	}
	return pt.source, nil
}

// Generate builds a deck from records with the template's configuration and
// returns the PPTX package.
//
// Example:
//
//	records, err := slides.LoadRecordsFile("deck.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	reader, err := tmpl.Generate(records)
//	if err != nil {
//	    log.Fatal(err)
//	}
func (pt *PreparedTemplate) Generate(records []Record) (io.Reader, error) {
	return pt.GenerateWithConfig(records, pt.config)
}

// GenerateWithConfig is Generate with an explicit configuration.
func (pt *PreparedTemplate) GenerateWithConfig(records []Record, config *Config) (io.Reader, error) {
	if pt == nil {
		return nil, fmt.Errorf("invalid or nil template")
	}
	source, err := pt.sourceBytes()
	if err != nil {
		return nil, err
	}
	if config == nil {
		config = pt.config
	}

	data, err := generate(source, records, config)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}

// GenerateFile generates a deck and writes it to path.
func (pt *PreparedTemplate) GenerateFile(records []Record, path string) error {
	reader, err := pt.Generate(records)
	if err != nil {
		return err
	}

	out, err := os.Create(path)
	if err != nil {
		return NewDocumentError("create", path, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, reader); err != nil {
		return NewDocumentError("write", path, err)
	}
	return out.Close()
}

// Close releases the template. After calling Close, the template should not
// be used.
func (pt *PreparedTemplate) Close() error {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	if pt.closed {
		return nil
	}
	pt.closed = true
	pt.source = nil
	return nil
}
