package slides

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// RecordFormat is the encoding of a record file.
type RecordFormat string

const (
	FormatJSON RecordFormat = "json"
	FormatYAML RecordFormat = "yaml"
)

// FormatFromPath picks the record format from a file extension. Anything
// that is not .yaml/.yml is read as JSON (comments allowed).
func FormatFromPath(path string) RecordFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

type recordHeader struct {
	Type string `json:"type" yaml:"type"`
}

// newRecord returns a pointer to an empty record of the given kind.
func newRecord(kind SlideKind) (interface{}, bool) {
	switch kind {
	case KindTitle:
		return &TitleRecord{}, true
	case KindAgenda:
		return &AgendaRecord{}, true
	case KindSection:
		return &SectionRecord{}, true
	case KindBullet:
		return &BulletRecord{}, true
	case KindCompare:
		return &CompareRecord{}, true
	case KindTable:
		return &TableRecord{}, true
	case KindClosing:
		return &ClosingRecord{}, true
	default:
		return nil, false
	}
}

// deref turns the pointer from newRecord back into a Record value.
func deref(v interface{}) Record {
	switch r := v.(type) {
	case *TitleRecord:
		return *r
	case *AgendaRecord:
		return *r
	case *SectionRecord:
		return *r
	case *BulletRecord:
		return *r
	case *CompareRecord:
		return *r
	case *TableRecord:
		return *r
	case *ClosingRecord:
		return *r
	default:
		return nil
	}
}

// DecodeRecords decodes a list of slide records. Each record is an object
// with a "type" field naming its kind.
func DecodeRecords(data []byte, format RecordFormat) ([]Record, error) {
	switch format {
	case FormatYAML:
		return decodeYAMLRecords(data)
	case FormatJSON, "":
		return decodeJSONRecords(data)
	default:
		return nil, fmt.Errorf("unsupported record format %q", format)
	}
}

func decodeJSONRecords(data []byte) ([]Record, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(jsonc.ToJSON(data), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse records: %w", err)
	}

	records := make([]Record, 0, len(raw))
	for i, msg := range raw {
		var header recordHeader
		if err := json.Unmarshal(msg, &header); err != nil {
			return nil, NewRecordError(i, "", "record must be an object", err)
		}

		target, ok := newRecord(SlideKind(header.Type))
		if !ok {
			return nil, NewRecordError(i, header.Type, "unknown slide type", nil)
		}

		d := json.NewDecoder(bytes.NewReader(msg))
		if err := d.Decode(target); err != nil {
			return nil, NewRecordError(i, header.Type, "invalid fields", err)
		}
		records = append(records, deref(target))
	}
	return records, nil
}

func decodeYAMLRecords(data []byte) ([]Record, error) {
	var nodes []yaml.Node
	if err := yaml.Unmarshal(data, &nodes); err != nil {
		return nil, fmt.Errorf("failed to parse records: %w", err)
	}

	records := make([]Record, 0, len(nodes))
	for i := range nodes {
		node := &nodes[i]
		var header recordHeader
		if err := node.Decode(&header); err != nil {
			return nil, NewRecordError(i, "", "record must be a mapping", err)
		}

		target, ok := newRecord(SlideKind(header.Type))
		if !ok {
			return nil, NewRecordError(i, header.Type, "unknown slide type", nil)
		}
		if err := node.Decode(target); err != nil {
			return nil, NewRecordError(i, header.Type, "invalid fields", err)
		}
		records = append(records, deref(target))
	}
	return records, nil
}

// LoadRecordsFile reads a record file and loads spreadsheet-backed tables
// relative to the file's directory.
func LoadRecordsFile(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewDocumentError("read", path, err)
	}

	records, err := DecodeRecords(data, FormatFromPath(path))
	if err != nil {
		return nil, WithContext(err, "load records", map[string]interface{}{"file": path})
	}

	return ResolveTableSources(records, filepath.Dir(path))
}
