package fs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/notebench/pkg/core"
)

// Serializer defines how a note is written to and read from a file format.
type Serializer interface {
	Marshal(n core.Note) ([]byte, error)
	Unmarshal(data []byte) (core.Note, error)
}

// DefaultSerializers returns the standard set of serializers keyed by extension.
func DefaultSerializers() map[string]Serializer {
	return map[string]Serializer{
		".json": JSONSerializer{},
		".yaml": YAMLSerializer{},
		".yml":  YAMLSerializer{},
		".cbor": CBORSerializer{},
	}
}

// record is the on-disk shape shared by every format.
type record struct {
	ID        string    `json:"id" yaml:"id" cbor:"id"`
	Title     string    `json:"title" yaml:"title" cbor:"title"`
	Content   string    `json:"content" yaml:"content" cbor:"content"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at" cbor:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at" cbor:"updated_at"`
}

func toRecord(n core.Note) record {
	return record(n)
}

func (r record) toNote() core.Note {
	n := core.Note(r)
	n.CreatedAt = n.CreatedAt.UTC()
	n.UpdatedAt = n.UpdatedAt.UTC()
	return n
}

// --- JSON Serializer ---

// JSONSerializer stores notes as indented JSON.
type JSONSerializer struct{}

func (JSONSerializer) Marshal(n core.Note) ([]byte, error) {
	return json.MarshalIndent(toRecord(n), "", "  ")
}

func (JSONSerializer) Unmarshal(data []byte) (core.Note, error) {
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return core.Note{}, fmt.Errorf("invalid json: %w", err)
	}
	return r.toNote(), nil
}

// --- YAML Serializer ---

// YAMLSerializer stores notes as YAML documents.
type YAMLSerializer struct{}

func (YAMLSerializer) Marshal(n core.Note) ([]byte, error) {
	return yaml.Marshal(toRecord(n))
}

func (YAMLSerializer) Unmarshal(data []byte) (core.Note, error) {
	var r record
	if err := yaml.Unmarshal(data, &r); err != nil {
		return core.Note{}, fmt.Errorf("invalid yaml: %w", err)
	}
	return r.toNote(), nil
}

// --- CBOR Serializer ---

// cborEncMode keeps sub-second timestamp precision (the default mode writes unix seconds).
var cborEncMode = func() cbor.EncMode {
	em, err := cbor.EncOptions{Time: cbor.TimeRFC3339Nano}.EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

// CBORSerializer stores notes as compact CBOR maps.
type CBORSerializer struct{}

func (CBORSerializer) Marshal(n core.Note) ([]byte, error) {
	return cborEncMode.Marshal(toRecord(n))
}

func (CBORSerializer) Unmarshal(data []byte) (core.Note, error) {
	var r record
	if err := cbor.Unmarshal(data, &r); err != nil {
		return core.Note{}, fmt.Errorf("invalid cbor: %w", err)
	}
	return r.toNote(), nil
}
