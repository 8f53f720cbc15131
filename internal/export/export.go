// Package export serializes annotations into a versioned JSON envelope and
// reads them back. Import is all-or-nothing: a document either validates in
// full (schema, geometry, and every shape record) or nothing is applied.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/guyo13/osdlabel-sub000/assets"
	"github.com/guyo13/osdlabel-sub000/internal/annotation"
	"github.com/guyo13/osdlabel-sub000/internal/sanitize"
)

// Version is the envelope version this build writes and accepts.
const Version = 1

// Document is the export envelope.
type Document struct {
	Version    int       `json:"version"`
	ExportedAt time.Time `json:"exportedAt"`
	Images     []Image   `json:"images"`
}

// Image groups one image's annotations. SourceURL is carried for
// interchange with consumers that resolve images by URL; the store does
// not track it, so round trips through Serialize leave it empty.
type Image struct {
	ImageID     string                  `json:"imageId"`
	SourceURL   string                  `json:"sourceUrl,omitempty"`
	Annotations []annotation.Annotation `json:"annotations"`
}

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func envelopeSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		const name = "export-v1.schema.json"
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(name, bytes.NewReader(assets.ExportSchemaV1())); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = compiler.Compile(name)
	})
	return schema, schemaErr
}

// Serialize writes every annotation in the store into an envelope.
func Serialize(store *annotation.Store, now time.Time) ([]byte, error) {
	doc := Document{
		Version:    Version,
		ExportedAt: now.UTC(),
	}
	for _, imageID := range store.ImageIDs() {
		doc.Images = append(doc.Images, Image{
			ImageID:     imageID,
			Annotations: store.ForImage(imageID),
		})
	}
	if doc.Images == nil {
		doc.Images = []Image{}
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Deserialize validates an envelope and returns its annotations with every
// shape record replaced by its sanitized form. Any single failure rejects
// the whole document.
func Deserialize(data []byte) ([]annotation.Annotation, error) {
	sch, err := envelopeSchema()
	if err != nil {
		return nil, fmt.Errorf("load envelope schema: %w", err)
	}

	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return nil, fmt.Errorf("parse export document: %w", err)
	}
	if obj, ok := instance.(map[string]any); ok {
		if v, ok := obj["version"].(float64); ok && int(v) != Version {
			return nil, fmt.Errorf("unsupported export version %d", int(v))
		}
	}
	if err := sch.Validate(instance); err != nil {
		return nil, fmt.Errorf("export document rejected by schema: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode export document: %w", err)
	}

	var anns []annotation.Annotation
	for _, img := range doc.Images {
		for _, a := range img.Annotations {
			if a.ImageID != img.ImageID {
				return nil, fmt.Errorf("annotation %s claims image %q inside group %q", a.ID, a.ImageID, img.ImageID)
			}
			if err := a.Geometry.Validate(); err != nil {
				return nil, fmt.Errorf("annotation %s: %w", a.ID, err)
			}
			clean, err := sanitize.Sanitize(a.Shape.Data)
			if err != nil {
				return nil, fmt.Errorf("annotation %s: %w", a.ID, err)
			}
			a.Shape.Data = clean
			anns = append(anns, a)
		}
	}
	return anns, nil
}

// Apply imports an envelope into the store, replacing its contents. The
// store is untouched when the document fails validation.
func Apply(store *annotation.Store, data []byte) (int, error) {
	anns, err := Deserialize(data)
	if err != nil {
		return 0, err
	}
	if err := store.Reload(anns); err != nil {
		return 0, err
	}
	return len(anns), nil
}
