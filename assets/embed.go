// Package assets carries files compiled into the binary.
package assets

import (
	_ "embed"
)

// Embedded JSON schema for the version 1 export envelope.
//
//go:embed export-v1.schema.json
var exportSchemaV1 []byte

// ExportSchemaV1 returns a copy of the version 1 export envelope schema.
func ExportSchemaV1() []byte {
	out := make([]byte, len(exportSchemaV1))
	copy(out, exportSchemaV1)
	return out
}
