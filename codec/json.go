// Package codec provides concrete revtext.Codec implementations.
package codec

import (
	"encoding/json"
	"fmt"
)

// JSONCodec encodes and decodes values as indented JSON text, the format
// SnapshotGraph diffs character by character.
type JSONCodec struct {
	// Indent, if non-empty, is passed to json.MarshalIndent so that
	// successive snapshots of a changing value diff cleanly line by line.
	// Defaults to two spaces when empty.
	Indent string
}

// NewJSONCodec returns a JSONCodec using the default two-space indent.
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{Indent: "  "}
}

func (c *JSONCodec) Encode(value any) (string, error) {
	indent := c.Indent
	if indent == "" {
		indent = "  "
	}
	data, err := json.MarshalIndent(value, "", indent)
	if err != nil {
		return "", fmt.Errorf("codec: marshaling json: %w", err)
	}
	return string(data), nil
}

func (c *JSONCodec) Decode(text string) (any, error) {
	var value any
	if err := json.Unmarshal([]byte(text), &value); err != nil {
		return nil, fmt.Errorf("codec: unmarshaling json: %w", err)
	}
	return value, nil
}
