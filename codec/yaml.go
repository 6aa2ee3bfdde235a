package codec

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// YAMLCodec encodes and decodes values as YAML text. Callers who want a
// human-diffable, comment-tolerant snapshot text choose this over
// JSONCodec; the SnapshotGraph itself is indifferent to which Codec a
// RepositoryFacade is built with.
type YAMLCodec struct{}

// NewYAMLCodec returns a YAMLCodec.
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

func (c *YAMLCodec) Encode(value any) (string, error) {
	data, err := yaml.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("codec: marshaling yaml: %w", err)
	}
	return string(data), nil
}

func (c *YAMLCodec) Decode(text string) (any, error) {
	var value any
	if err := yaml.Unmarshal([]byte(text), &value); err != nil {
		return nil, fmt.Errorf("codec: unmarshaling yaml: %w", err)
	}
	return value, nil
}
