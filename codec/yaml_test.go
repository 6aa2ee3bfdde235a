package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestYAMLCodecRoundTrip(t *testing.T) {
	c := NewYAMLCodec()

	text, err := c.Encode(map[string]any{"name": "grace"})
	assert.NoError(t, err)
	assert.Contains(t, text, "name: grace")

	value, err := c.Decode(text)
	assert.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "grace"}, value)
}

func TestYAMLCodecDecodeInvalid(t *testing.T) {
	c := NewYAMLCodec()
	_, err := c.Decode("not: [valid yaml")
	assert.Error(t, err)
}
