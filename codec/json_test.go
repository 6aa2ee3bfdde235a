package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJSONCodecRoundTrip(t *testing.T) {
	c := NewJSONCodec()

	text, err := c.Encode(map[string]any{"name": "ada", "age": float64(36)})
	assert.NoError(t, err)
	assert.Contains(t, text, "\"name\": \"ada\"")

	value, err := c.Decode(text)
	assert.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "ada", "age": float64(36)}, value)
}

func TestJSONCodecDecodeInvalid(t *testing.T) {
	c := NewJSONCodec()
	_, err := c.Decode("{not json")
	assert.Error(t, err)
}
