package session

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

// TestDecodeUTF8Passthrough verifies valid UTF-8 is returned untouched.
func TestDecodeUTF8Passthrough(t *testing.T) {
	assert.Equal(t, "hello, 世界", DecodeChunk([]byte("hello, 世界")))
	assert.Equal(t, "", DecodeChunk(nil))
}

// TestDecodeGBK verifies the GBK step of the cascade.
func TestDecodeGBK(t *testing.T) {
	// "你好" in GBK; invalid as UTF-8.
	gbk := []byte{0xc4, 0xe3, 0xba, 0xc3}
	assert.False(t, utf8.Valid(gbk))
	assert.Equal(t, "你好", DecodeChunk(gbk))
}

// TestDecodeNeverFails verifies the permissive fallback: any byte input
// produces valid UTF-8, never an error.
func TestDecodeNeverFails(t *testing.T) {
	inputs := [][]byte{
		{0x80},
		{0xff, 0xfe, 0xfd},
		{0xc4},             // lone GBK lead byte
		{0x1b, 0x5b, 0x80}, // escape sequence with a stray high byte
	}
	for _, in := range inputs {
		out := DecodeChunk(in)
		assert.True(t, utf8.ValidString(out), "input %x decoded to invalid UTF-8", in)
		assert.NotEmpty(t, out, "input %x decoded to nothing", in)
	}
}
