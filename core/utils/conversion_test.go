package utils

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToString(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string trimmed", "  abc ", "abc"},
		{"json number", json.Number("123456789"), "123456789"},
		{"integral float", float64(123456789), "123456789"},
		{"fractional float", 1.5, "1.5"},
		{"int", 42, "42"},
		{"bytes", []byte("x1"), "x1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToString(tt.in))
		})
	}
}

func TestToInt(t *testing.T) {
	assert.Equal(t, 7, ToInt(json.Number("7")))
	assert.Equal(t, 7, ToInt(" 7 "))
	assert.Equal(t, 3, ToInt(3.9))
	assert.Equal(t, 0, ToInt("abc"))
	assert.Equal(t, 0, ToInt(nil))
}

func TestToBool(t *testing.T) {
	assert.True(t, ToBool(true))
	assert.True(t, ToBool("Yes"))
	assert.True(t, ToBool(json.Number("1")))
	assert.True(t, ToBool(1))
	assert.False(t, ToBool("0"))
	assert.False(t, ToBool(nil))
}

func TestFirstString(t *testing.T) {
	m := map[string]any{"a": "", "b": json.Number("9"), "c": "z"}
	assert.Equal(t, "9", FirstString(m, "a", "b", "c"))
	assert.Equal(t, "", FirstString(m, "missing"))
}
