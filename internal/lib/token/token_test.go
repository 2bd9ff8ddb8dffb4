package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionID(t *testing.T) {
	seen := make(map[string]struct{})
	for range 100 {
		id, err := SessionID()
		require.NoError(t, err)
		assert.Len(t, id, 32)
		_, dup := seen[id]
		assert.False(t, dup, "session id must be unique")
		seen[id] = struct{}{}
	}
}

func TestCode(t *testing.T) {
	code, err := Code()
	require.NoError(t, err)
	assert.Len(t, code, 8)
	assert.Equal(t, Normalize(code), code)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "обрезает пробелы", in: "  ab12cd34  ", want: "AB12CD34"},
		{name: "поднимает регистр", in: "deadBEEF", want: "DEADBEEF"},
		{name: "пустая строка", in: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}
