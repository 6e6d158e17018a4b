package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		input   string
		want    Mode
		wantErr bool
	}{
		{"term", ModeTerm, false},
		{"fuzzy", ModeFuzzy, false},
		{"semantic", ModeSemantic, false},
		{"", "", true},
		{"TERM", "", true},
		{"regex", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMode(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidMode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestModeValid(t *testing.T) {
	assert.True(t, ModeTerm.Valid())
	assert.True(t, ModeFuzzy.Valid())
	assert.True(t, ModeSemantic.Valid())
	assert.False(t, Mode("hybrid").Valid())
	assert.False(t, Mode("").Valid())
}
