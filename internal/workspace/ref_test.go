package workspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRef(t *testing.T) {
	tests := []struct {
		input   string
		want    Ref
		wantErr bool
	}{
		{"12/7/3", Ref{Workspace: "12", Object: "7", Version: 3}, false},
		{"rnaseq/de_set", Ref{Workspace: "rnaseq", Object: "de_set"}, false},
		{" rnaseq/de_set/2 ", Ref{Workspace: "rnaseq", Object: "de_set", Version: 2}, false},
		{"de_set", Ref{}, true},
		{"a/b/c/d", Ref{}, true},
		{"a//1", Ref{}, true},
		{"a/b/0", Ref{}, true},
		{"a/b/x", Ref{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRef(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRef)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRefString(t *testing.T) {
	assert.Equal(t, "1/2/3", Ref{Workspace: "1", Object: "2", Version: 3}.String())
	assert.Equal(t, "ws/obj", Ref{Workspace: "ws", Object: "obj"}.String())
}

func TestNumericID(t *testing.T) {
	id, ok := numericID("0042")
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)

	for _, s := range []string{"", "4a", "-1", "1.0"} {
		_, ok := numericID(s)
		assert.False(t, ok, s)
	}
}
