package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeStudentID(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "plain id", raw: "STU001", want: "STU001"},
		{name: "trims whitespace", raw: "  STU001\n", want: "STU001"},
		{name: "arbitrary scanned payload", raw: "campus:badge/42#x", want: "campus:badge/42#x"},
		{name: "empty", raw: "", wantErr: true},
		{name: "whitespace only", raw: "   \t ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeStudentID(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidIdentifier)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
