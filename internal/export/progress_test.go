package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCount(t *testing.T) {
	tests := []struct {
		name     string
		current  int
		total    int
		expected string
	}{
		{"empty total counts as complete", 0, 0, "0/0 (100%)"},
		{"start", 0, 10, "0/10 (0%)"},
		{"half", 5, 10, "5/10 (50%)"},
		{"complete", 10, 10, "10/10 (100%)"},
		{"truncating division", 1, 3, "1/3 (33%)"},
		{"large counts", 999, 1000, "999/1000 (99%)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatCount(tt.current, tt.total))
		})
	}
}
