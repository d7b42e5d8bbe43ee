package console

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{name: "yes", input: "y\n", want: true},
		{name: "full yes", input: "yes\n", want: true},
		{name: "uppercase", input: "YES\n", want: true},
		{name: "no", input: "n\n", want: false},
		{name: "empty defaults to no", input: "\n", want: false},
		{name: "eof defaults to no", input: "", want: false},
		{name: "garbage", input: "maybe\n", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := Confirm(strings.NewReader(tt.input), &out, "delete everything?")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "delete everything? [y/N]")
		})
	}
}

func TestAsk(t *testing.T) {
	var out bytes.Buffer
	answer, err := Ask(strings.NewReader("  3.5.0  \n"), &out, "New version:")
	require.NoError(t, err)
	assert.Equal(t, "3.5.0", answer)
	assert.Contains(t, out.String(), "New version:")
}
