package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bunderr "github.com/bundlegen/bundlegen/internal/errors"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Version
		wantErr bool
	}{
		{name: "full", input: "2.3.1", want: Version{2, 3, 1}},
		{name: "major only normalizes", input: "1", want: Version{1, 0, 0}},
		{name: "major minor", input: "10.20", want: Version{10, 20, 0}},
		{name: "three digit parts", input: "999.999.999", want: Version{999, 999, 999}},
		{name: "four digits rejected", input: "1000.0.0", wantErr: true},
		{name: "prefix rejected", input: "v1.2.3", wantErr: true},
		{name: "trailing dot rejected", input: "1.2.", wantErr: true},
		{name: "empty rejected", input: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseVersion(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, bunderr.IsKind(err, bunderr.KindValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVersionString(t *testing.T) {
	assert.Equal(t, "2.4.0", Version{2, 4, 0}.String())
	assert.Equal(t, "0.0.0", Version{}.String())
}

func TestSelectionResolveBumps(t *testing.T) {
	previous := Version{2, 3, 1}

	got, err := Selection{Major: true}.Resolve(previous, nil)
	require.NoError(t, err)
	assert.Equal(t, Version{3, 0, 0}, got, "major bump resets minor and patch")

	got, err = Selection{Minor: true}.Resolve(previous, nil)
	require.NoError(t, err)
	assert.Equal(t, Version{2, 4, 0}, got, "minor bump resets patch")

	got, err = Selection{Patch: true}.Resolve(previous, nil)
	require.NoError(t, err)
	assert.Equal(t, Version{2, 3, 2}, got)
}

func TestSelectionResolveExplicit(t *testing.T) {
	got, err := Selection{Explicit: "5.1"}.Resolve(Version{2, 3, 1}, nil)
	require.NoError(t, err)
	assert.Equal(t, Version{5, 1, 0}, got, "explicit strings normalize independently of the previous version")
}

func TestSelectionResolveConflicts(t *testing.T) {
	cases := []Selection{
		{Explicit: "1.0.0", Major: true},
		{Major: true, Minor: true},
		{Minor: true, Patch: true},
		{Explicit: "1", Major: true, Minor: true, Patch: true},
	}
	for _, sel := range cases {
		_, err := sel.Resolve(Version{1, 0, 0}, nil)
		require.Error(t, err)
		assert.True(t, bunderr.IsKind(err, bunderr.KindValidation))
	}
}

func TestSelectionResolvePrompt(t *testing.T) {
	var seen Version
	prompt := func(previous Version) (string, error) {
		seen = previous
		return "4.0.0", nil
	}
	got, err := Selection{}.Resolve(Version{3, 9, 9}, prompt)
	require.NoError(t, err)
	assert.Equal(t, Version{3, 9, 9}, seen, "prompt receives the previous version for display")
	assert.Equal(t, Version{4, 0, 0}, got)

	_, err = Selection{}.Resolve(Version{}, nil)
	require.Error(t, err, "no selection and no prompt cannot resolve")
}
