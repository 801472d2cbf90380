package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/fleet/internal/observability"
)

func TestRootCommand_Tree(t *testing.T) {
	t.Parallel()

	root := NewRootCommand()
	for _, path := range [][]string{
		{"start"},
		{"run"},
		{"worker", "run"},
		{"migrate", "up"},
		{"migrate", "down"},
		{"seed"},
	} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err, path)
		require.NotNil(t, cmd.RunE, path)
	}

	down, _, err := root.Find([]string{"migrate", "down"})
	require.NoError(t, err)
	require.NotNil(t, down.Flags().Lookup("steps"))
	require.NotNil(t, down.Flags().Lookup("all"))
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	require.Equal(t, observability.Version+"\n", out.String())
}
