package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// runCommand executes the command tree with captured output.
func runCommand(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, _, err := runCommand(t, "version")
	require.NoError(t, err)
	require.Contains(t, out, "starfov dev")
	require.Contains(t, out, "commit none")
}

func TestUnknownCommand(t *testing.T) {
	_, _, err := runCommand(t, "frobnicate")
	require.Error(t, err)
}
