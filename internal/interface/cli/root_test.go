package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) error {
	t.Helper()
	cmd := NewRoot()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestRootCommandTree(t *testing.T) {
	root := NewRoot()
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"deals", "contacts", "journal", "board", "stages", "watch", "version"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestCommandsAgainstMemoryBackend(t *testing.T) {
	t.Setenv("MIRRORDESK_USE_MEMORY", "true")
	t.Setenv("MIRRORDESK_HOME", t.TempDir())

	require.NoError(t, execute(t, "stages"))
	require.NoError(t, execute(t, "board"))
	require.NoError(t, execute(t, "deals", "list"))
	require.NoError(t, execute(t, "contacts", "list"))
	require.NoError(t, execute(t, "journal", "list"))
}

func TestDealsCreateRequiresName(t *testing.T) {
	t.Setenv("MIRRORDESK_USE_MEMORY", "true")
	t.Setenv("MIRRORDESK_HOME", t.TempDir())

	err := execute(t, "deals", "create")
	require.Error(t, err)
}

func TestNewRuntimeRejectsMissingConfig(t *testing.T) {
	_, err := newRuntime(nil)
	require.Error(t, err)
}
