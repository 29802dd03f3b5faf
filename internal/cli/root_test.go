package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "awesome", cmd.Use)
	assert.Contains(t, cmd.Long, "partitioned tables")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"migrate"},
		{"uid"},
		{"profile", "get"},
		{"profile", "put"},
		{"mapping", "get"},
		{"mapping", "by-uid"},
		{"mapping", "put"},
		{"register"},
	}

	for _, path := range commands {
		t.Run(path[len(path)-1], func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err, "Command %v should exist", path)
			require.NotNil(t, subCmd)
			assert.Equal(t, path[len(path)-1], subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "c", configFlag.Shorthand)
	assert.Equal(t, DefaultConfigPath, configFlag.DefValue)
}

func TestProfileFlags(t *testing.T) {
	cmd := NewRootCommand()
	for _, path := range [][]string{{"profile", "put"}, {"register"}} {
		sub, _, err := cmd.Find(path)
		require.NoError(t, err)
		for _, name := range []string{"nickname", "gender", "signature", "region"} {
			assert.NotNil(t, sub.Flags().Lookup(name), "%v --%s", path, name)
		}
	}
}

func TestUIDCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	uidCmd, _, err := cmd.Find([]string{"uid"})
	require.NoError(t, err)

	countFlag := uidCmd.Flags().Lookup("count")
	require.NotNil(t, countFlag)
	assert.Equal(t, "n", countFlag.Shorthand)
	assert.Equal(t, "1", countFlag.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"uid", "--format", "xml"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}
