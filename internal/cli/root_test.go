package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "atlasctl", cmd.Use)
	assert.Contains(t, cmd.Long, "pipeline")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{
		"consolidate", "split", "rename", "analyze", "filter",
		"archetypes", "generate", "export", "index", "validate",
	}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
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
	assert.Equal(t, "", configFlag.DefValue)
}

func TestConsolidateCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	sub, _, err := cmd.Find([]string{"consolidate"})
	require.NoError(t, err)

	outputFlag := sub.Flags().Lookup("output")
	require.NotNil(t, outputFlag)
	assert.Equal(t, "o", outputFlag.Shorthand)

	for _, name := range []string{"workflows", "synthetic", "external"} {
		assert.NotNilf(t, sub.Flags().Lookup(name), "flag %s should exist", name)
	}
}

func TestGenerateCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	sub, _, err := cmd.Find([]string{"generate"})
	require.NoError(t, err)

	for _, name := range []string{"archetypes", "output", "variations", "seed"} {
		assert.NotNilf(t, sub.Flags().Lookup(name), "flag %s should exist", name)
	}
}

func TestValidateCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	sub, _, err := cmd.Find([]string{"validate"})
	require.NoError(t, err)

	assert.NotNil(t, sub.Flags().Lookup("stream"))
}

func TestInvalidFormatRejected(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"--format", "xml", "analyze"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestIsValidFormat(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))
	assert.False(t, isValidFormat("yaml"))
	assert.False(t, isValidFormat(""))
}
