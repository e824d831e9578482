package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "apigraph", cmd.Use)
	assert.Contains(t, cmd.Long, "intermediate representation")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"ir", "validate", "filter", "builds", "test"}

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
}

func TestIRCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	irCmd, _, err := cmd.Find([]string{"ir"})
	require.NoError(t, err)

	outputFlag := irCmd.Flags().Lookup("output")
	require.NotNil(t, outputFlag)
	assert.Equal(t, "o", outputFlag.Shorthand)

	audienceFlag := irCmd.Flags().Lookup("audience")
	require.NotNil(t, audienceFlag)
	assert.Equal(t, "a", audienceFlag.Shorthand)

	concurrencyFlag := irCmd.Flags().Lookup("concurrency")
	require.NotNil(t, concurrencyFlag)
	assert.Equal(t, "0", concurrencyFlag.DefValue)

	require.NotNil(t, irCmd.Flags().Lookup("language"))
	require.NotNil(t, irCmd.Flags().Lookup("store"))
}

func TestStoreFlagsRequired(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"filter", "builds"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)

			storeFlag := sub.Flags().Lookup("store")
			require.NotNil(t, storeFlag)
			// --store is required, so default is empty
			assert.Equal(t, "", storeFlag.DefValue)
			assert.Contains(t, storeFlag.Annotations, "cobra_annotation_bash_completion_one_required_flag")
		})
	}
}

func TestTestCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	testCmd, _, err := cmd.Find([]string{"test"})
	require.NoError(t, err)

	updateFlag := testCmd.Flags().Lookup("update")
	require.NotNil(t, updateFlag)
	assert.Equal(t, "false", updateFlag.DefValue)

	filterFlag := testCmd.Flags().Lookup("filter")
	require.NotNil(t, filterFlag)
}

func TestFormatValidation(t *testing.T) {
	// Test valid formats
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	// Test invalid formats
	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--format", "invalid", "validate", "."})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestNewLoggerLevels(t *testing.T) {
	buf := &bytes.Buffer{}
	quiet := newLogger(&RootOptions{}, buf)
	quiet.Info("built IR")
	quiet.Warn("dropped example", "type", "Movie")
	assert.NotContains(t, buf.String(), "built IR")
	assert.Contains(t, buf.String(), "dropped example")
	assert.Contains(t, buf.String(), "type=Movie")

	buf.Reset()
	loud := newLogger(&RootOptions{Verbose: true}, buf)
	loud.Debug("converted file", "file", "imdb.yml")
	assert.Contains(t, buf.String(), "file=imdb.yml")
}
