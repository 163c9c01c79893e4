package config

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyOverridesOnlyAppliesFlagsActuallySet(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f := &Flags{}
	f.DefineFlags(fs)

	require.NoError(t, fs.Parse([]string{"--loglevel=debug", "--log-tags=a, b ,c"}))

	cfg := NewDefaultConfig()
	f.ApplyOverrides(fs, cfg, false)

	assert.Equal(t, "debug", cfg.Logger.LogLevel)
	assert.Equal(t, []string{"a", "b", "c"}, cfg.Logger.EnabledTags)
	// editor-cmd was never passed, so the default config value survives.
	assert.Equal(t, DefaultEditorCommand, cfg.EditorOpen.Command)
}

func TestApplyOverridesLogFileAcceptsEmptyString(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f := &Flags{}
	f.DefineFlags(fs)

	require.NoError(t, fs.Parse([]string{`--logfile=`}))

	cfg := NewDefaultConfig()
	cfg.Logger.LogFilePath = "previous.log"
	f.ApplyOverrides(fs, cfg, false)

	assert.Equal(t, "", cfg.Logger.LogFilePath)
}

func TestSplitCommaListTrimsAndDropsEmpty(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitCommaList(" a ,, b "))
	assert.Nil(t, splitCommaList(""))
}
