package cmd

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rzbill/nocodb-cli/pkg/config"
)

func TestVerboseEnvBinding(t *testing.T) {
	assert.False(t, viper.GetBool("verbose"))
	t.Setenv("NOCODB_VERBOSE", "true")
	assert.True(t, viper.GetBool("verbose"))
}

func TestConfigDirBinding(t *testing.T) {
	assert.Empty(t, viper.GetString("config-dir"))

	t.Setenv(config.EnvConfigDirFallback, "/tmp/fallback-dir")
	assert.Equal(t, "/tmp/fallback-dir", viper.GetString("config-dir"))

	t.Setenv(config.EnvConfigDir, "/tmp/primary-dir")
	assert.Equal(t, "/tmp/primary-dir", viper.GetString("config-dir"))

	// The flag wins over both environment variables.
	flag := rootCmd.PersistentFlags().Lookup("config-dir")
	require.NotNil(t, flag)
	require.NoError(t, flag.Value.Set("/tmp/flag-dir"))
	flag.Changed = true
	t.Cleanup(func() {
		flag.Value.Set("")
		flag.Changed = false
	})
	assert.Equal(t, "/tmp/flag-dir", viper.GetString("config-dir"))
}
