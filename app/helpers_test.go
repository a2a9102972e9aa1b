package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/picassol/pixeld/app/config"
)

func TestPersistentPreRunWritesDefaultConfig(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	home := t.TempDir()
	viper.Set(FlagHome, home)

	ctx := config.NewDefaultContext()
	require.NoError(t, PersistentPreRunEFn(ctx)(&cobra.Command{Use: "start"}, nil))

	_, err := os.Stat(filepath.Join(home, "config", "app.toml"))
	require.NoError(t, err)
	require.Equal(t, home, ctx.HomeDir)
	require.NotNil(t, ctx.Logger)
	require.Equal(t, 200, ctx.CanvasConfig.Width)
}

func TestPersistentPreRunReadsExistingConfig(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	home := t.TempDir()
	cfg := config.DefaultPixeldConfig()
	cfg.CanvasConfig.Width = 32
	cfg.LogConfig.LogToConsole = false
	require.NoError(t, config.WriteConfigFile(filepath.Join(home, "config", "app.toml"), cfg))
	viper.Set(FlagHome, home)

	ctx := config.NewDefaultContext()
	require.NoError(t, PersistentPreRunEFn(ctx)(&cobra.Command{Use: "start"}, nil))
	require.Equal(t, 32, ctx.CanvasConfig.Width)
	require.False(t, ctx.LogConfig.LogToConsole)
}

func TestPersistentPreRunRejectsInvalidConfig(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	home := t.TempDir()
	cfg := config.DefaultPixeldConfig()
	cfg.CanvasConfig.Width = 300
	require.NoError(t, config.WriteConfigFile(filepath.Join(home, "config", "app.toml"), cfg))
	viper.Set(FlagHome, home)

	require.Error(t, PersistentPreRunEFn(config.NewDefaultContext())(&cobra.Command{Use: "start"}, nil))
}
