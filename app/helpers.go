package app

import (
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/picassol/pixeld/app/config"
	pxlog "github.com/picassol/pixeld/common/log"
	"github.com/picassol/pixeld/version"
)

const FlagHome = "home"

// DefaultNodeHome is ~/.pixeld, or .pixeld in the working dir when the home
// dir cannot be resolved.
var DefaultNodeHome = func() string {
	home, err := homedir.Expand("~/.pixeld")
	if err != nil {
		return ".pixeld"
	}
	return home
}()

// ServerContext is shared by every command of the daemon.
var ServerContext = config.NewDefaultContext()

// Write the default app config on first run, then parse it in place.
func interceptLoadConfigInPlace(context *config.PixeldContext) error {
	appConfigFilePath := filepath.Join(context.HomeDir, "config", config.AppConfigFileName+".toml")
	if _, err := os.Stat(appConfigFilePath); os.IsNotExist(err) {
		if err := config.WriteConfigFile(appConfigFilePath, context.PixeldConfig); err != nil {
			return err
		}
	}

	viper.SetConfigFile(appConfigFilePath)
	if err := viper.ReadInConfig(); err != nil {
		return err
	}
	return context.ParseAppConfigInPlace()
}

func newLogger(ctx *config.PixeldContext) log.Logger {
	if ctx.LogConfig.LogToConsole {
		return pxlog.NewConsoleLogger()
	}
	logFilePath := ctx.LogConfig.LogFilePath
	if !filepath.IsAbs(logFilePath) {
		logFilePath = filepath.Join(ctx.HomeDir, logFilePath)
	}
	return pxlog.NewFileLogger(logFilePath, ctx.LogConfig.LogMaxSize, ctx.LogConfig.LogMaxAge)
}

// PersistentPreRunEFn returns a PersistentPreRunE function for cobra
// that initailizes the passed in context with a properly configured
// logger and config object
func PersistentPreRunEFn(context *config.PixeldContext) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == version.VersionCmd.Name() {
			return nil
		}
		context.HomeDir = viper.GetString(FlagHome)
		if context.HomeDir == "" {
			context.HomeDir = DefaultNodeHome
		}
		if err := interceptLoadConfigInPlace(context); err != nil {
			return err
		}

		logger, err := pxlog.WithLevel(newLogger(context), context.LogConfig.LogLevel)
		if err != nil {
			return err
		}
		logger = logger.With("module", "main")
		pxlog.InitLogger(logger)

		context.Logger = logger
		return nil
	}
}
