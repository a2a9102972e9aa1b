package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/picassol/pixeld/app"
	pxlog "github.com/picassol/pixeld/common/log"
	"github.com/picassol/pixeld/plugins/api"
	pixelcli "github.com/picassol/pixeld/plugins/pixel/client/cli"
	"github.com/picassol/pixeld/version"
)

func main() {
	ctx := app.ServerContext

	rootCmd := &cobra.Command{
		Use:               "pixeld",
		Short:             "Picassol pixel action server",
		SilenceUsage:      true,
		PersistentPreRunE: app.PersistentPreRunEFn(ctx),
	}
	rootCmd.PersistentFlags().String(app.FlagHome, app.DefaultNodeHome, "directory for config and data")
	viper.BindPFlag(app.FlagHome, rootCmd.PersistentFlags().Lookup(app.FlagHome))

	rootCmd.AddCommand(
		api.ServeCommand(ctx),
		pixelcli.DeriveCommand(ctx),
		version.VersionCmd,
	)

	err := rootCmd.Execute()
	pxlog.Close()
	if err != nil {
		os.Exit(1)
	}
}
