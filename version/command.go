package version

import (
	"fmt"

	"github.com/spf13/cobra"
)

// VersionCmd prints the release, commit and solana-go release
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the app version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(Version)
	},
}
