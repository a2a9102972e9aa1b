package cli

import (
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/picassol/pixeld/app/config"
	"github.com/picassol/pixeld/plugins/pixel"
)

// DeriveCommand prints the account address of the pixel at <x> <y>.
func DeriveCommand(ctx *config.PixeldContext) *cobra.Command {
	return &cobra.Command{
		Use:   "derive <x> <y>",
		Short: "Print the account address of a pixel",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := parsePosition(args[0], args[1], ctx.CanvasConfig.Width)
			if err != nil {
				return err
			}
			programID, err := solana.PublicKeyFromBase58(ctx.CanvasConfig.ProgramID)
			if err != nil {
				return errors.Wrap(err, "invalid canvas program id")
			}
			addr, err := pixel.DeriveAddress(programID, pos)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), addr.String())
			return nil
		},
	}
}

// parsePosition requires both coordinates; pixel.ParsePosition would draw
// a random one for a blank argument.
func parsePosition(x, y string, width int) (pixel.Position, error) {
	for _, raw := range []string{x, y} {
		if strings.TrimSpace(raw) == "" {
			return pixel.Position{}, pixel.ErrInvalidPosition("coordinates must not be empty")
		}
	}
	return pixel.ParsePosition(x, y, width, pixel.NewLockedRand(0))
}
