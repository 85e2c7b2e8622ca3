package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/chatmd/core/state"
	"github.com/gaurav-prasanna/chatmd/logfields"
)

var toggleCmd = &cobra.Command{
	Use:   "toggle [on|off]",
	Short: "Flip or set the persisted on/off flag",
	Long: `Toggle flips the flag read before every transformation. With an
argument it sets the flag instead. The new state is printed as MD ON or MD OFF.

Examples:
  chatmd toggle
  chatmd toggle off`,
	Args: cobra.MaximumNArgs(1),
	RunE: runToggle,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the on/off flag",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		flag, err := openFlag()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), state.Label(flag.Enabled()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(toggleCmd)
	rootCmd.AddCommand(statusCmd)
}

func runToggle(cmd *cobra.Command, args []string) error {
	flag, err := openFlag()
	if err != nil {
		return err
	}

	var enabled bool
	if len(args) == 1 {
		enabled, err = state.ParseValue(args[0])
		if err != nil {
			return err
		}
		err = flag.Set(enabled)
	} else {
		enabled, err = flag.Toggle()
	}
	if err != nil {
		return err
	}

	slog.Debug("Flag stored", logfields.Enabled(enabled), logfields.Path(flag.Path()))
	fmt.Fprintln(cmd.OutOrStdout(), state.Label(enabled))
	return nil
}
