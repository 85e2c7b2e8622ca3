package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/chatmd/core/translate"
)

var flagForce bool

var translateCmd = &cobra.Command{
	Use:   "translate [file]",
	Short: "Translate chat text from a file or stdin into HTML",
	Long: `Translate reads text from the given file (or stdin) and prints the
rendered markup. When the flag is off the input is printed unchanged,
unless --force is given.

Examples:
  echo '**bold** and *italic*' | chatmd translate
  chatmd translate message.txt --force`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTranslate,
}

func init() {
	rootCmd.AddCommand(translateCmd)
	translateCmd.Flags().BoolVar(&flagForce, "force", false, "Translate even when the flag is off")
}

func runTranslate(cmd *cobra.Command, args []string) error {
	var (
		input []byte
		err   error
	)
	if len(args) == 1 {
		input, err = os.ReadFile(args[0])
	} else {
		input, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	if !flagForce {
		flag, err := openFlag()
		if err != nil {
			return err
		}
		if !flag.Enabled() {
			_, err = cmd.OutOrStdout().Write(input)
			return err
		}
	}

	_, err = io.WriteString(cmd.OutOrStdout(), translate.Translate(string(input)))
	return err
}
