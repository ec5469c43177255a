// lslintel is the editor-intelligence analysis pipeline's command-line
// front end: it drives the preprocessor/lexer/parser/analyzer/semtok
// pipeline over files on disk for ad hoc inspection and CI use, the way
// orizon-lsp drives its LSP server over stdio.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lsl-tools/lslintel/internal/logging"
)

var (
	verbose bool
	logger  *zap.Logger
	rootCmd = &cobra.Command{
		Use:          "lslintel",
		Short:        "LSL editor-intelligence analysis pipeline",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger = logging.New(verbose)

			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if logger != nil {
				_ = logger.Sync()
			}

			return nil
		},
	}
)

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "development-style console logging")

	rootCmd.AddCommand(tokensCmd, diagnoseCmd, defsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
