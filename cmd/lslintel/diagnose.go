package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose <file>",
	Short: "Print diagnostics produced while analyzing a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runDiagnose,
}

func runDiagnose(cmd *cobra.Command, args []string) error {
	path := args[0]

	res, err := runFile(path, nil)
	if err != nil {
		return err
	}

	if len(res.Diagnostics) == 0 {
		fmt.Println("no diagnostics")

		return nil
	}

	for _, d := range res.Diagnostics {
		fmt.Printf("%s:%d: %s [%s] %s\n", d.SourceFile, d.Span.Start, d.Severity, d.Category, d.Message)
	}

	return nil
}
