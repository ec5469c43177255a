package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lsl-tools/lslintel/internal/defs"
)

var defsCmd = &cobra.Command{
	Use:   "defs",
	Short: "Inspect and validate Defs registry documents",
}

var defsValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Load a Defs YAML document and report its summary or its error",
	Args:  cobra.ExactArgs(1),
	RunE:  runDefsValidate,
}

func init() {
	defsCmd.AddCommand(defsValidateCmd)
}

func runDefsValidate(cmd *cobra.Command, args []string) error {
	path := args[0]

	d, err := defs.LoadFile(path)
	if err != nil {
		return err
	}

	fmt.Printf("%s: ok, version %s (%d types, %d keywords)\n", path, d.Version, len(d.Types), len(d.Keywords))

	return nil
}
