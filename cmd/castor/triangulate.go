package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/castorlab/castor/pkg/exchange"
	"github.com/castorlab/castor/pkg/tessellate"
)

var (
	triIn  string
	triOut string
)

var triangulateCmd = &cobra.Command{
	Use:   "triangulate",
	Short: "Triangulate a STEP file into an OBJ mesh",
	Long: `Reads a STEP file and writes its tessellation as OBJ.

STEP import is not implemented yet, so this command currently always
fails; it exists to reserve the interface.`,
	RunE: runTriangulate,
}

func init() {
	triangulateCmd.Flags().StringVar(&triIn, "in", "", "input STEP file (required)")
	triangulateCmd.Flags().StringVar(&triOut, "out", "", "output OBJ file (required)")
	_ = triangulateCmd.MarkFlagRequired("in")
	_ = triangulateCmd.MarkFlagRequired("out")
}

func runTriangulate(cmd *cobra.Command, args []string) error {
	solid, err := exchange.ImportSTEP(triIn)
	if err != nil {
		return err
	}

	mesh, err := tessellate.Triangulate(solid, cfg.MaxDeviation)
	if err != nil {
		return fmt.Errorf("tessellate: %w", err)
	}
	return exchange.WriteOBJFile(mesh, triOut)
}
