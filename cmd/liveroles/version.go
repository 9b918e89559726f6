package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amishk599/liveroles/internal/config"
	"github.com/amishk599/liveroles/internal/model"
)

var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version info",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("liveroles %s (config %s, output %s)\n", version, config.SchemaVersion, model.OutputSchemaVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
