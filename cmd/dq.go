package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zzenonn/weatherpipe/internal/app"
)

var dqCmd = &cobra.Command{
	Use:   "dq",
	Short: "Data quality checks",
}

var dqCheckCmd = &cobra.Command{
	Use:   "check [table]",
	Short: "Fail when any temp_C value is NULL",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		table := cfg.TransformedTable
		if len(args) == 1 {
			table = args[0]
		}

		if _, err := app.NewQualityService(cfg).CheckNulls(context.Background(), table); err != nil {
			fmt.Printf("Quality check failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Quality check passed. No NULL values found in temp_C column.")
	},
}

func init() {
	dqCmd.AddCommand(dqCheckCmd)
	rootCmd.AddCommand(dqCmd)
}
