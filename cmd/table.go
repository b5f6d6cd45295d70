package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zzenonn/weatherpipe/internal/app"
)

var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Manage the transformed and PROD Athena tables",
}

var tableCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Drop and recreate the transformed Parquet table",
	Run: func(cmd *cobra.Command, args []string) {
		exec, err := app.NewTableService(cfg).CreateTransformedTable(context.Background())
		if err != nil {
			fmt.Printf("Error creating table: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Query %s %s\n", exec.ID, exec.State)
	},
}

var tableDropCmd = &cobra.Command{
	Use:   "drop [table]",
	Short: "Drop a table from the catalog without deleting its S3 objects",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		table := cfg.TransformedTable
		if len(args) == 1 {
			table = args[0]
		}

		exec, err := app.NewTableService(cfg).DropTable(context.Background(), table)
		if err != nil {
			fmt.Printf("Error dropping table: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Query %s %s\n", exec.ID, exec.State)
	},
}

var tablePublishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Copy the transformed table into a new timestamped PROD table",
	Run: func(cmd *cobra.Command, args []string) {
		name, exec, err := app.NewTableService(cfg).PublishProdTable(context.Background())
		if err != nil {
			fmt.Printf("Error publishing table: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Published %s (query %s %s)\n", name, exec.ID, exec.State)
	},
}

func init() {
	tableCmd.AddCommand(tableCreateCmd)
	tableCmd.AddCommand(tableDropCmd)
	tableCmd.AddCommand(tablePublishCmd)
	rootCmd.AddCommand(tableCmd)
}
