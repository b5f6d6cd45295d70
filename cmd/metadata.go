package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/zzenonn/weatherpipe/internal/app"
	"github.com/zzenonn/weatherpipe/internal/service"
)

var quiet bool

var metadataCmd = &cobra.Command{
	Use:   "metadata",
	Short: "Describe a catalog table and its S3 objects",
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Write flattened, detailed and manifest metadata for the metadata table",
	Run: func(cmd *cobra.Command, args []string) {
		var bar *progressbar.ProgressBar
		observer := service.WithProbeObserver(func(service.ProbeResult) {
			if bar != nil {
				_ = bar.Add(1)
			}
		})

		metadataService, err := app.NewMetadataService(cfg, observer)
		if err != nil {
			fmt.Printf("Error creating metadata service: %v\n", err)
			os.Exit(1)
		}
		if !quiet {
			bar = progressbar.Default(int64(metadataService.ProbeCount()), "probing partitions")
		}

		resp := metadataService.Extract(context.Background(), app.MetadataRequest(cfg))
		if bar != nil {
			_ = bar.Finish()
		}

		out, _ := json.MarshalIndent(resp, "", "  ")
		fmt.Println(string(out))
		if resp.StatusCode != http.StatusOK {
			os.Exit(1)
		}
	},
}

var ledgerCmd = &cobra.Command{
	Use:   "ledger [table]",
	Short: "List recorded extractions of a table, newest first",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		table := cfg.MetadataTable
		if len(args) == 1 {
			table = args[0]
		}

		ledger, err := app.NewLedger(cfg)
		if err != nil {
			fmt.Printf("Error opening ledger: %v\n", err)
			os.Exit(1)
		}

		limit, _ := cmd.Flags().GetInt32("limit")
		entries, err := ledger.ListExtractions(context.Background(), table, limit)
		if err != nil {
			fmt.Printf("Error listing extractions: %v\n", err)
			os.Exit(1)
		}

		if len(entries) == 0 {
			fmt.Printf("No extractions recorded for %s\n", table)
			return
		}
		for _, e := range entries {
			fmt.Printf("%s  %d objects  %d bytes  %s\n", e.ExtractionTime, e.ObjectsCount, e.TotalSizeBytes, e.FlattenedMetadataLocation)
		}
	},
}

func init() {
	extractCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress progress bars")
	ledgerCmd.Flags().Int32("limit", 20, "Maximum number of extractions to show")
	metadataCmd.AddCommand(extractCmd)
	metadataCmd.AddCommand(ledgerCmd)
	rootCmd.AddCommand(metadataCmd)
}
