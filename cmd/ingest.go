package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zzenonn/weatherpipe/internal/app"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Send the Open-Meteo daily forecast to the Firehose stream",
	Run: func(cmd *cobra.Command, args []string) {
		result, err := app.NewIngestService(cfg, nil).Ingest(context.Background(), app.ForecastRequest(cfg))
		if err != nil {
			fmt.Printf("Error ingesting forecast: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Sent %d records in %d batches, %d failed\n", result.RecordsSent, result.Batches, result.FailedPutCount)
		if result.FailedPutCount > 0 {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}
