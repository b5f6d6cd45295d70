package main

import (
	"context"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/zzenonn/weatherpipe/internal/config"
	"github.com/zzenonn/weatherpipe/internal/logging"
	"github.com/zzenonn/weatherpipe/internal/repository/db"
)

var (
	cfg        *config.Config
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "weatherpipe",
	Short: "Weather data pipeline steps",
	Long:  "Ingest, transform, check, publish and describe the Open-Meteo weather tables",
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().String("database", "", "Glue database")
	rootCmd.PersistentFlags().String("metadata-table", "", "table described by metadata extract")
	rootCmd.PersistentFlags().String("metadata-results", "", "bucket for metadata artifacts (s3://bucket or gs://bucket)")
	rootCmd.PersistentFlags().String("ledger-table", "", "DynamoDB table recording extractions")
	rootCmd.PersistentFlags().Int("probe-concurrency", 1, "partition probes in flight")
	rootCmd.PersistentFlags().String("ssm-parameter-path", "", "SSM Parameter Store path to read configuration from")
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the extraction ledger table",
	Run: func(cmd *cobra.Command, args []string) {
		dynamoDb, err := db.NewDatabase(cfg.AwsConfig)
		if err != nil {
			fmt.Printf("Failed to connect to the database: %v\n", err)
			os.Exit(1)
		}

		if err := dynamoDb.MigrateDb(context.Background(), cfg.LedgerTable); err != nil {
			fmt.Printf("Failed to migrate the database: %v\n", err)
			os.Exit(1)
		}

		fmt.Println("Ledger table created successfully")
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Delete the extraction ledger table",
	Run: func(cmd *cobra.Command, args []string) {
		dynamoDb, err := db.NewDatabase(cfg.AwsConfig)
		if err != nil {
			fmt.Printf("Failed to connect to the database: %v\n", err)
			os.Exit(1)
		}

		if err := dynamoDb.MigrateDown(context.Background(), cfg.LedgerTable); err != nil {
			fmt.Printf("Failed to roll back migrations: %v\n", err)
			os.Exit(1)
		}

		fmt.Println("Ledger table deleted successfully")
	},
}

func initConfig() {
	var err error
	cfg, err = config.LoadConfig(configPath, rootCmd)
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	logging.InitLogger(cfg)
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(downCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
