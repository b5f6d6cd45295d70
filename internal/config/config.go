package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ForecastConfig describes the Open-Meteo request made by the ingest step
type ForecastConfig struct {
	URL             string  `yaml:"forecast_url"`
	Latitude        float64 `yaml:"forecast_latitude"`
	Longitude       float64 `yaml:"forecast_longitude"`
	StartDate       string  `yaml:"forecast_start_date"`
	EndDate         string  `yaml:"forecast_end_date"`
	Timezone        string  `yaml:"forecast_timezone"`
	TemperatureUnit string  `yaml:"forecast_temperature_unit"`
}

// Config holds the application configuration
type Config struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	// AwsConfig: one shared SDK config; Glue, Athena, S3, Firehose, DynamoDB
	// and SSM clients are all created from it.
	AwsConfig aws.Config
	// GcsClient is only created when MetadataResults points at gs://.
	GcsClient *storage.Client

	Database         string `yaml:"database"`
	SourceTable      string `yaml:"source_table"`
	TransformedTable string `yaml:"transformed_table"`
	ProdTable        string `yaml:"prod_table"`
	MetadataTable    string `yaml:"metadata_table"`

	DataBucket         string `yaml:"data_bucket"`
	ProdBucket         string `yaml:"prod_bucket"`
	QueryResultsBucket string `yaml:"query_results_bucket"`
	// MetadataResults is a bucket URI such as s3://bucket or gs://bucket.
	MetadataResults string `yaml:"metadata_results"`
	LedgerTable     string `yaml:"ledger_table"`

	ProbeConcurrency  int           `yaml:"probe_concurrency"`
	ListMaxItems      int           `yaml:"list_max_items"`
	QueryPollInterval time.Duration `yaml:"query_poll_interval"`
	QueryMaxPolls     uint          `yaml:"query_max_polls"`

	FirehoseStream string `yaml:"firehose_stream"`
	Forecast       ForecastConfig

	SSMParameterPath string `yaml:"ssm_parameter_path"`
}

// flagKeys maps persistent flag names to configuration keys.
var flagKeys = map[string]string{
	"log-level":          "log_level",
	"database":           "database",
	"metadata-table":     "metadata_table",
	"metadata-results":   "metadata_results",
	"ledger-table":       "ledger_table",
	"probe-concurrency":  "probe_concurrency",
	"ssm-parameter-path": "ssm_parameter_path",
}

// LoadConfig loads configuration from config.yaml, environment variables, SSM, or CLI flags
// Priority: CLI flags > SSM parameters > Environment variables > config.yaml > defaults
func LoadConfig(configPath string, rootCmd *cobra.Command) (*Config, error) {
	if err := setupViper(configPath, rootCmd); err != nil {
		return nil, err
	}

	awsConfig, err := loadAWSConfig()
	if err != nil {
		return nil, err
	}

	if path := viper.GetString("ssm_parameter_path"); path != "" {
		n, err := ApplySSMParameters(context.Background(), ssm.NewFromConfig(awsConfig), path, flagChanged(rootCmd))
		if err != nil {
			return nil, err
		}
		log.Debugf("Applied %d parameters from SSM path %s", n, path)
	}

	cfg := fromViper()
	cfg.AwsConfig = awsConfig

	if strings.HasPrefix(strings.ToLower(cfg.MetadataResults), "gs://") {
		gcsClient, err := loadGCSClient()
		if err != nil {
			return nil, err
		}
		cfg.GcsClient = gcsClient
	}

	return cfg, nil
}

// DefaultMetadataLocation is the location used when the catalog lookup fails.
func (c *Config) DefaultMetadataLocation() string {
	return c.DefaultLocationFor(c.MetadataTable)
}

// DefaultLocationFor is the data bucket folder of table.
func (c *Config) DefaultLocationFor(table string) string {
	return fmt.Sprintf("s3://%s/%s/", c.DataBucket, table)
}

// QueryResultsLocation is the Athena output location.
func (c *Config) QueryResultsLocation() string {
	return fmt.Sprintf("s3://%s/", c.QueryResultsBucket)
}

func fromViper() *Config {
	return &Config{
		LogLevel:           viper.GetString("log_level"),
		LogFormat:          viper.GetString("log_format"),
		Database:           viper.GetString("database"),
		SourceTable:        viper.GetString("source_table"),
		TransformedTable:   viper.GetString("transformed_table"),
		ProdTable:          viper.GetString("prod_table"),
		MetadataTable:      viper.GetString("metadata_table"),
		DataBucket:         viper.GetString("data_bucket"),
		ProdBucket:         viper.GetString("prod_bucket"),
		QueryResultsBucket: viper.GetString("query_results_bucket"),
		MetadataResults:    viper.GetString("metadata_results"),
		LedgerTable:        viper.GetString("ledger_table"),
		ProbeConcurrency:   viper.GetInt("probe_concurrency"),
		ListMaxItems:       viper.GetInt("list_max_items"),
		QueryPollInterval:  viper.GetDuration("query_poll_interval"),
		QueryMaxPolls:      viper.GetUint("query_max_polls"),
		FirehoseStream:     viper.GetString("firehose_stream"),
		Forecast: ForecastConfig{
			URL:             viper.GetString("forecast_url"),
			Latitude:        viper.GetFloat64("forecast_latitude"),
			Longitude:       viper.GetFloat64("forecast_longitude"),
			StartDate:       viper.GetString("forecast_start_date"),
			EndDate:         viper.GetString("forecast_end_date"),
			Timezone:        viper.GetString("forecast_timezone"),
			TemperatureUnit: viper.GetString("forecast_temperature_unit"),
		},
		SSMParameterPath: viper.GetString("ssm_parameter_path"),
	}
}

// setupViper configures Viper with defaults, paths, and bindings
func setupViper(configPath string, rootCmd *cobra.Command) error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	if configPath != "" {
		viper.SetConfigFile(configPath)
	}

	setDefaults()
	viper.AutomaticEnv()

	if rootCmd != nil {
		for flagName, key := range flagKeys {
			flag := rootCmd.PersistentFlags().Lookup(flagName)
			if flag == nil {
				continue
			}
			if err := viper.BindPFlag(key, flag); err != nil {
				return fmt.Errorf("failed to bind flag %s: %w", flagName, err)
			}
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "text")

	viper.SetDefault("database", "weather-database-04142025")
	viper.SetDefault("source_table", "weather_open_meteo_weather_data_parquet_bucket_04142025")
	viper.SetDefault("transformed_table", "open_meteo_weather_data_parquet_tbl")
	viper.SetDefault("prod_table", "open_meteo_weather_data_parquet_tbl_PROD")
	viper.SetDefault("metadata_table", "open_meteo_weather_data_parquet_tbl_prod_2025_04_17_02_58_16_622979")

	viper.SetDefault("data_bucket", "open-meteo-weather-data-parquet-bucket-04142025")
	viper.SetDefault("prod_bucket", "parquet-weather-table-prod-04142025")
	viper.SetDefault("query_results_bucket", "query-results-location-de-proj-04152025")
	viper.SetDefault("metadata_results", "s3://query-results-location-de-proj-04152025")
	viper.SetDefault("ledger_table", "")

	viper.SetDefault("probe_concurrency", 1)
	viper.SetDefault("list_max_items", 10000)
	viper.SetDefault("query_poll_interval", "1s")
	viper.SetDefault("query_max_polls", 900)

	viper.SetDefault("firehose_stream", "PUT-S3-HToZ2")
	viper.SetDefault("forecast_url", "https://api.open-meteo.com/v1/forecast")
	viper.SetDefault("forecast_latitude", 40.7143)
	viper.SetDefault("forecast_longitude", -74.006)
	viper.SetDefault("forecast_start_date", "2025-01-01")
	viper.SetDefault("forecast_end_date", "2025-04-16")
	viper.SetDefault("forecast_timezone", "America/New_York")
	viper.SetDefault("forecast_temperature_unit", "fahrenheit")

	viper.SetDefault("ssm_parameter_path", "")
}

// loadAWSConfig loads AWS SDK configuration
func loadAWSConfig() (aws.Config, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		return aws.Config{}, fmt.Errorf("unable to load AWS SDK config: %v", err)
	}
	return cfg, nil
}

// loadGCSClient loads Google Cloud Storage client
func loadGCSClient() (*storage.Client, error) {
	client, err := storage.NewClient(context.Background())
	if err != nil {
		return nil, fmt.Errorf("unable to create GCS client: %v", err)
	}
	return client, nil
}

// flagChanged reports whether the flag bound to a configuration key was set explicitly.
func flagChanged(rootCmd *cobra.Command) func(key string) bool {
	return func(key string) bool {
		if rootCmd == nil {
			return false
		}
		for flagName, bound := range flagKeys {
			if bound != key {
				continue
			}
			if flag := rootCmd.PersistentFlags().Lookup(flagName); flag != nil && flag.Changed {
				return true
			}
		}
		return false
	}
}
