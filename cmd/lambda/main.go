package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	log "github.com/sirupsen/logrus"

	"github.com/zzenonn/weatherpipe/internal/app"
	"github.com/zzenonn/weatherpipe/internal/config"
	"github.com/zzenonn/weatherpipe/internal/domain"
	"github.com/zzenonn/weatherpipe/internal/logging"
	"github.com/zzenonn/weatherpipe/internal/service"
)

// Event optionally overrides the configured table.
type Event struct {
	Database  string `json:"database,omitempty"`
	TableName string `json:"table_name,omitempty"`
}

type handler struct {
	cfg      *config.Config
	metadata *service.MetadataService
}

func (h *handler) handle(ctx context.Context, event Event) (domain.Response, error) {
	req := app.MetadataRequest(h.cfg)
	if event.Database != "" {
		req.Database = event.Database
	}
	if event.TableName != "" {
		req.Table = event.TableName
		req.DefaultLocation = h.cfg.DefaultLocationFor(event.TableName)
	}
	return h.metadata.Extract(ctx, req), nil
}

func main() {
	cfg, err := config.LoadConfig(os.Getenv("WEATHERPIPE_CONFIG"), nil)
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}
	if os.Getenv("LOG_FORMAT") == "" {
		cfg.LogFormat = "json"
	}
	logging.InitLogger(cfg)

	metadata, err := app.NewMetadataService(cfg)
	if err != nil {
		log.Fatalf("Error creating metadata service: %v", err)
	}

	h := &handler{cfg: cfg, metadata: metadata}
	lambda.Start(h.handle)
}
