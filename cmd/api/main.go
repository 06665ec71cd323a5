package main

import (
	"context"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/imrishuroy/go-invoice-handlers/internal/aws"
	"github.com/imrishuroy/go-invoice-handlers/internal/config"
	"github.com/imrishuroy/go-invoice-handlers/internal/handlers"
	"github.com/imrishuroy/go-invoice-handlers/internal/identity"
	"github.com/imrishuroy/go-invoice-handlers/internal/logger"
)

func setupRouter(cfg handlers.HandlerConfig, l zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(handlers.RequestLogger(l))

	// health
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handlers.RegisterInvoiceRoutes(r, cfg)

	return r
}

func handlerConfig(cfg *config.Config, clients *aws.AWSClients) handlers.HandlerConfig {
	hc := handlers.HandlerConfig{
		DynamoDBClient:   clients.DynamoDB,
		SQSClient:        clients.SQS,
		CloudWatchClient: clients.CloudWatch,
		TableName:        cfg.TableName,
		PageSize:         cfg.PageSize,
		Location:         cfg.Location,
		EventsQueueURL:   cfg.EventsQueueURL,
		Identity:         identity.New(cfg.Development, cfg.DevUserID, cfg.UserClaim),
	}
	if cfg.MetricsEnabled {
		hc.MetricsNamespace = cfg.MetricsNamespace
	}
	return hc
}

func main() {
	// local runs may keep their settings in a .env file
	if os.Getenv("RUN_LOCAL") == "true" {
		if err := godotenv.Load(); err != nil {
			log.Debug().Err(err).Msg("no .env file loaded")
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	l := logger.Configure(cfg.LogLevel, cfg.LogFormat)

	clients, err := aws.NewAWSClients(context.Background())
	if err != nil {
		l.Fatal().Err(err).Msg("failed to init aws clients")
	}

	if !cfg.RunLocal {
		gin.SetMode(gin.ReleaseMode)
	}
	r := setupRouter(handlerConfig(cfg, clients), l)

	// if RUN_LOCAL is true, run a local HTTP server for development.
	if cfg.RunLocal {
		l.Info().Str("addr", cfg.LocalAddr).Bool("development", cfg.Development).Msg("running local server")
		if err := r.Run(cfg.LocalAddr); err != nil {
			l.Fatal().Err(err).Msg("failed to run local server")
		}
		return
	}

	// lambda adapter for API Gateway HTTP API (payload v2) events
	adapter := ginadapter.NewV2(r)
	lambda.Start(adapter.ProxyWithContext)
}
