package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mes-platform/production-service/internal/activities"
	"github.com/mes-platform/production-service/internal/application"
	kafkaInfra "github.com/mes-platform/production-service/internal/infrastructure/kafka"
	mongoRepo "github.com/mes-platform/production-service/internal/infrastructure/mongodb"
	"github.com/mes-platform/production-service/internal/workflows"
	"github.com/mes-platform/production-service/pkg/cloudevents"
	"github.com/mes-platform/production-service/pkg/kafka"
	"github.com/mes-platform/production-service/pkg/logging"
	"github.com/mes-platform/production-service/pkg/metrics"
	"github.com/mes-platform/production-service/pkg/mongodb"
	"github.com/mes-platform/production-service/pkg/resilience"
	"github.com/mes-platform/production-service/pkg/temporal"
)

const serviceName = "production-worker"

func main() {
	logConfig := logging.DefaultConfig(serviceName)
	logConfig.Level = logging.LogLevel(getEnv("LOG_LEVEL", "info"))
	logger := logging.New(logConfig)
	logger.SetDefault()

	logger.Info("Starting production-service worker")

	config := loadConfig()
	ctx := context.Background()

	mongoClient, err := mongodb.NewClient(ctx, config.MongoDB)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to MongoDB")
		os.Exit(1)
	}
	defer mongoClient.Close(ctx)
	logger.Info("Connected to MongoDB", "database", config.MongoDB.Database)

	producer := kafka.NewProducer(config.Kafka)
	defer producer.Close()

	m := metrics.New(metrics.DefaultConfig(serviceName))
	eventFactory := cloudevents.NewEventFactory(cloudevents.SourceWorker)
	publisher := kafkaInfra.NewEventPublisher(producer, eventFactory, m)

	db := mongoClient.Database()
	jobRepo := mongoRepo.NewJobRepository(db)
	itemRepo := mongoRepo.NewItemRepository(db)
	wipRepo := mongoRepo.NewWIPRepository(db)
	finishedRepo := mongoRepo.NewFinishedGoodRepository(db)
	rejectedRepo := mongoRepo.NewRejectedGoodRepository(db)
	rawRepo := mongoRepo.NewRawMaterialRepository(db)
	receiptRepo := mongoRepo.NewMaterialReceiptRepository(db)

	breakers := resilience.NewCircuitBreakerRegistry(logger.Logger)
	projector := application.NewStockProjector(wipRepo, finishedRepo, rejectedRepo, itemRepo, breakers, m, logger)
	materialService := application.NewMaterialService(rawRepo, receiptRepo, jobRepo, publisher, logger)

	temporalClient, err := temporal.NewClient(ctx, config.Temporal)
	if err != nil {
		logger.WithError(err).Error("Failed to create Temporal client")
		os.Exit(1)
	}
	defer temporalClient.Close()
	logger.Info("Connected to Temporal", "hostPort", config.Temporal.HostPort)

	materialActivities := activities.NewMaterialActivities(materialService, projector, jobRepo, logger.Logger)

	w := temporalClient.NewWorker(temporal.DefaultWorkerOptions(temporal.TaskQueues.Materials))

	w.RegisterWorkflow(workflows.MaterialResyncWorkflow)
	logger.Info("Registered workflow", "workflow", temporal.WorkflowNames.MaterialResync)

	w.RegisterActivity(materialActivities.ReconcileWIPStock)
	w.RegisterActivity(materialActivities.RecomputeRawMaterials)
	logger.Info("Registered activities")

	go func() {
		if err := w.Run(nil); err != nil {
			logger.WithError(err).Error("Worker failed")
			os.Exit(1)
		}
	}()
	logger.Info("Worker started", "taskQueue", temporal.TaskQueues.Materials)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down worker...")

	w.Stop()
	logger.Info("Worker stopped")
}

// Config holds application configuration
type Config struct {
	MongoDB  *mongodb.Config
	Kafka    *kafka.Config
	Temporal *temporal.Config
}

func loadConfig() *Config {
	mongoConfig := mongodb.DefaultConfig()
	mongoConfig.URI = getEnv("MONGODB_URI", "mongodb://localhost:27017")
	mongoConfig.Database = getEnv("MONGODB_DATABASE", "mes_production")

	kafkaConfig := kafka.DefaultConfig()
	kafkaConfig.Brokers = []string{getEnv("KAFKA_BROKERS", "localhost:9092")}

	temporalConfig := temporal.DefaultConfig()
	temporalConfig.HostPort = getEnv("TEMPORAL_HOST_PORT", "localhost:7233")
	temporalConfig.Namespace = getEnv("TEMPORAL_NAMESPACE", "default")
	temporalConfig.Identity = serviceName

	return &Config{
		MongoDB:  mongoConfig,
		Kafka:    kafkaConfig,
		Temporal: temporalConfig,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
