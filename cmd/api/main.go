package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mes-platform/production-service/internal/application"
	"github.com/mes-platform/production-service/internal/domain"
	kafkaInfra "github.com/mes-platform/production-service/internal/infrastructure/kafka"
	mongoRepo "github.com/mes-platform/production-service/internal/infrastructure/mongodb"
	"github.com/mes-platform/production-service/internal/workflows"
	"github.com/mes-platform/production-service/pkg/cloudevents"
	"github.com/mes-platform/production-service/pkg/errors"
	"github.com/mes-platform/production-service/pkg/kafka"
	"github.com/mes-platform/production-service/pkg/logging"
	"github.com/mes-platform/production-service/pkg/metrics"
	"github.com/mes-platform/production-service/pkg/middleware"
	"github.com/mes-platform/production-service/pkg/mongodb"
	"github.com/mes-platform/production-service/pkg/resilience"
	"github.com/mes-platform/production-service/pkg/temporal"
	"github.com/mes-platform/production-service/pkg/tracing"
)

const serviceName = "production-service"

func main() {
	logConfig := logging.DefaultConfig(serviceName)
	logConfig.Level = logging.LogLevel(getEnv("LOG_LEVEL", "info"))
	logger := logging.New(logConfig)
	logger.SetDefault()

	logger.Info("Starting production-service API")

	config := loadConfig()
	ctx := context.Background()

	// Tracing
	tracingConfig := tracing.DefaultConfig(serviceName)
	tracingConfig.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")
	tracingConfig.Environment = getEnv("ENVIRONMENT", "development")
	tracingConfig.Enabled = getEnv("TRACING_ENABLED", "true") == "true"

	tracerProvider, err := tracing.Initialize(ctx, tracingConfig)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize tracing")
	} else if tracerProvider != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
				logger.WithError(err).Error("Failed to shutdown tracer")
			}
		}()
		logger.Info("Tracing initialized", "endpoint", tracingConfig.OTLPEndpoint)
	}

	// Metrics
	m := metrics.New(metrics.DefaultConfig(serviceName))

	// MongoDB
	mongoClient, err := mongodb.NewClient(ctx, config.MongoDB)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to MongoDB")
		os.Exit(1)
	}
	defer mongoClient.Close(ctx)
	logger.Info("Connected to MongoDB", "database", config.MongoDB.Database)

	// Kafka
	producer := kafka.NewProducer(config.Kafka)
	defer producer.Close()
	logger.Info("Kafka producer initialized", "brokers", config.Kafka.Brokers)

	eventFactory := cloudevents.NewEventFactory(cloudevents.SourceProduction)
	publisher := kafkaInfra.NewEventPublisher(producer, eventFactory, m)

	// Repositories
	db := mongoClient.Database()
	jobRepo := mongoRepo.NewJobRepository(db)
	itemRepo := mongoRepo.NewItemRepository(db)
	employeeRepo := mongoRepo.NewEmployeeRepository(db)
	orderRepo := mongoRepo.NewOrderRepository(db)
	wipRepo := mongoRepo.NewWIPRepository(db)
	finishedRepo := mongoRepo.NewFinishedGoodRepository(db)
	rejectedRepo := mongoRepo.NewRejectedGoodRepository(db)
	rawRepo := mongoRepo.NewRawMaterialRepository(db)
	receiptRepo := mongoRepo.NewMaterialReceiptRepository(db)

	// Application services
	breakers := resilience.NewCircuitBreakerRegistry(logger.Logger)
	projector := application.NewStockProjector(wipRepo, finishedRepo, rejectedRepo, itemRepo, breakers, m, logger)
	executionService := application.NewExecutionService(
		jobRepo, itemRepo, employeeRepo, orderRepo,
		domain.NewRoleAuthorizer(), publisher, projector, breakers, m, logger,
	)
	stockService := application.NewStockQueryService(wipRepo, finishedRepo, rejectedRepo)
	materialService := application.NewMaterialService(rawRepo, receiptRepo, jobRepo, publisher, logger)

	// Temporal client for triggering resync workflows; the API stays up
	// without it, only the resync endpoint degrades.
	var temporalClient *temporal.Client
	if getEnv("TEMPORAL_ENABLED", "true") == "true" {
		temporalClient, err = temporal.NewClient(ctx, config.Temporal)
		if err != nil {
			logger.WithError(err).Warn("Temporal unavailable, material resync endpoint disabled")
		} else {
			defer temporalClient.Close()
			logger.Info("Temporal client initialized", "hostPort", config.Temporal.HostPort)
		}
	}

	// Router
	router := gin.New()
	middleware.Setup(router, middleware.DefaultConfig(serviceName, logger.Logger))
	router.Use(middleware.MetricsMiddleware(m))
	router.Use(middleware.SimpleTracingMiddleware(serviceName))
	router.Use(middleware.EmployeeIdentity(&middleware.IdentityConfig{Required: false}))

	router.NoRoute(middleware.NoRoute())
	router.NoMethod(middleware.NoMethod())

	router.GET("/health", middleware.HealthCheck(serviceName))
	router.GET("/ready", middleware.ReadinessCheck(serviceName, func() error {
		return mongoClient.HealthCheck(ctx)
	}))
	router.GET("/metrics", middleware.MetricsEndpoint(m))

	api := router.Group("/api/v1")
	{
		jobs := api.Group("/jobs")
		{
			jobs.GET("", listJobsHandler(executionService, logger))
			jobs.POST("", createJobHandler(executionService, logger))
			jobs.GET("/:jobNumber", getJobHandler(executionService, logger))
			jobs.POST("/:jobNumber/steps/:stepId/assign", assignStepHandler(executionService, logger))
			jobs.POST("/:jobNumber/steps/:stepId/accept", acceptStepHandler(executionService, logger))
			jobs.POST("/:jobNumber/steps/:stepId/execute", executeStepHandler(executionService, logger))
			jobs.POST("/:jobNumber/steps/:stepId/outward-return", outwardReturnHandler(executionService, logger))
			jobs.POST("/:jobNumber/final-inspection", finalInspectionHandler(executionService, logger))
			jobs.POST("/:jobNumber/split", splitJobHandler(executionService, logger))
			jobs.POST("/:jobNumber/hold", holdJobHandler(executionService, logger))
			jobs.POST("/:jobNumber/resume", resumeJobHandler(executionService, logger))
		}

		api.GET("/steps/open", openStepsHandler(executionService, logger))

		stock := api.Group("/stock")
		{
			stock.GET("/wip", wipStockHandler(stockService, logger))
			stock.GET("/finished-goods", finishedGoodsHandler(stockService, logger))
			stock.GET("/rejected-goods", rejectedGoodsHandler(stockService, logger))
		}

		materials := api.Group("/materials")
		{
			materials.GET("", listMaterialsHandler(materialService, logger))
			materials.POST("/recompute", recomputeMaterialsHandler(materialService, logger))
			materials.POST("/resync", resyncMaterialsHandler(temporalClient, m, logger))
		}
	}

	srv := &http.Server{
		Addr:         config.ServerAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("Server error")
		}
	}()
	logger.Info("Server started", "addr", config.ServerAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server stopped")
}

// Config holds application configuration
type Config struct {
	ServerAddr string
	MongoDB    *mongodb.Config
	Kafka      *kafka.Config
	Temporal   *temporal.Config
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

	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8010"),
		MongoDB:    mongoConfig,
		Kafka:      kafkaConfig,
		Temporal:   temporalConfig,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// HTTP handlers

func respond(c *gin.Context, logger *logging.Logger, status int, result interface{}, err error) {
	if err != nil {
		responder := middleware.NewErrorResponder(c, logger.Logger)
		if appErr, ok := errors.AsAppError(err); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}
	c.JSON(status, result)
}

func createJobHandler(service *application.ExecutionService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var cmd application.CreateJobCommand
		if appErr := middleware.BindAndValidate(c, &cmd); appErr != nil {
			middleware.NewErrorResponder(c, logger.Logger).RespondWithAppError(appErr)
			return
		}

		middleware.AddSpanAttributes(c, map[string]interface{}{
			"order.number": cmd.OrderNumber,
			"item.code":    cmd.ItemCode,
			"job.quantity": cmd.Quantity,
		})

		job, err := service.CreateJob(c.Request.Context(), cmd)
		respond(c, logger, http.StatusCreated, job, err)
	}
}

func getJobHandler(service *application.ExecutionService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		jobNumber := c.Param("jobNumber")
		middleware.AddSpanAttributes(c, map[string]interface{}{"job.number": jobNumber})

		job, err := service.GetJob(c.Request.Context(), application.GetJobQuery{JobNumber: jobNumber})
		respond(c, logger, http.StatusOK, job, err)
	}
}

func listJobsHandler(service *application.ExecutionService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := application.ListJobsQuery{
			OrderNumber: c.Query("orderNumber"),
			Status:      c.Query("status"),
			Stage:       c.Query("stage"),
			Limit:       parseLimit(c.Query("limit")),
		}

		jobs, err := service.ListJobs(c.Request.Context(), query)
		respond(c, logger, http.StatusOK, jobs, err)
	}
}

func assignStepHandler(service *application.ExecutionService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var cmd application.AssignStepCommand
		if appErr := middleware.BindAndValidate(c, &cmd); appErr != nil {
			middleware.NewErrorResponder(c, logger.Logger).RespondWithAppError(appErr)
			return
		}
		cmd.JobNumber = c.Param("jobNumber")
		cmd.StepID = c.Param("stepId")

		middleware.AddSpanAttributes(c, map[string]interface{}{
			"job.number": cmd.JobNumber,
			"step.id":    cmd.StepID,
		})

		job, err := service.AssignStep(c.Request.Context(), cmd)
		respond(c, logger, http.StatusOK, job, err)
	}
}

func acceptStepHandler(service *application.ExecutionService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		cmd := application.AcceptStepCommand{
			JobNumber:  c.Param("jobNumber"),
			StepID:     c.Param("stepId"),
			EmployeeID: middleware.GetEmployeeID(c),
		}

		middleware.AddSpanAttributes(c, map[string]interface{}{
			"job.number":  cmd.JobNumber,
			"step.id":     cmd.StepID,
			"employee.id": cmd.EmployeeID,
		})

		job, err := service.AcceptOpenStep(c.Request.Context(), cmd)
		respond(c, logger, http.StatusOK, job, err)
	}
}

func executeStepHandler(service *application.ExecutionService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var cmd application.ExecuteStepCommand
		if appErr := middleware.BindAndValidate(c, &cmd); appErr != nil {
			middleware.NewErrorResponder(c, logger.Logger).RespondWithAppError(appErr)
			return
		}
		cmd.JobNumber = c.Param("jobNumber")
		cmd.StepID = c.Param("stepId")
		cmd.EmployeeID = middleware.GetEmployeeID(c)

		middleware.AddSpanAttributes(c, map[string]interface{}{
			"job.number":  cmd.JobNumber,
			"step.id":     cmd.StepID,
			"step.target": cmd.TargetStatus,
		})

		job, err := service.ExecuteStep(c.Request.Context(), cmd)
		respond(c, logger, http.StatusOK, job, err)
	}
}

func outwardReturnHandler(service *application.ExecutionService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var cmd application.CompleteOutwardCommand
		if appErr := middleware.BindAndValidate(c, &cmd); appErr != nil {
			middleware.NewErrorResponder(c, logger.Logger).RespondWithAppError(appErr)
			return
		}
		cmd.JobNumber = c.Param("jobNumber")
		cmd.StepID = c.Param("stepId")
		cmd.EmployeeID = middleware.GetEmployeeID(c)

		middleware.AddSpanAttributes(c, map[string]interface{}{
			"job.number": cmd.JobNumber,
			"step.id":    cmd.StepID,
		})

		job, err := service.CompleteOutwardStep(c.Request.Context(), cmd)
		respond(c, logger, http.StatusOK, job, err)
	}
}

func finalInspectionHandler(service *application.ExecutionService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var cmd application.FinalInspectionCommand
		if appErr := middleware.BindAndValidate(c, &cmd); appErr != nil {
			middleware.NewErrorResponder(c, logger.Logger).RespondWithAppError(appErr)
			return
		}
		cmd.JobNumber = c.Param("jobNumber")
		cmd.EmployeeID = middleware.GetEmployeeID(c)

		attrs := map[string]interface{}{
			"job.number":   cmd.JobNumber,
			"rejected.qty": cmd.RejectedQty,
		}
		if cmd.ProcessedQty != nil {
			attrs["accepted.qty"] = *cmd.ProcessedQty
		}
		middleware.AddSpanAttributes(c, attrs)

		job, err := service.SubmitFinalInspection(c.Request.Context(), cmd)
		respond(c, logger, http.StatusOK, job, err)
	}
}

func splitJobHandler(service *application.ExecutionService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var cmd application.SplitJobCommand
		if appErr := middleware.BindAndValidate(c, &cmd); appErr != nil {
			middleware.NewErrorResponder(c, logger.Logger).RespondWithAppError(appErr)
			return
		}
		cmd.JobNumber = c.Param("jobNumber")
		cmd.EmployeeID = middleware.GetEmployeeID(c)

		middleware.AddSpanAttributes(c, map[string]interface{}{
			"job.number": cmd.JobNumber,
			"split.qty":  cmd.SplitQty,
		})

		result, err := service.SplitJob(c.Request.Context(), cmd)
		respond(c, logger, http.StatusCreated, result, err)
	}
}

func holdJobHandler(service *application.ExecutionService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var cmd application.HoldJobCommand
		if appErr := middleware.BindAndValidate(c, &cmd); appErr != nil {
			middleware.NewErrorResponder(c, logger.Logger).RespondWithAppError(appErr)
			return
		}
		cmd.JobNumber = c.Param("jobNumber")
		cmd.EmployeeID = middleware.GetEmployeeID(c)

		job, err := service.HoldJob(c.Request.Context(), cmd)
		respond(c, logger, http.StatusOK, job, err)
	}
}

func resumeJobHandler(service *application.ExecutionService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		cmd := application.ResumeJobCommand{
			JobNumber:  c.Param("jobNumber"),
			EmployeeID: middleware.GetEmployeeID(c),
		}

		job, err := service.ResumeJob(c.Request.Context(), cmd)
		respond(c, logger, http.StatusOK, job, err)
	}
}

func openStepsHandler(service *application.ExecutionService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := application.ListOpenStepsQuery{Limit: parseLimit(c.Query("limit"))}

		feed, err := service.ListOpenSteps(c.Request.Context(), query)
		respond(c, logger, http.StatusOK, feed, err)
	}
}

func wipStockHandler(service *application.StockQueryService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		records, err := service.ListWIP(c.Request.Context(), parseLimit(c.Query("limit")))
		respond(c, logger, http.StatusOK, records, err)
	}
}

func finishedGoodsHandler(service *application.StockQueryService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		goods, err := service.ListFinishedGoods(c.Request.Context(), parseLimit(c.Query("limit")))
		respond(c, logger, http.StatusOK, goods, err)
	}
}

func rejectedGoodsHandler(service *application.StockQueryService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		goods, err := service.ListRejectedGoods(c.Request.Context(), c.Query("jobNumber"), parseLimit(c.Query("limit")))
		respond(c, logger, http.StatusOK, goods, err)
	}
}

func listMaterialsHandler(service *application.MaterialService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		materials, err := service.List(c.Request.Context())
		respond(c, logger, http.StatusOK, materials, err)
	}
}

func recomputeMaterialsHandler(service *application.MaterialService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		materials, err := service.Recompute(c.Request.Context())
		respond(c, logger, http.StatusOK, materials, err)
	}
}

func resyncMaterialsHandler(temporalClient *temporal.Client, m *metrics.Metrics, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		if temporalClient == nil {
			responder.RespondWithAppError(errors.ErrServiceUnavailable("material resync"))
			return
		}

		var req struct {
			Reason string `json:"reason"`
		}
		// Body is optional
		_ = c.ShouldBindJSON(&req)

		workflowID := "material-resync-" + time.Now().UTC().Format("20060102T150405")
		run, err := temporalClient.StartWorkflow(
			c.Request.Context(),
			workflowID,
			temporal.TaskQueues.Materials,
			temporal.WorkflowNames.MaterialResync,
			workflows.MaterialResyncInput{Reason: req.Reason},
		)
		if err != nil {
			responder.RespondWithAppError(errors.ErrInternal("failed to start resync workflow").Wrap(err))
			return
		}
		m.RecordWorkflowStarted(temporal.WorkflowNames.MaterialResync)

		c.JSON(http.StatusAccepted, gin.H{
			"workflowId": run.GetID(),
			"runId":      run.GetRunID(),
		})
	}
}

func parseLimit(raw string) int {
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}
