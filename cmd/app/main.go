package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"dispatch/cmd"
	"dispatch/internal/adapters/in/http"
	"dispatch/internal/adapters/out/postgres/orderstore"
	"dispatch/internal/jobs"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	configs := getConfigs()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	gormDB, err := gorm.Open(postgresdriver.Open(dsn(configs)), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}

	if err = gormDB.AutoMigrate(&orderstore.OrderDTO{}); err != nil {
		log.Fatalf("Error migrating database schema: %v", err)
	}

	root, err := cmd.NewCompositionRoot(configs, gormDB)
	if err != nil {
		log.Fatalf("Error assembling application: %v", err)
	}

	dispatchJob := jobs.NewDispatchJob(
		root.CreateAdvanceStatusesCommandHandler(),
		root.AssignBatchCommandHandler(),
		configs.PollInterval,
		configs.ErrorBackoff,
		logger,
	)

	var generatorJob *jobs.OrderGeneratorJob
	if configs.EnableOrderGenerator {
		generatorJob = jobs.NewOrderGeneratorJob(
			root.CreateCreateOrderCommandHandler(), root.Depot(), logger)
	}

	jobManager := jobs.NewJobManager(dispatchJob, generatorJob)
	if err = jobManager.StartAll(); err != nil {
		log.Fatalf("Error starting background jobs: %v", err)
	}
	defer jobManager.StopAll()

	startWebServer(root, configs.HTTPPort)
}

func getConfigs() cmd.Config {
	// A missing .env file is fine; plain environment variables still apply.
	_ = godotenv.Load(".env")

	return cmd.Config{
		HTTPPort:   envOr("HTTP_PORT", "8080"),
		DBHost:     envOr("DB_HOST", "localhost"),
		DBPort:     envOr("DB_PORT", "5432"),
		DBUser:     envOr("DB_USER", "postgres"),
		DBPassword: envOr("DB_PASSWORD", "postgres"),
		DBName:     envOr("DB_NAME", "dispatch"),
		DBSslMode:  envOr("DB_SSLMODE", "disable"),

		ORSAPIKey:  os.Getenv("ORS_API_KEY"),
		ORSBaseURL: os.Getenv("ORS_BASE_URL"),

		DepotLat: envFloatOr("DEPOT_LAT", 12.9093),
		DepotLng: envFloatOr("DEPOT_LNG", 77.6483),

		PartnerPoolSize:     envIntOr("PARTNER_POOL_SIZE", 18),
		ClusterRadiusMeters: envFloatOr("CLUSTER_RADIUS_METERS", 300),
		ReturnEtaRatio:      envFloatOr("RETURN_ETA_RATIO", 0.8),
		PollInterval:        envDurationOr("POLL_INTERVAL", 30*time.Second),
		ErrorBackoff:        envDurationOr("ERROR_BACKOFF", 10*time.Second),

		EnableOrderGenerator: envBoolOr("ENABLE_ORDER_GENERATOR", false),
	}
}

func dsn(configs cmd.Config) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		configs.DBHost, configs.DBPort, configs.DBUser,
		configs.DBPassword, configs.DBName, configs.DBSslMode)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("Error parsing %s: %v", key, err)
	}
	return parsed
}

func envFloatOr(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Fatalf("Error parsing %s: %v", key, err)
	}
	return parsed
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	parsed, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("Error parsing %s: %v", key, err)
	}
	return parsed
}

func envBoolOr(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	parsed, err := strconv.ParseBool(v)
	if err != nil {
		log.Fatalf("Error parsing %s: %v", key, err)
	}
	return parsed
}

func startWebServer(root *cmd.CompositionRoot, port string) {
	e := echo.New()

	server := http.NewServer(
		root.CreateCreateOrderCommandHandler(),
		root.CreateGetAllOrdersQueryHandler(),
		root.PartnerPool(),
	)
	server.RegisterRoutes(e)

	e.Logger.Fatal(e.Start(fmt.Sprintf("0.0.0.0:%s", port)))
}
