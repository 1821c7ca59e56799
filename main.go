package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/studio-portfolio-backend/api"
	"github.com/rpupo63/studio-portfolio-backend/config"
	"github.com/rpupo63/studio-portfolio-backend/database"
	"github.com/rpupo63/studio-portfolio-backend/logging"
	"github.com/rpupo63/studio-portfolio-backend/models"
	"github.com/rpupo63/studio-portfolio-backend/services"
	"github.com/rpupo63/studio-portfolio-backend/storage"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: Error loading .env file: %v\n", err)
	}

	c := config.New()
	logger := logging.Setup(c)
	logger.Info().Msg("Initializing app...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if n, err := config.ApplySSM(ctx, c); err != nil {
		log.Fatal().Err(err).Msg("Error loading parameters from SSM")
	} else if n > 0 {
		logger = logging.Setup(c)
		logger.Info().Int("parameters", n).Msg("Loaded parameters from SSM")
	}

	logger.Info().Str("dbType", config.GetString(c, "DB_TYPE", "")).Msg("Connecting to database...")
	db, err := database.Open(c)
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting to database")
	}

	// If generating models, run generation and exit
	if config.GetBool(c, "GENERATE_MODELS", false) {
		logger.Info().Msg("Generating models and query helpers...")
		models.GenerateModels(db)
		return
	}

	// If generating column mismatch report, run report and exit
	if config.GetBool(c, "GENERATE_COLUMN_REPORT", false) {
		logger.Info().Msg("Generating column mismatch report...")
		models.GenerateColumnMismatchReport(db)
		return
	}

	if config.GetBool(c, "AUTO_MIGRATE", true) {
		if err := models.Migrate(db); err != nil {
			log.Fatal().Err(err).Msg("Error migrating schema")
		}
	}

	currentDB := database.New(db)
	defer currentDB.Close()

	// If backfilling display order, renumber projects by creation time and exit
	if config.GetBool(c, "BACKFILL_DISPLAY_ORDER", false) {
		modified, err := currentDB.ProjectRepo().BackfillDisplayOrder(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Error backfilling display order")
		}
		logger.Info().Int64("modified", modified).Msg("Display order backfilled")
		return
	}

	objects, err := storage.NewS3Storage(ctx, storage.S3ConfigFromEnv(c), logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing object storage")
	}

	svcs, err := services.New(currentDB.ProjectRepo(), currentDB.UserRepo(), objects, c, logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing services")
	}

	errChannel := make(chan error, 2)

	server, err := api.NewServer(c, svcs, currentDB)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing server")
	}

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	logger.Info().Err(fatalErr).Msg("Closing server")

	server.ShutdownGracefully(30 * time.Second)
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}
