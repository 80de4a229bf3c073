// File: cmd/server/wire.go
//go:build wireinject
// +build wireinject

package main

import (
	"log"
	"nexus_mapping_backend/internal/app"
	"nexus_mapping_backend/internal/auth"
	"nexus_mapping_backend/internal/config"
	"nexus_mapping_backend/internal/jobs"
	"nexus_mapping_backend/internal/middleware"
	"nexus_mapping_backend/internal/platform/database"
	"nexus_mapping_backend/internal/platform/logger"
	"nexus_mapping_backend/internal/point"
	"nexus_mapping_backend/internal/session"
	"nexus_mapping_backend/internal/shared"
	"nexus_mapping_backend/internal/user"

	"github.com/google/wire"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// initializeServer is the main Wire injector.
func initializeServer(cfg *config.Config) (*app.Server, func(), error) {
	wire.Build(
		// Platform Layer
		logger.New,
		database.NewGORM,
		provideCleanup,

		// Identity
		auth.NewVerifierFromConfig,

		// Core User Services
		user.NewGORMRepository,
		user.NewService,
		wire.Bind(new(shared.Service), new(*user.ServiceImplementation)),
		user.NewHandler,

		// Map Points
		point.NewGORMRepository,
		point.NewService,
		point.NewHandler,

		// Session Issuer
		session.NewService,
		session.NewHandler,

		// Rate Limiting
		middleware.NewMemoryCounterStore,

		// Jobs
		jobs.NewReseedJob,

		// Application Layer
		app.NewServer,
	)
	return nil, nil, nil
}

func provideCleanup(logger *zap.Logger, db *gorm.DB) func() {
	return func() {
		logger.Info("Executing cleanup tasks...")
		database.CloseGORMDB(db)
		if err := logger.Sync(); err != nil {
			log.Printf("ERROR: Failed to sync logger during cleanup: %v", err)
		}
		log.Println("Cleanup finished.")
	}
}
