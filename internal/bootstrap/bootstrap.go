package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	httpadapter "github.com/huson-app/huson/internal/adapters/http"
	"github.com/huson-app/huson/internal/config"
	"github.com/huson-app/huson/internal/core/usecase"
	"github.com/huson-app/huson/internal/infrastructure/auth"
	"github.com/huson-app/huson/internal/infrastructure/classifier/remote"
	"github.com/huson-app/huson/internal/infrastructure/imaging"
	"github.com/huson-app/huson/internal/infrastructure/queue/nats"
	"github.com/huson-app/huson/internal/infrastructure/repository/postgres"
	"github.com/huson-app/huson/internal/infrastructure/resilience"
	"github.com/huson-app/huson/internal/infrastructure/seed"
	"github.com/huson-app/huson/internal/infrastructure/storage/localfs"
	"github.com/huson-app/huson/internal/session"
)

type App struct {
	Config config.Config

	Queue    *nats.Queue
	Sessions *session.Hub
	Services httpadapter.Services
	SweepUC  *usecase.SweepOrphanUploadsUseCase

	closeFn func()
}

// New wires every adapter and use case. breakers, when set, is told about
// circuit breaker transitions of the outbound dependencies.
func New(ctx context.Context, cfg config.Config, breakers resilience.StateListener) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	donations := postgres.NewDonationRepository(db)
	points := postgres.NewCollectionPointRepository(db)
	users := postgres.NewUserRepository(db)
	sessions := postgres.NewSessionRepository(db)

	seeded, err := seed.LoadCollectionPoints(ctx, cfg.CollectionPointsSeed, points)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("seed collection points: %w", err)
	}
	if seeded > 0 {
		slog.Info("collection_points_seeded", "count", seeded, "path", cfg.CollectionPointsSeed)
	}

	storage, err := localfs.New(cfg.StoragePath, cfg.PublicStorageBaseURL)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: resilience.NewExecutor(resilience.DefaultConfig(), resilience.WithStateListener(breakers)),
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	tokens, err := auth.NewTokenIssuer(cfg.JWTSecret)
	if err != nil {
		queue.Close()
		_ = db.Close()
		return nil, fmt.Errorf("init token issuer: %w", err)
	}

	// The classifier is user-facing: the donor retries, not the client.
	classifier := remote.New(cfg.ClassifierURL, remote.Options{
		APIKey:   cfg.ClassifierAPIKey,
		Timeout:  time.Duration(cfg.ClassifierTimeoutSecs) * time.Second,
		Executor: resilience.NewExecutor(resilience.DefaultConfig().SingleAttempt(), resilience.WithStateListener(breakers)),
	})
	images := imaging.NewProcessor()
	hub := session.NewHub()

	authUC := usecase.NewAuthUseCase(
		users,
		sessions,
		tokens,
		auth.NewBcryptHasher(bcrypt.DefaultCost),
		hub,
		time.Duration(cfg.SessionTTLHours)*time.Hour,
	)
	pointsUC := usecase.NewCollectionPointsUseCase(points, usecase.MapSettings{
		CenterLat: cfg.MapCenterLat,
		CenterLng: cfg.MapCenterLng,
		Zoom:      cfg.MapZoom,
		TileURL:   cfg.MapTileURL,
	})

	return &App{
		Config:   cfg,
		Queue:    queue,
		Sessions: hub,
		Services: httpadapter.Services{
			Auth:       authUC,
			Sessions:   hub,
			Classifier: usecase.NewClassifyDonationUseCase(images, classifier),
			Submitter:  usecase.NewSubmitDonationUseCase(donations, storage, images, queue),
			History:    usecase.NewDonationHistoryUseCase(donations),
			Points:     pointsUC,
			Objects:    storage,
		},
		SweepUC: usecase.NewSweepOrphanUploadsUseCase(storage, donations, time.Duration(cfg.SweepGraceMinutes)*time.Minute),

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
