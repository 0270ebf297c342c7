package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/chisomo-phiri/studyhub/internal/api"
	"github.com/chisomo-phiri/studyhub/internal/api/handlers"
	"github.com/chisomo-phiri/studyhub/internal/catalog"
	"github.com/chisomo-phiri/studyhub/internal/config"
	"github.com/chisomo-phiri/studyhub/internal/models"
	"github.com/chisomo-phiri/studyhub/internal/notify"
	"github.com/chisomo-phiri/studyhub/internal/repositories"
	"github.com/chisomo-phiri/studyhub/internal/storage"
)

func main() {
	cfg := config.Envs
	ctx := context.Background()

	db, err := repositories.Connect(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	blobs, err := buildBlobRouter(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to initialize storage backends: ", err)
	}

	subsRepo := repositories.NewSubscriptionRepo(db)
	fanout := notify.NewFanout(subsRepo, buildSenders(ctx, cfg))

	indexer := catalog.NewIndexer(blobs, repositories.NewFileRepo(db), fanout)
	h := handlers.New(db, indexer, subsRepo, cfg.AuthRequired)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: api.SetupRouter(h),
		// Timeouts prevent resource exhaustion from slow clients
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second, // large file streams
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Starting StudyHub server on port %s (storage=%s, db=%s)",
		cfg.Port, cfg.StorageProvider, cfg.DBDriver)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Could not listen on port %s: %v", cfg.Port, err)
	}
}

// buildBlobRouter wires the configured primary backend plus the optional
// Drive overflow tier for oversized files. The local store is always
// registered so records from a local-mode deployment stay resolvable.
func buildBlobRouter(ctx context.Context, cfg config.Config) (*storage.Router, error) {
	local := storage.NewLocal(cfg.UploadDir)

	var primary storage.BlobStore
	switch cfg.StorageProvider {
	case storage.BackendLocal:
		primary = local
	case storage.BackendS3:
		primary = storage.NewS3(cfg.S3)
	case storage.BackendDrive:
		drive, err := storage.NewDrive(ctx, cfg.Drive)
		if err != nil {
			return nil, err
		}
		primary = drive
	default:
		return nil, fmt.Errorf("unknown STORAGE_PROVIDER %q", cfg.StorageProvider)
	}

	var overflow storage.BlobStore
	if cfg.TierThreshold > 0 && cfg.StorageProvider != storage.BackendDrive {
		drive, err := storage.NewDrive(ctx, cfg.Drive)
		if err != nil {
			return nil, fmt.Errorf("overflow tier: %w", err)
		}
		overflow = drive
	}

	router := storage.NewRouter(primary, overflow, cfg.TierThreshold)
	router.Register(local)
	return router, nil
}

// buildSenders enables whichever push channels the deployment configured;
// neither is required.
func buildSenders(ctx context.Context, cfg config.Config) map[string]notify.Sender {
	senders := make(map[string]notify.Sender)

	if cfg.Push.VAPIDPublicKey != "" && cfg.Push.VAPIDPrivateKey != "" {
		senders[models.SubscriptionWebPush] = notify.NewWebPush(cfg.Push)
		log.Println("Web Push notifications enabled")
	}

	if cfg.Push.FCMProjectID != "" && cfg.Push.FCMCredentials != "" {
		fcm, err := notify.NewFCM(ctx, cfg.Push)
		if err != nil {
			log.Println("FCM disabled:", err)
		} else {
			senders[models.SubscriptionFCM] = fcm
			log.Println("FCM notifications enabled")
		}
	}

	return senders
}
