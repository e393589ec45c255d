package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"valentine/internal/acceptflow"
	"valentine/internal/auth"
	"valentine/internal/capture"
	"valentine/internal/db"
	httpx "valentine/internal/http"
	"valentine/internal/notify"
	"valentine/internal/storage"
	"valentine/internal/valentine"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func serve(ctx context.Context) error {
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	pages := &valentine.Service{Store: store}

	uploader, uploadDir, err := openStorage(ctx)
	if err != nil {
		return err
	}

	var raster capture.Rasterizer = capture.Disabled{}
	if cfg.Rasterizer == "rod" {
		rr := capture.NewRodRasterizer(capture.RodConfig{
			DebuggerURL: cfg.ChromeDebuggerURL,
			Bin:         cfg.ChromeBin,
		}, logger)
		defer func() { _ = rr.Close() }()
		raster = rr
	}

	var mailer notify.Mailer = &notify.LogMailer{Logger: logger}
	if cfg.ResendAPIKey != "" {
		mailer = notify.NewResendMailer(cfg.ResendAPIKey)
	}
	notifySvc := &notify.Service{Pages: pages, Mailer: mailer, From: cfg.MailFrom, Logger: logger}

	var notifier acceptflow.Notifier = notifySvc
	if cfg.NotifyURL != "" {
		notifier = notify.NewClient(cfg.NotifyURL)
	}

	flows := acceptflow.NewRegistry(pages, acceptflow.Deps{
		Rasterizer:  raster,
		Uploader:    uploader,
		Recorder:    pages,
		Notifier:    notifier,
		Celebration: acceptflow.NewConfetti(logger),
		Logger:      logger,
		Captures:    semaphore.NewWeighted(int64(cfg.CaptureLimit)),
	}, acceptflow.RegistryConfig{
		BaseURL:     cfg.PublicBaseURL,
		SettleDelay: cfg.SettleDelay,
		Scale:       cfg.CaptureScale,
	})

	r := httpx.NewRouter(cfg, httpx.Deps{
		Pages:     pages,
		Flows:     flows,
		Notify:    notifySvc,
		JWT:       auth.NewJWT(cfg.JWTSecret),
		Logger:    logger,
		UploadDir: uploadDir,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		// Let accepted pages finish their capture, record and notify.
		flows.WaitAll()
		return err
	})
	return g.Wait()
}

func openStore(ctx context.Context) (valentine.Store, error) {
	switch cfg.StoreDriver {
	case "memory":
		logger.Warn("using in-memory store; data is lost on restart")
		return valentine.NewMemoryStore(), nil
	default:
		gdb, err := db.Connect(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx, gdb); err != nil {
			return nil, err
		}
		return &valentine.GormStore{DB: gdb}, nil
	}
}

func openStorage(ctx context.Context) (storage.Storage, string, error) {
	switch cfg.StorageDriver {
	case "s3":
		s, err := storage.NewS3Storage(ctx, storage.S3Config{
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			PublicURL: cfg.S3PublicURL,
		})
		if err != nil {
			return nil, "", fmt.Errorf("s3 storage: %w", err)
		}
		return s, "", nil
	default:
		return storage.NewLocalStorage(cfg.UploadDir, cfg.PublicBaseURL+"/uploads"), cfg.UploadDir, nil
	}
}
