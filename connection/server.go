package connection

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"progressboard/config"
	"progressboard/controller/health"
	"progressboard/controller/sheet"
	"progressboard/controller/task"
	"progressboard/middleware"
	"progressboard/services"
)

// NewRouter wires the relay endpoints.
func NewRouter(relay *services.RelayService, log *logrus.Entry) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog(log))
	router.Use(cors.Default())

	health.HealthController(router)
	task.TaskController(router, relay)
	sheet.SheetController(router, relay)
	return router
}

// NewRelay builds the relay service described by cfg. The returned close
// function releases the Firestore client when mirroring is on.
func NewRelay(ctx context.Context, cfg *config.Config, fs afero.Fs, log *logrus.Logger) (*services.RelayService, func(), error) {
	var source services.Source
	switch cfg.Source {
	case config.SourceSheets:
		s, err := services.NewSheetsSource(ctx, cfg.GoogleCredentials, log.WithField("component", "sheets"))
		if err != nil {
			return nil, nil, err
		}
		source = s
	default:
		source = services.NewWebhookSource(cfg.WebhookURL, cfg.WebhookTimeout, cfg.WebhookConnectTimeout, log.WithField("component", "webhook"))
	}

	opts := []services.Option{
		services.WithRefreshConfig(cfg.SheetConfig()),
		services.WithLocation(cfg.Location()),
		services.WithLogger(log.WithField("component", "relay")),
	}
	closeFn := func() {}
	if cfg.FirestoreMirror {
		fb, err := FBConnection(ctx, cfg.FirebaseCredentials, log.WithField("component", "firestore"))
		if err != nil {
			return nil, nil, errors.Wrap(err, "Failed to initialize Firestore client")
		}
		opts = append(opts, services.WithMirror(services.NewFirestoreMirror(fb)))
		closeFn = func() { _ = fb.Close() }
	}

	files := services.NewFileStore(fs, cfg.DataDir)
	return services.NewRelayService(files, source, opts...), closeFn, nil
}

// StartServer runs the relay until ctx is cancelled.
func StartServer(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	gin.SetMode(cfg.GinMode)

	relay, closeFn, err := NewRelay(ctx, cfg, afero.NewOsFs(), log)
	if err != nil {
		return err
	}
	defer closeFn()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           NewRouter(relay, log.WithField("component", "http")),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Infof("File server running on http://%s", cfg.Addr())
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "listen")
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
