package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/patpet21/test-pro-enterprise-sub002/config"
	academycatalog "github.com/patpet21/test-pro-enterprise-sub002/internal/academy/catalog"
	academyhttp "github.com/patpet21/test-pro-enterprise-sub002/internal/academy/http"
	academyrepo "github.com/patpet21/test-pro-enterprise-sub002/internal/academy/repository"
	academysvc "github.com/patpet21/test-pro-enterprise-sub002/internal/academy/service"
	"github.com/patpet21/test-pro-enterprise-sub002/internal/advisory"
	advisoryhttp "github.com/patpet21/test-pro-enterprise-sub002/internal/advisory/http"
	"github.com/patpet21/test-pro-enterprise-sub002/internal/advisory/panel"
	httpapi "github.com/patpet21/test-pro-enterprise-sub002/internal/api/http"
	"github.com/patpet21/test-pro-enterprise-sub002/internal/api/http/routes"
	"github.com/patpet21/test-pro-enterprise-sub002/internal/auth"
	authmw "github.com/patpet21/test-pro-enterprise-sub002/internal/auth/middleware"
	"github.com/patpet21/test-pro-enterprise-sub002/internal/bootstrap"
	"github.com/patpet21/test-pro-enterprise-sub002/internal/jobs"
	"github.com/patpet21/test-pro-enterprise-sub002/internal/storage/postgres"
	"github.com/patpet21/test-pro-enterprise-sub002/internal/upload"
	"github.com/patpet21/test-pro-enterprise-sub002/internal/users"
	wizardhttp "github.com/patpet21/test-pro-enterprise-sub002/internal/wizard/http"
	wizardrepo "github.com/patpet21/test-pro-enterprise-sub002/internal/wizard/repository"
	wizardsvc "github.com/patpet21/test-pro-enterprise-sub002/internal/wizard/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	bootstrap.SetGinMode(cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatalf("server: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	rdb, err := bootstrap.OpenRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer rdb.Close()

	var (
		pool  *pgxpool.Pool
		sqlDB *sql.DB
	)
	if cfg.Database.Enabled {
		pool, err = bootstrap.OpenDB(ctx, bootstrap.DBOptions{DSN: cfg.Database.PostgresDSN(), MaxConns: 10, MinConns: 2})
		if err != nil {
			return err
		}
		defer pool.Close()

		sqlDB, err = postgres.NewConnection(ctx, &cfg.Database)
		if err != nil {
			return err
		}
		defer sqlDB.Close()
	} else {
		log.Println("DB_ENABLED=false: submissions and certifications are off")
	}

	cat, err := academycatalog.Default()
	if err != nil {
		return err
	}

	sessions := wizardrepo.NewSessionRepository(rdb)
	var submissions wizardsvc.SubmissionStore
	if pool != nil {
		submissions = wizardrepo.NewSubmissionRepository(pool)
	}
	orchestrator := wizardsvc.NewOrchestrator(sessions, submissions)

	var advisor advisory.Service
	switch cfg.Advisory.Mode {
	case config.AdvisoryModeRemote:
		advisor = advisory.NewRemoteService(cfg.Advisory.BaseURL, cfg.Advisory.APIKey, cfg.Advisory.RateLimitRPS, cfg.Advisory.Burst)
	default:
		advisor = advisory.NewMockService(cfg.Advisory.MockDelay)
	}
	panels := panel.NewManager(advisor, orchestrator, cfg.Advisory.PanelTTL)
	defer panels.Shutdown()

	var certs academysvc.CertificationStore
	if sqlDB != nil {
		certs = academyrepo.NewCertificationRepository(sqlDB)
	}
	academy := academysvc.NewService(cat, academyrepo.NewAttemptRepository(rdb), certs, panels)

	authChain, err := authMiddleware(ctx, cfg, pool)
	if err != nil {
		return err
	}

	deps := bootstrap.RouterDeps{
		ServiceName:    cfg.App.ServiceName,
		Version:        cfg.App.Version,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Redis:          httpapi.RedisPinger{Client: rdb},
		V1: routes.V1Deps{
			Auth:    authChain,
			Wizard:  wizardhttp.New(orchestrator, cat, sessions, panels),
			Panels:  advisoryhttp.New(panels, orchestrator),
			Academy: academyhttp.New(academy),
			Uploads: upload.NewHandler(upload.NewCloudinaryClient(cfg.Upload), cfg.Upload.MaxBytes),
		},
	}
	if pool != nil {
		deps.DB = pool
	}
	router := bootstrap.BuildRouter(deps)

	scheduler := jobs.NewScheduler(panels)
	if err := scheduler.Start(cfg.Jobs.PanelSweepSpec); err != nil {
		return err
	}
	defer scheduler.Stop()

	return serve(ctx, ":"+cfg.Server.Port, router)
}

// authMiddleware verifies Firebase ID tokens when credentials are configured
// and falls back to the X-User-Id header otherwise.
func authMiddleware(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool) ([]gin.HandlerFunc, error) {
	var chain []gin.HandlerFunc
	if cfg.Firebase.CredentialsPath != "" {
		client, err := auth.InitializeFirebase(ctx, &cfg.Firebase)
		if err != nil {
			return nil, err
		}
		chain = append(chain, authmw.FirebaseAuthMiddleware(client))
	} else {
		log.Println("FIREBASE_CREDENTIALS_PATH not set: using X-User-Id development auth")
		chain = append(chain, auth.OptionalUser())
	}
	if pool != nil {
		chain = append(chain, auth.WithUser(users.NewRepo(pool)))
	}
	return chain, nil
}

func serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		// cancel open event streams on shutdown
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Println("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
