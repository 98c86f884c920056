package app

import (
	"context"
	"fmt"
	"time"

	"github.com/Leopold1975/incidents_control/internal/incidents/api/server"
	"github.com/Leopold1975/incidents_control/internal/incidents/repository/filestore"
	ir "github.com/Leopold1975/incidents_control/internal/incidents/repository/incidentrepo/sqlite"
	pr "github.com/Leopold1975/incidents_control/internal/incidents/repository/projectrepo/sqlite"
	sr "github.com/Leopold1975/incidents_control/internal/incidents/repository/sessionrepo/redis"
	ur "github.com/Leopold1975/incidents_control/internal/incidents/repository/userrepo/sqlite"
	"github.com/Leopold1975/incidents_control/internal/incidents/services/authservice"
	"github.com/Leopold1975/incidents_control/internal/incidents/services/incidentservice"
	"github.com/Leopold1975/incidents_control/internal/incidents/services/projectservice"
	"github.com/Leopold1975/incidents_control/internal/pkg/config"
	"github.com/Leopold1975/incidents_control/internal/pkg/sqlitetools"
	"github.com/Leopold1975/incidents_control/pkg/logger"
)

type Server interface {
	Start(context.Context) error
	Shutdown(context.Context) error
}

type IncidentsApp struct {
	s   Server
	lg  logger.Logger
	cfg config.Config
}

func New(ctx context.Context, cfg config.Config) (IncidentsApp, error) {
	lg, err := logger.New(cfg.Logger)
	if err != nil {
		return IncidentsApp{}, fmt.Errorf("can't get logger error: %w", err)
	}

	if len(cfg.Auth.Secret) < config.MinSecretLen {
		lg.Warnf("JWT secret is shorter than %d characters", config.MinSecretLen)
	}

	db, err := sqlitetools.Connect(ctx, cfg.SQLiteDB)
	if err != nil {
		return IncidentsApp{}, fmt.Errorf("sqlite connect error: %w", err)
	}

	if err := sqlitetools.ApplyMigration(db, cfg.SQLiteDB); err != nil {
		return IncidentsApp{}, fmt.Errorf("apply migration error: %w", err)
	}

	sessions, err := sr.New(ctx, cfg.Redis)
	if err != nil {
		return IncidentsApp{}, fmt.Errorf("redis session store initializing error: %w", err)
	}

	files, err := filestore.New(cfg.Uploads.Dir)
	if err != nil {
		return IncidentsApp{}, fmt.Errorf("filestore initializing error: %w", err)
	}

	userRepo := ur.New(db)
	projectRepo := pr.New(db)
	incidentRepo := ir.New(db)

	authService := authservice.New(userRepo, sessions, cfg.Auth)
	projectService := projectservice.New(projectRepo, lg)
	incidentService := incidentservice.New(incidentRepo, projectRepo,
		incidentservice.NewUploads(files, cfg.Uploads), lg)

	s := server.New(cfg, authService, projectService, incidentService, sessions.Client(), lg)

	return IncidentsApp{
		s:   s,
		lg:  lg,
		cfg: cfg,
	}, nil
}

func (ia *IncidentsApp) Run(ctx context.Context) {
	ia.lg.Infof("STARTED SERVER ON %s", ia.cfg.Server.Addr)

	go func() {
		if err := ia.s.Start(ctx); err != nil {
			ia.lg.Errorf("server start error: %s", err.Error())
			ctx.Done()

			return
		}
	}()

	<-ctx.Done()

	ctxS, cancel := context.WithTimeout(context.Background(), time.Second*5) //nolint:gomnd
	defer cancel()

	if err := ia.Stop(ctxS); err != nil { //nolint:contextcheck
		ia.lg.Errorf("server shutdown error: %s", err.Error())
	}
}

func (ia *IncidentsApp) Stop(ctx context.Context) error {
	if err := ia.s.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	ia.lg.Info("Shutdowned successfully")

	return nil
}
