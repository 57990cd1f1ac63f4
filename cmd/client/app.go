package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"hardwareStoreInventory/internal/api"
	"hardwareStoreInventory/internal/auth"
	"hardwareStoreInventory/internal/config"
	"hardwareStoreInventory/internal/crud"
	"hardwareStoreInventory/internal/db"
	"hardwareStoreInventory/internal/logger"
	"hardwareStoreInventory/internal/media"
	"hardwareStoreInventory/internal/nav"
	"hardwareStoreInventory/internal/screens"
	"hardwareStoreInventory/repository"
)

var errNotEntity = errors.New("route is not an entity screen")

// app is the per-invocation wiring: config, logger, session database,
// restored authentication context and API client.
type app struct {
	in  *bufio.Reader
	out io.Writer

	cfg     *config.Config
	log     *zap.Logger
	db      *sql.DB
	session *auth.Context
	screens []*screens.Screen
	shell   *nav.Shell
	images  media.Resolver
}

func (a *app) open(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg

	if a.log, err = logger.New(cfg.Log.Level, zap.String("app", "ferreteria")); err != nil {
		return err
	}
	a.log.Debug("configuration loaded", zap.Stringer("config", cfg))

	if a.db, err = db.Open(cfg.Session.DBPath); err != nil {
		return fmt.Errorf("open session db: %w", err)
	}

	a.session = auth.NewContext(repository.NewSessionRepository(a.db), a.log)
	a.session.Restore(ctx)

	if a.screens, err = screens.Builtin(); err != nil {
		return err
	}
	a.shell = nav.NewShell(a.screens)
	a.images = media.NewResolver(cfg.Server.UploadsBase())
	return nil
}

func (a *app) close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn("close session db", zap.Error(err))
		}
		a.db = nil
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}

// client returns an API client carrying the current session token.
func (a *app) client() *api.Client {
	return api.NewClient(&api.ClientConfig{
		BaseURL: a.cfg.Server.URL,
		Timeout: a.cfg.Server.Timeout,
	}).WithToken(a.session.State().Token)
}

// controller opens route on the current stack and binds it to a controller.
// Standard users get a read-only controller.
func (a *app) controller(route string, confirm crud.Confirmer) (*crud.Controller, error) {
	st := a.session.State()
	dest, err := a.shell.Open(st, route)
	if err != nil {
		return nil, err
	}
	if dest.Screen == nil {
		return nil, fmt.Errorf("%w: %s", errNotEntity, dest.Route)
	}
	return crud.New(dest.Screen, a.client(), crud.Options{
		Admin:     st.IsAdmin(),
		Images:    a.images,
		Notifier:  notifier{a.out},
		Confirmer: confirm,
		Logger:    a.log,
	}), nil
}
