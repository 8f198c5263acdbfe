// Package di hand-wires the client object graph: config, logger, wallet,
// credential store, API client, session manager, and coordinator.
package di

import (
	"fmt"

	"go.uber.org/zap"

	"kingface-client/application/interaction"
	"kingface-client/application/session"
	"kingface-client/infrastructure/config"
	"kingface-client/infrastructure/credentials"
	"kingface-client/infrastructure/httpapi"
	"kingface-client/infrastructure/wallet"
	"kingface-client/pkg/observability"
)

// Container holds the wired client components
type Container struct {
	Config       *config.Config
	Logger       *zap.Logger
	Wallet       wallet.Wallet
	Credentials  *credentials.Store
	API          *httpapi.Client
	Session      *session.Manager
	Interactions *interaction.Coordinator
}

// InitializeContainer builds the full client graph from the environment
func InitializeContainer() (*Container, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := observability.NewLogger(cfg.LogLevel, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	store, err := credentials.NewStore(cfg.StateDir)
	if err != nil {
		return nil, err
	}

	w := wallet.NewLocalWallet(cfg.StateDir)
	api := httpapi.New(cfg.BackendURL, cfg.HTTPTimeout, logger)

	sess, err := session.NewManager(api, w, store, logger)
	if err != nil {
		return nil, err
	}

	return &Container{
		Config:       cfg,
		Logger:       logger,
		Wallet:       w,
		Credentials:  store,
		API:          api,
		Session:      sess,
		Interactions: interaction.NewCoordinator(api, sess, logger),
	}, nil
}

// Close flushes buffered resources
func (c *Container) Close() {
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}
}
