package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bher20/solarquote/internal/alerting"
	"github.com/bher20/solarquote/internal/config"
	"github.com/bher20/solarquote/internal/logging"
	"github.com/bher20/solarquote/internal/notification"
	"github.com/bher20/solarquote/internal/quote"
	"github.com/bher20/solarquote/internal/storage"
	"github.com/bher20/solarquote/pkg/appliances"
)

// options is the state shared by every subcommand.
type options struct {
	configPath string
	logLevel   string

	cfg    config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "solarquote",
		Short: "Appliance load calculator and solar quote estimator",
		Long: `solarquote sums the connected load of household appliances and turns it
into a sized and costed solar installation quote.

Run "solarquote serve" for the HTTP API, or use the load, quote and catalog
commands to work with JSON files directly.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if opts.logLevel != "" {
				cfg.Log.Level = opts.logLevel
			}
			opts.cfg = cfg

			if opts.logger == nil {
				logger, err := logging.New(cfg.Log.Level)
				if err != nil {
					return fmt.Errorf("failed to initialize logger: %w", err)
				}
				opts.logger = logger
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to YAML config (default $"+config.PathEnv+")")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		newServeCmd(opts),
		newLoadCmd(opts),
		newQuoteCmd(opts),
		newCatalogCmd(opts),
		newMigrateCmd(opts),
		newJanitorCmd(opts),
	)
	return root
}

// app bundles the long-lived collaborators built from config.
type app struct {
	st      storage.Storage
	catalog *appliances.Catalog
	svc     *quote.Service
}

func (a *app) Close() error {
	a.svc.Wait()
	return a.st.Close()
}

func openStorage(ctx context.Context, opts *options) (storage.Storage, error) {
	db := opts.cfg.DB
	st, err := storage.Open(ctx, storage.Config{
		Driver:      db.Driver,
		DSN:         db.DSN,
		AutoMigrate: db.AutoMigrate,
	}, opts.logger)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return st, nil
}

func buildApp(ctx context.Context, opts *options) (*app, error) {
	cfg := opts.cfg
	st, err := openStorage(ctx, opts)
	if err != nil {
		return nil, err
	}

	catalog, err := loadCatalog(ctx, cfg, st)
	if err != nil {
		st.Close()
		return nil, err
	}

	alertCfg := alerting.NewAlertConfig(cfg.Alert.WebhookURL, cfg.Alert.WebhookType)
	alertCfg.Currency = cfg.Currency
	mailer := notification.NewService(notification.Config{
		Provider:     cfg.Email.Provider,
		Host:         cfg.Email.Host,
		Port:         cfg.Email.Port,
		Username:     cfg.Email.Username,
		Password:     cfg.Email.Password,
		Encryption:   cfg.Email.Encryption,
		FromAddress:  cfg.Email.FromAddress,
		FromName:     cfg.Email.FromName,
		APIKey:       cfg.Email.APIKey,
		SalesAddress: cfg.Email.SalesAddress,
		Currency:     cfg.Currency,
	}, opts.logger)

	svc := quote.NewServiceWithStorage(st, opts.logger,
		alerting.NewAlerter(alertCfg, opts.logger),
		mailer,
	)
	return &app{st: st, catalog: catalog, svc: svc}, nil
}

// loadCatalog layers the catalog file, the env overlay and persisted entries
// over the builtin appliances.
func loadCatalog(ctx context.Context, cfg config.Config, st storage.Storage) (*appliances.Catalog, error) {
	var overlays [][]appliances.Category
	if cfg.Catalog.File != "" {
		cats, err := appliances.LoadFile(cfg.Catalog.File)
		if err != nil {
			return nil, err
		}
		overlays = append(overlays, cats)
	}
	if env := appliances.FromEnv(); env != nil {
		overlays = append(overlays, env)
	}
	cat, err := storage.LoadCatalog(ctx, st, overlays...)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return cat, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
