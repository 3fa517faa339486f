package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/jengzang/election-map-backend-go/internal/api"
	"github.com/jengzang/election-map-backend-go/internal/config"
	"github.com/jengzang/election-map-backend-go/internal/database"
	"github.com/jengzang/election-map-backend-go/internal/logging"
	"github.com/jengzang/election-map-backend-go/internal/middleware"
	"github.com/jengzang/election-map-backend-go/internal/repository"
	"github.com/jengzang/election-map-backend-go/internal/service"
)

const shutdownTimeout = 10 * time.Second

type rootOptions struct {
	configPath string
	cfg        *config.Config
	log        logging.Logger
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "electionmap",
		Short: "Election choropleth analytics server",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.init()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file path (default: environment only)")

	cmd.AddCommand(
		newServeCommand(opts),
		newImportCommand(opts),
		newTokenCommand(opts),
	)
	return cmd
}

func (o *rootOptions) init() error {
	var err error
	if o.configPath != "" {
		o.cfg, err = config.Load(o.configPath)
	} else {
		o.cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return err
	}

	o.log, err = logging.NewLogger(o.cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	logging.SetDefault(o.log)
	return nil
}

// openElectionDB opens the shared connection and runs migrations
func (o *rootOptions) openElectionDB() (*repository.ElectionRepository, error) {
	if err := database.Init(database.Config{Path: o.cfg.Data.DBPath, Logger: o.log.Named("database")}); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return repository.NewElectionRepository(database.GetDB()), nil
}

func (o *rootOptions) datasetSource() (repository.DatasetSource, error) {
	files := repository.NewFileRepository(o.cfg.Data.Dir)
	log := o.log.Named("dataset")
	if o.cfg.Data.Source != config.SourceSQLite {
		return repository.NewFileSource(files, log), nil
	}
	elections, err := o.openElectionDB()
	if err != nil {
		return nil, err
	}
	return repository.NewSQLiteSource(elections, files, log), nil
}

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Load the dataset and serve the map API",
		RunE: func(cmd *cobra.Command, args []string) error {
			defer database.Close()

			source, err := opts.datasetSource()
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			metrics, err := service.NewMetrics(reg)
			if err != nil {
				return err
			}

			svc := service.NewMapService(source, metrics, opts.log.Named("service"))
			if _, err := svc.Reload(cmd.Context()); err != nil {
				return err
			}

			router, stopRouter, err := api.SetupRouter(opts.cfg, api.Deps{MapService: svc, Logger: opts.log, Registry: reg})
			if err != nil {
				return err
			}
			defer stopRouter()
			return run(cmd.Context(), &http.Server{Addr: opts.cfg.Server.Port, Handler: router}, opts.log)
		},
	}
}

// run serves until SIGINT or SIGTERM, then drains connections
func run(ctx context.Context, srv *http.Server, log logging.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", logging.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newImportCommand(opts *rootOptions) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Copy parties.json and election_data.json into the SQLite store",
		RunE: func(cmd *cobra.Command, args []string) error {
			defer database.Close()

			if dir == "" {
				dir = opts.cfg.Data.Dir
			}
			elections, err := opts.openElectionDB()
			if err != nil {
				return err
			}
			parties, munis, err := repository.Import(cmd.Context(), repository.NewFileRepository(dir), elections)
			if err != nil {
				return err
			}
			opts.log.Info("import finished",
				logging.String("dir", dir),
				logging.Int("parties", parties),
				logging.Int("municipalities", munis))
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "data directory (default: data.dir from config)")
	return cmd
}

func newTokenCommand(opts *rootOptions) *cobra.Command {
	var subject string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print an admin bearer token signed with auth.jwt_secret",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !opts.cfg.AdminEnabled() {
				return errors.New("auth.jwt_secret is not set")
			}
			token, err := middleware.IssueToken(opts.cfg.Auth.JWTSecret, subject, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "admin", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	return cmd
}
