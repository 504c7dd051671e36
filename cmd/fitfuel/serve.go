package fitfuel

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/saadjs/fitfuel/internal/api"
	"github.com/saadjs/fitfuel/internal/app"
	"github.com/saadjs/fitfuel/internal/auth"
	"github.com/saadjs/fitfuel/internal/logger"
	"github.com/saadjs/fitfuel/internal/provider/openfoodfacts"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and live update socket",
	RunE: func(cmd *cobra.Command, args []string) error {
		logDir, err := app.DefaultLogDir()
		if err != nil {
			return err
		}
		if err := logger.Init(logger.Config{Debug: debug, Dir: logDir, Stderr: true}); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		issuer, err := auth.NewIssuer(cfg.Server.JWTSecret, cfg.Server.TokenTTL)
		if err != nil {
			return fmt.Errorf("server.jwt_secret: %w", err)
		}
		addr := serveAddr
		if addr == "" {
			addr = cfg.Server.Addr
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return withDB(func(sqldb *sql.DB) error {
			store, closeStore, err := cartStore(ctx, sqldb)
			if err != nil {
				return err
			}
			defer closeStore()

			cur, err := currency(sqldb, "")
			if err != nil {
				return err
			}
			opts := api.Options{
				DB:       sqldb,
				Store:    store,
				Issuer:   issuer,
				Foods:    &openfoodfacts.Client{BaseURL: cfg.OpenFoodFacts.BaseURL},
				Currency: cur,
			}
			if cfg.PaymentEnabled() {
				gw, err := paymentGateway()
				if err != nil {
					return err
				}
				opts.Gateway = gw
				opts.PaymentKeyID = gw.KeyID()
			} else {
				logger.Warn("payments disabled; checkout will be rejected")
			}
			srv, err := api.New(opts)
			if err != nil {
				return err
			}

			httpSrv := &http.Server{Addr: addr, Handler: srv.Router(), ReadHeaderTimeout: 10 * time.Second}
			errCh := make(chan error, 1)
			go func() {
				logger.Info("listening", "addr", addr)
				errCh <- httpSrv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}
			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return httpSrv.Shutdown(shutdownCtx)
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default server.addr)")
}
