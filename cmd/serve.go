/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"gomarketplace/api"
	"gomarketplace/cart"
	"gomarketplace/catalog"
	"gomarketplace/dashboard"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the cart over HTTP",
	Long: `gomarket serve command.

The serve command loads the cart from the configured store, fetches the
catalog once and exposes both over HTTP until interrupted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		kv, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer kv.Close()

		c, err := cart.New(kv, cart.WithKey(cfg.CartKey), cart.WithLogger(logger))
		if err != nil {
			return err
		}
		c.Subscribe(func(lines []cart.Line) {
			t := cart.Sum(lines)
			logger.WithField("component", "cart").Infof("cart now has %d lines, %d items", len(lines), t.Items)
		})
		c.Start(ctx)

		screen, err := dashboard.New(c, catalog.NewClient(cfg.CatalogURL), nil)
		if err != nil {
			return err
		}
		go func() {
			if err := screen.Load(ctx); err != nil {
				logger.Warnf("catalog unavailable: %v", err)
			}
		}()

		a, err := api.New(cfg.Address, cfg.Port, c, screen, logger)
		if err != nil {
			return err
		}

		errc := make(chan error, 1)
		go func() { errc <- a.Start() }()

		select {
		case err = <-errc:
		case <-ctx.Done():
			logger.Println("shutting down")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if serr := a.Shutdown(shutdownCtx); serr != nil {
			logger.Errorf("stopping http server: %v", serr)
		}
		if cerr := c.Close(shutdownCtx); cerr != nil {
			logger.Errorf("saving cart: %v", cerr)
		}

		return err
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&cfg.Address, "address", "a", cfg.Address, "Address to listen on")
	serveCmd.Flags().IntVarP(&cfg.Port, "port", "p", cfg.Port, "Port to listen on")
}
