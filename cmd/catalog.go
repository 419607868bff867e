/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"gomarketplace/cart"
	"gomarketplace/catalog"
	"gomarketplace/dashboard"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Serve or browse the product catalog",
}

var catalogServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve products from a JSON file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		filename, _ := cmd.Flags().GetString("filename")
		addr, _ := cmd.Flags().GetString("listen")

		products, err := catalog.LoadFile(filename)
		if err != nil {
			return err
		}

		logger.Printf("Serving %d products from %s on %s", len(products), filename, addr)
		srv := &http.Server{
			Addr:              addr,
			Handler:           catalog.NewServer(products),
			ReadHeaderTimeout: 5 * time.Second,
		}

		return srv.ListenAndServe()
	},
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCart(cmd.Context(), func(ctx context.Context, c *cart.Store) error {
			screen, err := dashboard.New(c, catalog.NewClient(cfg.CatalogURL), dashboard.WriterAlerter{W: os.Stderr})
			if err != nil {
				return err
			}
			if err := screen.Load(ctx); err != nil {
				return err
			}

			if err := screen.Render(cmd.OutOrStdout()); err != nil {
				return err
			}

			t := c.Totals()
			fmt.Fprintf(cmd.OutOrStdout(), "\ncart: %d items, %s\n", t.Items, dashboard.FormatValue(t.Amount))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogServeCmd, catalogListCmd)

	catalogServeCmd.Flags().StringP("filename", "f", "products.json", "Catalog file (JSON array of products)")
	catalogServeCmd.Flags().StringP("listen", "l", ":3333", "Address to listen on")
}
