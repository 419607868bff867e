/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gomarketplace/cart"
	"gomarketplace/catalog"
	"gomarketplace/dashboard"
)

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Show or change the cart",
}

var cartListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the cart",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCart(cmd.Context(), func(ctx context.Context, c *cart.Store) error {
			return renderCart(cmd.OutOrStdout(), c.Products())
		})
	},
}

var cartAddCmd = &cobra.Command{
	Use:   "add PRODUCT_ID",
	Short: "Add a product to the cart",
	Long: `cart add puts one unit of a product in the cart.

Without --title the product is looked up in the catalog, the same way
the storefront adds a listed product.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		image, _ := cmd.Flags().GetString("image-url")
		price, _ := cmd.Flags().GetFloat64("price")

		return withCart(cmd.Context(), func(ctx context.Context, c *cart.Store) error {
			if title != "" {
				c.AddToCart(cart.Product{ID: args[0], Title: title, ImageURL: image, Price: price})
				return renderCart(cmd.OutOrStdout(), c.Products())
			}

			screen, err := dashboard.New(c, catalog.NewClient(cfg.CatalogURL), dashboard.WriterAlerter{W: os.Stderr})
			if err != nil {
				return err
			}
			if err := screen.Load(ctx); err != nil {
				return err
			}
			if _, err := screen.AddToCart(args[0]); err != nil {
				return err
			}

			return renderCart(cmd.OutOrStdout(), c.Products())
		})
	},
}

var cartIncCmd = &cobra.Command{
	Use:   "inc PRODUCT_ID",
	Short: "Increase the quantity of a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCart(cmd.Context(), func(ctx context.Context, c *cart.Store) error {
			c.Increment(args[0])
			return renderCart(cmd.OutOrStdout(), c.Products())
		})
	},
}

var cartDecCmd = &cobra.Command{
	Use:   "dec PRODUCT_ID",
	Short: "Decrease the quantity of a product, removing it at zero",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCart(cmd.Context(), func(ctx context.Context, c *cart.Store) error {
			c.Decrement(args[0])
			if len(c.Products()) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "cart is empty")
				return nil
			}
			return renderCart(cmd.OutOrStdout(), c.Products())
		})
	},
}

func init() {
	rootCmd.AddCommand(cartCmd)
	cartCmd.AddCommand(cartListCmd, cartAddCmd, cartIncCmd, cartDecCmd)

	cartAddCmd.Flags().StringP("title", "t", "", "Product title; skips the catalog lookup")
	cartAddCmd.Flags().String("image-url", "", "Product image URL")
	cartAddCmd.Flags().Float64P("price", "p", 0, "Product unit price")
}
