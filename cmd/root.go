/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"gomarketplace/cart"
	"gomarketplace/config"
	"gomarketplace/dashboard"
	"gomarketplace/logging"
	"gomarketplace/store"
)

var (
	cfg    = config.Load()
	logger = logrus.StandardLogger()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gomarket",
	Short: "Shopping cart backed by a local or remote key-value store",
	Long: `gomarket keeps a shopping cart in bbolt, Redis or memory.

It can serve the cart over HTTP, edit it from the command line and
serve or browse a product catalog.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logging.New(cfg.LogLevel, cfg.LogFormat)
		logrus.SetLevel(logger.Level)
		logrus.SetFormatter(logger.Formatter)
	},
}

func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	f.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text or json)")
	f.StringVar(&cfg.DBType, "db", cfg.DBType, "Cart store type (memory, persistent or redis)")
	f.StringVar(&cfg.DBFile, "db-file", cfg.DBFile, "bbolt file used by the persistent store")
	f.StringVar(&cfg.Bucket, "bucket", cfg.Bucket, "bbolt bucket used by the persistent store")
	f.StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "Redis address used by the redis store")
	f.StringVar(&cfg.CartKey, "key", cfg.CartKey, "Key the cart is stored under")
	f.StringVarP(&cfg.CatalogURL, "catalog", "c", cfg.CatalogURL, "Catalog service base URL")
}

func openStore(ctx context.Context) (store.Store, error) {
	return store.New(ctx, store.Options{
		Type:      cfg.DBType,
		File:      cfg.DBFile,
		FileMode:  0600,
		Bucket:    cfg.Bucket,
		RedisAddr: cfg.RedisAddr,
	})
}

// withCart opens the configured store, loads the cart, runs fn and waits
// for every write fn caused before closing.
func withCart(ctx context.Context, fn func(ctx context.Context, c *cart.Store) error) (err error) {
	kv, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer kv.Close()

	c, err := cart.New(kv, cart.WithKey(cfg.CartKey), cart.WithLogger(logger))
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := c.Close(ctx); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("saving cart: %w", closeErr))
		}
	}()

	if err := c.WaitHydrated(ctx); err != nil {
		return err
	}

	return fn(ctx, c)
}

func renderCart(w io.Writer, lines []cart.Line) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tQTY\tPRICE\tSUBTOTAL")
	for _, l := range lines {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			l.ID, l.Title, l.Quantity,
			dashboard.FormatValue(l.Price),
			dashboard.FormatValue(l.Price*float64(l.Quantity)))
	}

	t := cart.Sum(lines)
	fmt.Fprintf(tw, "\t%d items\t\t\t%s\n", t.Items, dashboard.FormatValue(t.Amount))

	return tw.Flush()
}
