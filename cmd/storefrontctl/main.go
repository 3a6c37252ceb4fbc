// Command storefrontctl runs catalog maintenance against the storefront
// database: restocking, repricing and the low-stock report.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"storefront/internal/config"
	applog "storefront/internal/log"
	"storefront/internal/repos"
	"storefront/internal/services"
	"storefront/internal/validate"
)

const usage = `usage: storefrontctl <command> [flags]

commands:
  stock     --slug <product> --qty <units>     set units in stock
  price     --slug <product> --amount <price>  set the current price
  low-stock                                    list products running out
`

func main() {
	cfg := config.Load()
	zl, err := applog.New(cfg.Production())
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		zl.Fatal("db.open", zap.Error(err))
	}
	defer db.Close()

	if err := run(context.Background(), db, zl, os.Args[1:], os.Stdout); err != nil {
		zl.Error("ctl.fail", zap.Error(err), zap.Strings("args", os.Args[1:]))
		fmt.Fprintln(os.Stderr, err)
		db.Close()
		os.Exit(1)
	}
}

var errUsage = errors.New(usage)

func run(ctx context.Context, db *sqlx.DB, zl *zap.Logger, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	inventory := services.NewInventoryService(repos.NewInventoryRepo(db))
	catalog := services.NewCatalogService(repos.NewCategoryRepo(db), repos.NewBrandRepo(db), repos.NewProductRepo(db))

	fs := pflag.NewFlagSet(args[0], pflag.ContinueOnError)
	fs.SetOutput(out)
	slugFlag := fs.String("slug", "", "product slug")

	switch args[0] {
	case "stock":
		qty := fs.Int("qty", -1, "units in stock")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		slug, ok := validate.Slug(*slugFlag)
		if !ok {
			return fmt.Errorf("invalid --slug %q", *slugFlag)
		}
		if *qty < 0 {
			return errors.New("--qty must be zero or more")
		}
		if err := inventory.Restock(ctx, slug, *qty); err != nil {
			return err
		}
		zl.Info("inventory.restock", zap.String("slug", slug), zap.Int("qty", *qty), zap.Bool("audit", true))
		fmt.Fprintf(out, "%s: %d in stock\n", slug, *qty)

	case "price":
		amount := fs.String("amount", "", "new price")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		slug, ok := validate.Slug(*slugFlag)
		if !ok {
			return fmt.Errorf("invalid --slug %q", *slugFlag)
		}
		price, ok := validate.Price(*amount)
		if !ok || !price.Valid {
			return fmt.Errorf("invalid --amount %q", *amount)
		}
		if err := catalog.SetPrice(ctx, slug, price.Decimal); err != nil {
			return err
		}
		zl.Info("catalog.reprice", zap.String("slug", slug), zap.String("price", price.Decimal.StringFixed(2)), zap.Bool("audit", true))
		fmt.Fprintf(out, "%s: now %s\n", slug, price.Decimal.StringFixed(2))

	case "low-stock":
		rows, err := inventory.LowStock(ctx)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			fmt.Fprintln(out, "nothing running low")
		}
		for _, r := range rows {
			fmt.Fprintf(out, "%-40s %3d\n", r.Name, r.Qty)
		}

	default:
		return fmt.Errorf("unknown command %q\n\n%s", args[0], usage)
	}
	return nil
}
