package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/storefront/internal/checkout"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/storage"
)

type OrdersOptions struct {
	*RootOptions
	Origin string
	Email  string
}

func NewOrdersCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &OrdersOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Print the order log of one origin",
		Long: `Print the confirmed orders stored for one origin.

Examples:
  storefront orders --origin 3f1c0a1e-7d55-4b8e-9c1e-2b8f2d4f6a10
  storefront orders --origin 3f1c0a1e-7d55-4b8e-9c1e-2b8f2d4f6a10 --email a@x.com --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts.RootOptions)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid configuration", err)
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			base, closeStore, err := openStore(ctx, cfg)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open store", err)
			}
			defer closeStore()

			return runOrders(ctx, opts, base, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.Origin, "origin", "", "origin id (required)")
	_ = cmd.MarkFlagRequired("origin")
	cmd.Flags().StringVar(&opts.Email, "email", "", "only orders placed by this email")

	return cmd
}

func runOrders(ctx context.Context, opts *OrdersOptions, base storage.Store, w io.Writer) error {
	log := checkout.NewOrderLog(service.OriginStore(base, opts.Origin))

	var (
		orders []models.Order
		err    error
	)
	if opts.Email != "" {
		orders, err = log.ForUser(ctx, opts.Email)
	} else {
		orders, err = log.List(ctx)
	}
	if err != nil {
		return WrapExitError(ExitFailure, "failed to read order log", err)
	}

	if opts.Format == "json" {
		if orders == nil {
			orders = []models.Order{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(orders)
	}

	if len(orders) == 0 {
		fmt.Fprintf(w, "No orders for origin: %s\n", opts.Origin)
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tEMAIL\tITEMS\tTOTAL")
	for _, o := range orders {
		count := 0
		for _, it := range o.Items {
			count += it.Quantity
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", o.ID, o.Date, o.User.Email, count, o.Total.StringFixed(2))
	}
	return tw.Flush()
}
