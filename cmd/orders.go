package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/po-matcher/internal/export"
	"github.com/sells-group/po-matcher/internal/model"
)

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Inspect confirmed orders",
	Long:  "Commands for listing and exporting orders created from confirmed matches.",
}

// -- orders list --

var ordersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List orders, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("orders"); err != nil {
			return err
		}
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		orders, err := st.ListOrders(ctx)
		if err != nil {
			return eris.Wrap(err, "orders list")
		}

		format, _ := cmd.Flags().GetString("format")
		if len(orders) == 0 && format == "table" {
			fmt.Fprintln(os.Stderr, "No orders found.")
			return nil
		}
		return writeOrders(os.Stdout, orders, format)
	},
}

// -- orders export --

var ordersExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export orders to an XLSX workbook",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("orders"); err != nil {
			return err
		}
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		orders, err := st.ListOrders(ctx)
		if err != nil {
			return eris.Wrap(err, "orders export")
		}

		out, _ := cmd.Flags().GetString("out")
		if err := export.SaveOrders(out, orders); err != nil {
			return err
		}
		zap.L().Info("orders export: written", zap.String("path", out), zap.Int("orders", len(orders)))
		return nil
	},
}

func init() {
	ordersListCmd.Flags().String("format", "table", "output format (table, json, yaml)")
	ordersExportCmd.Flags().String("out", "orders.xlsx", "output file path")

	ordersCmd.AddCommand(ordersListCmd)
	ordersCmd.AddCommand(ordersExportCmd)
	rootCmd.AddCommand(ordersCmd)
}

// writeOrders renders orders to out in the requested format.
func writeOrders(out io.Writer, orders []model.Order, format string) error {
	switch format {
	case "table":
		formatOrdersTable(out, orders)
		return nil
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(orders), "orders: encode json")
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(orders); err != nil {
			return eris.Wrap(err, "orders: encode yaml")
		}
		return eris.Wrap(enc.Close(), "orders: encode yaml")
	default:
		return eris.Errorf("orders: unknown format %q (want table, json or yaml)", format)
	}
}

// formatOrdersTable writes a tabular list of orders to out.
func formatOrdersTable(out io.Writer, orders []model.Order) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tPO_ITEM\tCATALOG_ID\tDESCRIPTION\tCREATED")
	for _, o := range orders {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			o.ID,
			truncate(o.POItem, 40),
			o.CatalogItemID,
			truncate(o.CatalogItemDescription, 40),
			o.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
