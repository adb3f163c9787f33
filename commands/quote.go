// Package commands adds the quote builder's sub-commands to the PocketBase
// command line.
package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/spf13/cobra"

	"quotebuilder/api"
	"quotebuilder/apiclient"
	"quotebuilder/collections"
	"quotebuilder/config"
	"quotebuilder/services"
	"quotebuilder/templates"
)

// NewQuoteCommand creates the "quote" command. Without --server the price
// and push sub-commands work on the local data directory; with it they go
// through the REST API of a running instance.
func NewQuoteCommand(app *pocketbase.PocketBase, cfg *config.Config) *cobra.Command {
	command := &cobra.Command{
		Use:   "quote",
		Short: "Price, save and export quotes",
	}

	command.AddCommand(newPriceCommand(app))
	command.AddCommand(newPushCommand(app))
	command.AddCommand(newExportCommand(app, cfg))

	return command
}

// readDrafts loads a {"items": [...]} file, or stdin when path is "-".
func readDrafts(path string, stdin io.Reader) ([]api.ItemDraft, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var req api.PriceRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return nil, fmt.Errorf("read items from %s: %w", path, err)
	}
	return req.Items, nil
}

func catalogFor(app *pocketbase.PocketBase, server string) services.CatalogLookup {
	if server != "" {
		return apiclient.New(server)
	}
	collections.Setup(app)
	return services.NewRecordCatalog(app)
}

func printPriced(w io.Writer, items []services.PricedItem, totals services.QuoteTotals) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "#\tReference\tMeasure\tExcl. GST\tIncl. GST\t")
	for i, it := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t\n",
			i+1, it.Reference, it.MeasureType,
			services.FormatMoney(it.CostExclGST), services.FormatMoney(it.CostInclGST))
	}
	fmt.Fprintln(tw, "\t\t\t\t\t")
	fmt.Fprintf(tw, "\t\t\tSubtotal\t%s\t\n", services.FormatMoney(totals.ExclGST))
	fmt.Fprintf(tw, "\t\t\tGST\t%s\t\n", services.FormatMoney(totals.GST))
	fmt.Fprintf(tw, "\t\t\tTotal\t%s\t\n", services.FormatMoney(totals.InclGST))
	return tw.Flush()
}

func newPriceCommand(app *pocketbase.PocketBase) *cobra.Command {
	var server string

	command := &cobra.Command{
		Use:          "price <items.json|->",
		Short:        "Price quote items without saving them",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			drafts, err := readDrafts(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}

			items, totals, err := services.PriceItems(cmd.Context(), catalogFor(app, server), api.Drafts(drafts))
			if err != nil {
				return err
			}
			return printPriced(cmd.OutOrStdout(), items, totals)
		},
	}

	command.Flags().StringVar(&server, "server", "", "base URL of a running quote builder (default: local data)")

	return command
}

func newPushCommand(app *pocketbase.PocketBase) *cobra.Command {
	var (
		server  string
		jobID   string
		quoteID string
	)

	command := &cobra.Command{
		Use:          "push <items.json|->",
		Short:        "Save items as a new quote for a job, or replace the items of a quote",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (jobID == "") == (quoteID == "") {
				return errors.New("exactly one of --job or --quote is required")
			}
			drafts, err := readDrafts(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}

			req := services.SaveQuoteRequest{JobID: jobID, QuoteID: quoteID}
			var result services.SaveResult
			if server != "" {
				result, err = pushRemote(cmd.Context(), apiclient.New(server), req, api.Drafts(drafts))
			} else {
				collections.Setup(app)
				result, err = pushLocal(cmd.Context(), app, req, api.Drafts(drafts))
			}
			if err != nil {
				return err
			}

			action := "updated"
			if result.Created {
				action = "created"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "quote %s %s: %d items, %d removed, total %s incl. GST\n",
				result.QuoteID, action, len(result.ItemIDs), result.Removed, services.FormatMoney(result.Totals.InclGST))
			return nil
		},
	}

	command.Flags().StringVar(&server, "server", "", "base URL of a running quote builder (default: local data)")
	command.Flags().StringVar(&jobID, "job", "", "create a new quote for this job")
	command.Flags().StringVar(&quoteID, "quote", "", "replace the items of this quote")

	return command
}

// pushLocal saves in one transaction.
func pushLocal(ctx context.Context, app core.App, req services.SaveQuoteRequest, drafts []services.ItemDraft) (services.SaveResult, error) {
	var result services.SaveResult
	err := app.RunInTransaction(func(txApp core.App) error {
		items, _, err := services.PriceItems(ctx, services.NewRecordCatalog(txApp), drafts)
		if err != nil {
			return err
		}
		req.Items = items
		result, err = services.SaveQuote(ctx, services.NewRecordStore(txApp), req)
		return err
	})
	return result, err
}

// pushRemote saves through the REST API, where the item ordering of
// SaveQuote is all that protects an existing quote.
func pushRemote(ctx context.Context, client *apiclient.Client, req services.SaveQuoteRequest, drafts []services.ItemDraft) (services.SaveResult, error) {
	items, _, err := services.PriceItems(ctx, client, drafts)
	if err != nil {
		return services.SaveResult{}, err
	}
	req.Items = items
	return services.SaveQuote(ctx, client, req)
}

func newExportCommand(app *pocketbase.PocketBase, cfg *config.Config) *cobra.Command {
	var (
		format string
		out    string
	)

	command := &cobra.Command{
		Use:          "export <quote id>",
		Short:        "Export a saved quote as PDF, Excel or printable HTML",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			collections.Setup(app)
			data, err := services.BuildExportData(app, args[0], cfg.Company, cfg.QuoteValidDays)
			if err != nil {
				return err
			}

			content, ext, err := renderExport(cmd.Context(), data, format)
			if err != nil {
				return err
			}

			if out == "" {
				out = "Quote_" + strings.NewReplacer("/", "-", " ", "-").Replace(data.QuoteNumber) + "." + ext
			}
			if out == "-" {
				_, err = cmd.OutOrStdout().Write(content)
				return err
			}
			if err := os.WriteFile(out, content, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", out)
			return nil
		},
	}

	command.Flags().StringVar(&format, "format", "pdf", "pdf, excel or html")
	command.Flags().StringVarP(&out, "out", "o", "", `output file, "-" for stdout (default: Quote_<number>.<ext>)`)

	return command
}

func renderExport(ctx context.Context, data services.ExportData, format string) ([]byte, string, error) {
	switch strings.ToLower(format) {
	case "pdf":
		b, err := services.GeneratePDF(data)
		return b, "pdf", err
	case "excel", "xlsx":
		b, err := services.GenerateExcel(data)
		return b, "xlsx", err
	case "html":
		var sb strings.Builder
		if err := templates.QuotePrint(data).Render(ctx, &sb); err != nil {
			return nil, "", err
		}
		return []byte(sb.String()), "html", nil
	default:
		return nil, "", fmt.Errorf("unknown export format %q", format)
	}
}
