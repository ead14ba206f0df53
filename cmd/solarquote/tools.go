package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/bher20/solarquote/internal/api"
	"github.com/bher20/solarquote/internal/currency"
	"github.com/bher20/solarquote/internal/load"
	"github.com/bher20/solarquote/internal/quote"
	"github.com/bher20/solarquote/internal/storage"
	"github.com/bher20/solarquote/pkg/appliances"
)

// readInput decodes JSON from path, or stdin when path is "-" or empty.
func readInput(cmd *cobra.Command, path string, v any) error {
	var r io.Reader = cmd.InOrStdin()
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(v); err != nil && err != io.EOF {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newLoadCmd(opts *options) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Compute a load summary from a JSON file of selections and extras",
		Long: `Reads {"selections": [...], "extras": [...]} and prints the load summary.

Example:
  solarquote load --file appliances.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var req api.LoadRequest
			if err := readInput(cmd, file, &req); err != nil {
				return err
			}
			cat, err := loadCatalog(cmd.Context(), opts.cfg, nil)
			if err != nil {
				return err
			}
			return printJSON(cmd, load.ComputeSummary(cat, req.Selections, req.Extras))
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "input JSON file (- for stdin)")
	return cmd
}

type quoteOutput struct {
	Quote    quote.Result      `json:"quote"`
	Currency string            `json:"currency"`
	Display  map[string]string `json:"display"`
}

func newQuoteCmd(opts *options) *cobra.Command {
	var (
		file string
		code string
	)
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Estimate a quote from a JSON quote input",
		RunE: func(cmd *cobra.Command, args []string) error {
			if code == "" {
				code = opts.cfg.Currency
			}
			iso, err := currency.Validate(code)
			if err != nil {
				return err
			}
			var in quote.Input
			if err := readInput(cmd, file, &in); err != nil {
				return err
			}
			res := quote.Estimate(in)
			display := map[string]string{
				"systemCost":         currency.MustFormat(res.Cost.SystemCost, iso),
				"installationCharge": currency.MustFormat(res.Cost.InstallationCharge, iso),
				"totalInvestment":    currency.MustFormat(res.Cost.TotalInvestment, iso),
				"monthlySavings":     currency.MustFormat(res.ROI.MonthlySavings, iso),
				"annualSavings":      currency.MustFormat(res.ROI.AnnualSavings, iso),
			}
			return printJSON(cmd, quoteOutput{Quote: res, Currency: iso, Display: display})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "input JSON file (- for stdin)")
	cmd.Flags().StringVar(&code, "currency", "", "display currency (default from config)")
	return cmd
}

func newCatalogCmd(opts *options) *cobra.Command {
	var withStorage bool
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Print the effective appliance catalog as YAML",
		Long: `Prints the catalog in the same YAML layout accepted by catalog.file, so the
output can be edited and fed back as an overlay.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var st storage.Storage
			if withStorage {
				var err error
				if st, err = openStorage(cmd.Context(), opts); err != nil {
					return err
				}
				defer st.Close()
			}
			cat, err := loadCatalog(cmd.Context(), opts.cfg, st)
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(map[string]any{"categories": cat.Categories()})
		},
	}
	cmd.Flags().BoolVar(&withStorage, "with-storage", false, "include entries persisted in the database")
	cmd.AddCommand(newCatalogSetCmd(opts), newCatalogDeleteCmd(opts))
	return cmd
}

func newCatalogSetCmd(opts *options) *cobra.Command {
	var entry storage.CatalogEntry
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Add or update a persisted catalog option",
		Long: `Persists an option that overlays the builtin catalog the next time the
server starts. New categories need --name.`,
		Example: "  solarquote catalog set --category fans --option \"Ceiling Fan\" --watts 80",
		RunE: func(cmd *cobra.Command, args []string) error {
			if entry.Category == "" || entry.Option == "" {
				return fmt.Errorf("--category and --option are required")
			}
			if entry.Option == appliances.Placeholder {
				return fmt.Errorf("%q is reserved for the empty selection", appliances.Placeholder)
			}
			if entry.Watts < 0 {
				return fmt.Errorf("--watts must not be negative")
			}
			if builtin, ok := appliances.Get(entry.Category); ok {
				if entry.CategoryName == "" {
					entry.CategoryName = builtin.Name
				}
			} else if entry.CategoryName == "" {
				return fmt.Errorf("category %q is not builtin (%s); pass --name to create it",
					entry.Category, strings.Join(appliances.List(), ", "))
			}
			return withStorage(cmd, opts, func(st storage.Storage) error {
				if err := st.UpsertCatalogEntry(cmd.Context(), entry); err != nil {
					return fmt.Errorf("save catalog entry: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "set %s/%s = %dW\n", entry.Category, entry.Option, entry.Watts)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&entry.Category, "category", "", "category key (e.g. fans)")
	cmd.Flags().StringVar(&entry.CategoryName, "name", "", "category display name (defaults to the builtin name)")
	cmd.Flags().StringVar(&entry.Option, "option", "", "option label")
	cmd.Flags().IntVar(&entry.Watts, "watts", 0, "unit wattage")
	return cmd
}

func newCatalogDeleteCmd(opts *options) *cobra.Command {
	var category, option string
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Remove a persisted catalog option",
		RunE: func(cmd *cobra.Command, args []string) error {
			if category == "" || option == "" {
				return fmt.Errorf("--category and --option are required")
			}
			return withStorage(cmd, opts, func(st storage.Storage) error {
				if err := st.DeleteCatalogEntry(cmd.Context(), category, option); err != nil {
					return fmt.Errorf("delete catalog entry: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s/%s\n", category, option)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "category key")
	cmd.Flags().StringVar(&option, "option", "", "option label")
	return cmd
}
