package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"quotedesk/config"
	"quotedesk/services"
)

func newCalcCommand(cfg *config.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Run the pricing calculators without a server",
	}

	cmd.AddCommand(
		newCalcPriceCmd(cfg),
		newCalcMSPCmd(cfg),
		newCalcLaborCmd(cfg),
	)

	return cmd
}

func newCalcPriceCmd(cfg *config.Settings) *cobra.Command {
	var cost, margin string

	cmd := &cobra.Command{
		Use:   "price",
		Short: "Apply a margin percent to a cost",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := parseAmount("cost", cost)
			if err != nil {
				return err
			}
			m, err := parseAmount("margin", margin)
			if err != nil {
				return err
			}
			price := services.CalculatePrice(c, m)
			fmt.Fprintf(cmd.OutOrStdout(), "%s at %s margin = %s\n",
				services.FormatMoney(c, cfg.CurrencySymbol), services.FormatPercent(m),
				services.FormatMoney(price, cfg.CurrencySymbol))
			return nil
		},
	}

	cmd.Flags().StringVar(&cost, "cost", "0", "Cost amount")
	cmd.Flags().StringVar(&margin, "margin", "0", "Margin percent")
	return cmd
}

func newCalcMSPCmd(cfg *config.Settings) *cobra.Command {
	var basePrice, discount, setupFee string
	var quantity, months int
	var applySetupFee bool

	cmd := &cobra.Command{
		Use:   "msp",
		Short: "Total an MSP subscription quote",
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := parseAmount("basePrice", basePrice)
			if err != nil {
				return err
			}
			disc, err := parseAmount("discount", discount)
			if err != nil {
				return err
			}
			fee, err := parseAmount("setupFee", setupFee)
			if err != nil {
				return err
			}
			if quantity < 0 || months < 0 {
				return fmt.Errorf("quantity and months must be zero or higher")
			}

			level := services.ServiceLevel{Name: "Custom", BasePrice: base}
			t := services.CalculateQuote(level, quantity, months, disc, applySetupFee, fee)
			return writeMSPTotals(cmd.OutOrStdout(), t, months, disc, cfg.CurrencySymbol)
		},
	}

	cmd.Flags().StringVar(&basePrice, "basePrice", "0", "Monthly price per unit")
	cmd.Flags().IntVar(&quantity, "quantity", 1, "Number of units")
	cmd.Flags().IntVar(&months, "months", 12, "Contract length in months")
	cmd.Flags().StringVar(&discount, "discount", "0", "Annual discount percent (12 months or more)")
	cmd.Flags().StringVar(&setupFee, "setupFee", "0", "One-time setup fee")
	cmd.Flags().BoolVar(&applySetupFee, "applySetupFee", false, "Charge the setup fee")
	return cmd
}

func newCalcLaborCmd(cfg *config.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "labor <budget.yaml>",
		Short: "Aggregate a labor budget described in a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open budget file: %w", err)
			}
			defer f.Close()

			draft, unresolved, err := readBudgetFile(f)
			if err != nil {
				return err
			}
			for _, id := range unresolved {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: catalog item %q not found, skipped\n", id)
			}
			return writeLaborBudget(cmd.OutOrStdout(), draft, cfg.CurrencySymbol)
		},
	}
}

func parseAmount(name, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	return d, nil
}

// budgetFile is the YAML layout read by `calc labor`.
type budgetFile struct {
	Catalog []struct {
		ID           string  `yaml:"id"`
		Name         string  `yaml:"name"`
		HoursPerUnit float64 `yaml:"hoursPerUnit"`
		RatePerHour  float64 `yaml:"ratePerHour"`
	} `yaml:"catalog"`
	Solutions []struct {
		Name               string  `yaml:"name"`
		OverheadPercent    float64 `yaml:"overheadPercent"`
		ContingencyPercent float64 `yaml:"contingencyPercent"`
		Items              []struct {
			CatalogItemID string  `yaml:"catalogItemId"`
			Quantity      float64 `yaml:"quantity"`
		} `yaml:"items"`
	} `yaml:"solutions"`
	ProjectManagement struct {
		Percent float64 `yaml:"percent"`
		Hours   float64 `yaml:"hours"`
		Rate    float64 `yaml:"rate"`
	} `yaml:"projectManagement"`
	Adoption struct {
		Hours float64 `yaml:"hours"`
		Rate  float64 `yaml:"rate"`
	} `yaml:"adoption"`
}

// readBudgetFile decodes a budget file into a draft, resolving selections
// against the file's own catalog.
func readBudgetFile(r io.Reader) (services.LaborDraft, []string, error) {
	var bf budgetFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&bf); err != nil {
		return services.LaborDraft{}, nil, fmt.Errorf("decode budget file: %w", err)
	}

	catalog := make(map[string]services.LaborCatalogItem, len(bf.Catalog))
	for _, c := range bf.Catalog {
		if c.HoursPerUnit < 0 || c.RatePerHour < 0 {
			return services.LaborDraft{}, nil, fmt.Errorf("catalog item %q: hours and rate must be zero or higher", c.ID)
		}
		catalog[c.ID] = services.LaborCatalogItem{
			ID:           c.ID,
			Name:         c.Name,
			HoursPerUnit: decimal.NewFromFloat(c.HoursPerUnit),
			RatePerHour:  decimal.NewFromFloat(c.RatePerHour),
		}
	}

	draft := services.LaborDraft{
		ProjectManagementPercent: decimal.NewFromFloat(bf.ProjectManagement.Percent),
		ProjectManagementHours:   decimal.NewFromFloat(bf.ProjectManagement.Hours),
		ProjectManagementRate:    decimal.NewFromFloat(bf.ProjectManagement.Rate),
		AdoptionHours:            decimal.NewFromFloat(bf.Adoption.Hours),
		AdoptionRate:             decimal.NewFromFloat(bf.Adoption.Rate),
	}
	var unresolved []string
	for _, s := range bf.Solutions {
		var selections []services.LineSelection
		for _, it := range s.Items {
			selections = append(selections, services.LineSelection{
				CatalogItemID: it.CatalogItemID,
				Quantity:      decimal.NewFromFloat(it.Quantity),
			})
		}
		entries, missing := services.PriceSelections(catalog, selections)
		unresolved = append(unresolved, missing...)
		draft.Solutions = append(draft.Solutions, services.Solution{
			Name:               s.Name,
			Items:              entries,
			OverheadPercent:    decimal.NewFromFloat(s.OverheadPercent),
			ContingencyPercent: decimal.NewFromFloat(s.ContingencyPercent),
		})
	}
	return draft, unresolved, nil
}

func writeMSPTotals(w io.Writer, t services.MSPQuoteTotals, months int, discount decimal.Decimal, symbol string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "Monthly price\t%s\t\n", services.FormatMoney(t.MonthlyPrice, symbol))
	fmt.Fprintf(tw, "Subtotal (%d months)\t%s\t\n", months, services.FormatMoney(t.RawTotal, symbol))
	if !t.DiscountAmount.IsZero() {
		fmt.Fprintf(tw, "Annual discount (%s)\t-%s\t\n", services.FormatPercent(discount), services.FormatMoney(t.DiscountAmount, symbol))
	}
	if !t.SetupFee.IsZero() {
		fmt.Fprintf(tw, "Setup fee\t%s\t\n", services.FormatMoney(t.SetupFee, symbol))
	}
	fmt.Fprintf(tw, "Total\t%s\t\n", services.FormatMoney(t.TotalPrice, symbol))
	return tw.Flush()
}

func writeLaborBudget(w io.Writer, draft services.LaborDraft, symbol string) error {
	b := services.CalcLaborBudget(draft)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Solution\tHours\tSubtotal\tOverhead\tContingency\tTotal\t")
	for _, s := range b.Solutions {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t\n", s.Name, s.Hours.Round(2).String(),
			services.FormatMoney(s.Subtotal, symbol), services.FormatMoney(s.Overhead, symbol),
			services.FormatMoney(s.Contingency, symbol), services.FormatMoney(s.Total, symbol))
	}
	fmt.Fprintln(tw, "\t\t\t\t\t\t")
	fmt.Fprintf(tw, "Labor subtotal\t\t\t\t\t%s\t\n", services.FormatMoney(b.LaborSubtotal, symbol))
	fmt.Fprintf(tw, "Project management\t\t\t\t\t%s\t\n", services.FormatMoney(b.ProjectManagementCost, symbol))
	fmt.Fprintf(tw, "Adoption\t\t\t\t\t%s\t\n", services.FormatMoney(b.AdoptionCost, symbol))
	fmt.Fprintf(tw, "Grand total\t%s\t\t\t\t%s\t\n", b.TotalHours.Round(2).String(), services.FormatMoney(b.GrandTotal, symbol))
	return tw.Flush()
}
