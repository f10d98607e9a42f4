package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/harveston/harvestengine/internal/audit"
	"github.com/harveston/harvestengine/internal/engine"
	"github.com/harveston/harvestengine/internal/lotmodel"
)

var (
	portfolioPath string
	targetST      float64
	targetLT      float64
	realizedST    float64
	realizedLT    float64
	cashNeeded    float64
	currentCash   float64
	useCashMode   bool
	recordAudit   bool
)

var harvestCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Compute sell recommendations against gain targets or a cash need",
	RunE:  runHarvest,
}

func init() {
	harvestCmd.Flags().StringVar(&portfolioPath, "portfolio", "", "path to a JSON file containing the lot array")
	harvestCmd.Flags().Float64Var(&targetST, "target-st", 0, "short-term gain target")
	harvestCmd.Flags().Float64Var(&targetLT, "target-lt", 0, "long-term gain target")
	harvestCmd.Flags().Float64Var(&realizedST, "realized-st", 0, "year-to-date realized short-term gain")
	harvestCmd.Flags().Float64Var(&realizedLT, "realized-lt", 0, "year-to-date realized long-term gain")
	harvestCmd.Flags().BoolVar(&useCashMode, "cash-mode", false, "switch to the cash-raising selector")
	harvestCmd.Flags().Float64Var(&cashNeeded, "cash-needed", 0, "required cash amount (cash mode)")
	harvestCmd.Flags().Float64Var(&currentCash, "current-cash", 0, "cash already on hand (cash mode)")
	harvestCmd.Flags().BoolVar(&recordAudit, "record", false, "persist this calculation to the audit store")
	harvestCmd.MarkFlagRequired("portfolio")
}

// wireLot is the JSON shape accepted on the CLI; string fields for money
// values avoid float round-tripping through decimal.Decimal.
type wireLot struct {
	Symbol         string `json:"symbol"`
	Quantity       string `json:"quantity"`
	Price          string `json:"price"`
	CostBasis      string `json:"cost_basis"`
	UnrealizedGain string `json:"unrealized_gain"`
	Term           string `json:"term"`
	AcquiredDate   string `json:"acquired_date"`
	AccountType    string `json:"account_type"`
	WashSaleFlag   bool   `json:"wash_sale_flag"`
}

func runHarvest(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(portfolioPath)
	if err != nil {
		return fmt.Errorf("failed to read portfolio file: %w", err)
	}

	var wireLots []wireLot
	if err := json.Unmarshal(data, &wireLots); err != nil {
		return fmt.Errorf("failed to parse portfolio JSON: %w", err)
	}

	lots := make([]lotmodel.Lot, 0, len(wireLots))
	for _, w := range wireLots {
		lot, err := toLot(w)
		if err != nil {
			return err
		}
		lots = append(lots, lot)
	}

	opts := engine.DefaultOptions(time.Now())
	if cfg != nil {
		opts.TaxConfig.ShortTermRate = decimal.NewFromFloat(cfg.Tax.ShortTermRate)
		opts.TaxConfig.LongTermRate = decimal.NewFromFloat(cfg.Tax.LongTermRate)
		opts.TaxConfig.StateRate = decimal.NewFromFloat(cfg.Tax.StateRate)
		opts.WashSaleConfig.BeforeDays = cfg.WashSale.BeforeDays
		opts.WashSaleConfig.AfterDays = cfg.WashSale.AfterDays
		opts.WashSaleConfig.StrictMode = cfg.WashSale.StrictMode
		opts.MaxLots = cfg.Selector.MaxLots
	}

	opts.UseCashRaising = useCashMode
	opts.CashNeeded = decimal.NewFromFloat(cashNeeded)
	opts.CurrentCash = decimal.NewFromFloat(currentCash)

	result := engine.Run(lots, engine.Targets{
		ShortTerm: decimal.NewFromFloat(targetST),
		LongTerm:  decimal.NewFromFloat(targetLT),
	}, engine.Realized{
		ShortTerm: decimal.NewFromFloat(realizedST),
		LongTerm:  decimal.NewFromFloat(realizedLT),
	}, opts)

	printResult(result)

	if recordAudit && cfg != nil {
		db, err := audit.Open(cfg.Audit.Driver, cfg.Audit.DSN)
		if err != nil {
			return fmt.Errorf("failed to open audit store: %w", err)
		}
		if err := audit.NewRepository(db).Save(result); err != nil {
			return fmt.Errorf("failed to record calculation: %w", err)
		}
	}

	if !result.Success {
		return fmt.Errorf("calculation failed: %s", result.Error.Message)
	}
	return nil
}

func toLot(w wireLot) (lotmodel.Lot, error) {
	quantity, err := decimal.NewFromString(w.Quantity)
	if err != nil {
		return lotmodel.Lot{}, fmt.Errorf("lot %s: invalid quantity: %w", w.Symbol, err)
	}
	price, err := decimal.NewFromString(w.Price)
	if err != nil {
		return lotmodel.Lot{}, fmt.Errorf("lot %s: invalid price: %w", w.Symbol, err)
	}
	costBasis, err := decimal.NewFromString(w.CostBasis)
	if err != nil {
		return lotmodel.Lot{}, fmt.Errorf("lot %s: invalid cost_basis: %w", w.Symbol, err)
	}
	gain, err := decimal.NewFromString(w.UnrealizedGain)
	if err != nil {
		return lotmodel.Lot{}, fmt.Errorf("lot %s: invalid unrealized_gain: %w", w.Symbol, err)
	}
	acquired, err := time.Parse("2006-01-02", w.AcquiredDate)
	if err != nil {
		return lotmodel.Lot{}, fmt.Errorf("lot %s: invalid acquired_date: %w", w.Symbol, err)
	}

	accountType := lotmodel.AccountTaxable
	if w.AccountType != "" {
		accountType = lotmodel.AccountType(w.AccountType)
	}

	term, _ := lotmodel.NormalizeTerm(w.Term)

	return lotmodel.Lot{
		Symbol:         w.Symbol,
		Quantity:       quantity,
		Price:          price,
		CostBasis:      costBasis,
		UnrealizedGain: gain,
		Term:           term,
		AcquiredDate:   acquired,
		AccountType:    accountType,
		WashSaleFlag:   w.WashSaleFlag,
	}, nil
}

func printResult(result lotmodel.ResultRecord) {
	headingStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
	warnStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("11"))

	if !result.Success {
		fmt.Println(lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Render("calculation failed: " + result.Error.Message))
		return
	}

	fmt.Println(headingStyle.Render(fmt.Sprintf("Recommendations (%d)", len(result.Recommendations))))
	for _, rec := range result.Recommendations {
		fmt.Printf("  %-8s %-5s qty=%-12s gain=%-12s proceeds=%-12s net_benefit=%s\n",
			rec.Symbol, rec.Term, rec.QuantityToSell.StringFixed(2), rec.ActualGain.StringFixed(2),
			rec.Proceeds.StringFixed(2), rec.NetBenefit.StringFixed(2))
	}

	for _, w := range result.Warnings {
		fmt.Println(warnStyle.Render("  warning: " + w))
	}
}
