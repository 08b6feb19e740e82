package output

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/rplan/retirement-planner/internal/domain"
)

// LedgerCSVExporter writes the audit ledger, one row per (year, account),
// with the year-level income and tax columns repeated on each row. Via the
// formatter interface it exports the summary's median-path ledger.
type LedgerCSVExporter struct{}

func (l LedgerCSVExporter) Name() string { return "ledger-csv" }

func (l LedgerCSVExporter) Format(summary *domain.SimulationSummary) ([]byte, error) {
	return FormatLedger(summary.MedianLedger)
}

// FormatLedger renders any path's ledger as CSV.
func FormatLedger(ledger []domain.LedgerYear) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{
		"Year", "Age", "Account", "Type",
		"StartingBalance", "Contribution", "ReturnRate", "Growth",
		"Withdrawal", "RMD", "Conversion", "TaxPaid", "EndingBalance",
		"SocialSecurity", "SalaryIncome", "Spending",
		"OrdinaryIncome", "CapitalGains", "FederalTax", "StateTax",
		"NetWorth", "Failed",
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, ly := range ledger {
		for _, acct := range ly.Accounts {
			row := []string{
				strconv.Itoa(ly.Year),
				strconv.Itoa(ly.PrimaryAge),
				acct.Name,
				string(acct.Type),
				acct.StartingBalance.StringFixed(2),
				acct.Contribution.StringFixed(2),
				acct.ReturnRate.StringFixed(4),
				acct.Growth.StringFixed(2),
				acct.Withdrawal.StringFixed(2),
				acct.RMD.StringFixed(2),
				acct.Conversion.StringFixed(2),
				acct.TaxPaid.StringFixed(2),
				acct.EndingBalance.StringFixed(2),
				ly.SocialSecurity.StringFixed(2),
				ly.SalaryIncome.StringFixed(2),
				ly.Spending.StringFixed(2),
				ly.OrdinaryIncome.StringFixed(2),
				ly.CapitalGains.StringFixed(2),
				ly.FederalTax.StringFixed(2),
				ly.StateTax.StringFixed(2),
				ly.NetWorth.StringFixed(2),
				strconv.FormatBool(ly.Failed),
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
