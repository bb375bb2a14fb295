// Package posting coordinates business documents across the financial
// ledger and the stock engine: one document event becomes one atomic unit
// touching both, or nothing at all.
package posting

import (
	"bizledger/internal/core/apperror"
)

// AccountConfig names the chart-of-accounts codes the engine posts to.
// Passed explicitly at construction; the engine reads no ambient settings.
type AccountConfig struct {
	Receivable   string `json:"receivable"`
	Payable      string `json:"payable"`
	Cash         string `json:"cash"`
	SalesRevenue string `json:"salesRevenue"`
	Inventory    string `json:"inventory"`
	COGS         string `json:"cogs"`
}

// DefaultAccountConfig returns the conventional seed chart codes.
func DefaultAccountConfig() AccountConfig {
	return AccountConfig{
		Receivable:   "1100",
		Payable:      "2100",
		Cash:         "1000",
		SalesRevenue: "4000",
		Inventory:    "1200",
		COGS:         "5000",
	}
}

// Validate checks that every code is set.
func (c AccountConfig) Validate() error {
	codes := map[string]string{
		"receivable":    c.Receivable,
		"payable":       c.Payable,
		"cash":          c.Cash,
		"sales_revenue": c.SalesRevenue,
		"inventory":     c.Inventory,
		"cogs":          c.COGS,
	}
	for name, code := range codes {
		if code == "" {
			return apperror.NewValidation("posting account code is required").
				WithDetail("account", name)
		}
	}
	return nil
}
