package s2_signals

import (
	"fmt"

	"github.com/wonny/haugen/internal/contracts"
)

// ReturnOnEquity computes net income / total equity
func ReturnOnEquity(netIncome, totalEquity contracts.ValueMap) (contracts.Factor, error) {
	values, err := Join(func(v []float64) float64 {
		return v[0] / v[1]
	},
		Required("net_income", netIncome),
		Required("total_equity", totalEquity),
	)
	if err != nil {
		return contracts.Factor{}, fmt.Errorf("roe: %w", err)
	}
	return contracts.Factor{Name: contracts.FactorROE, Formula: FormulaROE, Values: values}, nil
}
