package s2_signals

import (
	"fmt"
	"math"

	"github.com/wonny/haugen/internal/contracts"
)

// Operand is one input of a ratio join
type Operand struct {
	Name     string
	Values   contracts.ValueMap
	Optional bool // a ticker missing from an optional operand reads as 0
}

// Required wraps a map that every output ticker must appear in
func Required(name string, m contracts.ValueMap) Operand {
	return Operand{Name: name, Values: m}
}

// Optional wraps a map whose missing tickers default to zero
func Optional(name string, m contracts.ValueMap) Operand {
	return Operand{Name: name, Values: m, Optional: true}
}

// Join applies fn to every ticker present in all required operands.
// fn receives one value per operand, in operand order. A non-finite result
// (for example zero shares) is a contract violation.
// ⭐ SSOT: 비율 팩터의 ValueMap 조인은 여기서만
func Join(fn func(v []float64) float64, operands ...Operand) (contracts.ValueMap, error) {
	var required []contracts.ValueMap
	for _, op := range operands {
		if !op.Optional {
			required = append(required, op.Values)
		}
	}

	tickers := contracts.Intersect(required...)
	out := make(contracts.ValueMap, len(tickers))
	values := make([]float64, len(operands))
	for _, t := range tickers {
		for i, op := range operands {
			values[i] = op.Values[t] // nil map and missing key both read 0
		}

		v := fn(values)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, &contracts.TickerError{
				Ticker: t,
				Err:    fmt.Errorf("%w: %s", contracts.ErrNonFinite, describe(operands, values)),
			}
		}
		out[t] = v
	}

	return out, nil
}

func describe(operands []Operand, values []float64) string {
	s := ""
	for i, op := range operands {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%s=%g", op.Name, values[i])
	}
	return s
}

// Factor formulas
const (
	FormulaB2P   = "(total_assets - intangible_assets - total_liabilities) / (outstanding_shares * price)"
	FormulaCF2P  = "(operating_cashflow - preferred_dividend) / (outstanding_shares * price)"
	FormulaE2P   = "net_income_common / (outstanding_shares * price)"
	FormulaTV2MC = "trading_volume / (price * outstanding_shares)"
	FormulaROE   = "net_income / total_equity"
	FormulaMC    = "price * outstanding_shares"
)

// BookToPrice computes (ta - ia - tl) / (shares × price); ia is optional
func BookToPrice(totalAssets, intangibleAssets, totalLiabilities, shares, price contracts.ValueMap) (contracts.Factor, error) {
	values, err := Join(func(v []float64) float64 {
		return (v[0] - v[1] - v[2]) / (v[3] * v[4])
	},
		Required("total_assets", totalAssets),
		Optional("intangible_assets", intangibleAssets),
		Required("total_liabilities", totalLiabilities),
		Required("outstanding_shares", shares),
		Required("price", price),
	)
	if err != nil {
		return contracts.Factor{}, fmt.Errorf("b2p: %w", err)
	}
	return contracts.Factor{Name: contracts.FactorB2P, Formula: FormulaB2P, Values: values}, nil
}

// CashFlowToPrice computes (ocf - pd) / (shares × price); pd is optional
func CashFlowToPrice(operatingCashflow, preferredDividend, shares, price contracts.ValueMap) (contracts.Factor, error) {
	values, err := Join(func(v []float64) float64 {
		return (v[0] - v[1]) / (v[2] * v[3])
	},
		Required("operating_cashflow", operatingCashflow),
		Optional("preferred_dividend", preferredDividend),
		Required("outstanding_shares", shares),
		Required("price", price),
	)
	if err != nil {
		return contracts.Factor{}, fmt.Errorf("cf2p: %w", err)
	}
	return contracts.Factor{Name: contracts.FactorCF2P, Formula: FormulaCF2P, Values: values}, nil
}

// EarningsToPrice computes nic / (shares × price)
func EarningsToPrice(netIncomeCommon, shares, price contracts.ValueMap) (contracts.Factor, error) {
	values, err := Join(func(v []float64) float64 {
		return v[0] / (v[1] * v[2])
	},
		Required("net_income_common", netIncomeCommon),
		Required("outstanding_shares", shares),
		Required("price", price),
	)
	if err != nil {
		return contracts.Factor{}, fmt.Errorf("e2p: %w", err)
	}
	return contracts.Factor{Name: contracts.FactorE2P, Formula: FormulaE2P, Values: values}, nil
}

// VolumeToMarketCap computes tv / (price × shares)
func VolumeToMarketCap(tradingVolume, price, shares contracts.ValueMap) (contracts.Factor, error) {
	values, err := Join(func(v []float64) float64 {
		return v[0] / (v[1] * v[2])
	},
		Required("trading_volume", tradingVolume),
		Required("price", price),
		Required("outstanding_shares", shares),
	)
	if err != nil {
		return contracts.Factor{}, fmt.Errorf("tv2mc: %w", err)
	}
	return contracts.Factor{Name: contracts.FactorTV2MC, Formula: FormulaTV2MC, Values: values}, nil
}

// MarketCap computes price × shares
func MarketCap(price, shares contracts.ValueMap) (contracts.ValueMap, error) {
	values, err := Join(func(v []float64) float64 {
		return v[0] * v[1]
	},
		Required("price", price),
		Required("outstanding_shares", shares),
	)
	if err != nil {
		return nil, fmt.Errorf("market cap: %w", err)
	}
	return values, nil
}
