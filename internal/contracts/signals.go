package contracts

// FactorName identifies one of the scored factors
type FactorName string

// ⭐ SSOT: Scorer가 요구하는 9개 팩터
const (
	FactorER1   FactorName = "er1"   // 1-month excess return
	FactorER2   FactorName = "er2"   // 2-month excess return
	FactorER6   FactorName = "er6"   // 6-month excess return
	FactorER12  FactorName = "er12"  // 12-month excess return
	FactorTV2MC FactorName = "tv2mc" // trading volume / market cap
	FactorE2P   FactorName = "e2p"   // earnings / price
	FactorROE   FactorName = "roe"   // return on equity
	FactorB2P   FactorName = "b2p"   // book / price
	FactorCF2P  FactorName = "cf2p"  // cash flow / price
)

// ExcessReturnFactor returns the factor name for a k-month lookback
func ExcessReturnFactor(k int) (FactorName, bool) {
	switch k {
	case 1:
		return FactorER1, true
	case 2:
		return FactorER2, true
	case 6:
		return FactorER6, true
	case 12:
		return FactorER12, true
	}
	return "", false
}

// Factor is a ValueMap tagged with the formula that produced it
type Factor struct {
	Name    FactorName
	Formula string
	Values  ValueMap
}

// FactorSet is the Scorer input keyed by factor name
type FactorSet map[FactorName]ValueMap

// Add registers a factor's values
func (s FactorSet) Add(f Factor) {
	s[f.Name] = f.Values
}
