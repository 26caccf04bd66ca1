package cryptofolio

// Performance holds what was put in a position and what it is worth now.
type Performance struct {
	Invested, Net Money
	Return        Percent // net change, rounded to 2 decimals
}

// NewPerformance computes the net change of a position.
// The return is 0 when nothing was invested.
func NewPerformance(invested, net Money) Performance {
	p := Performance{Invested: invested, Net: net}
	if invested.IsPositive() {
		p.Return = Percent(100 * net.Sub(invested).Ratio(invested)).Round(2)
	}
	return p
}

func (p Performance) Change() Money {
	return p.Net.Sub(p.Invested)
}
