package cryptofolio

import "fmt"

// Thresholds configures the alerts raised on risk coins.
type Thresholds struct {
	TakeProfit Percent `yaml:"take_profit" env:"TAKE_PROFIT"` // alert when the net change is at or above
	StopLoss   Percent `yaml:"stop_loss" env:"STOP_LOSS"`     // alert when the net change is at or below
}

// DefaultThresholds are +20% and -15%.
var DefaultThresholds = Thresholds{TakeProfit: 20, StopLoss: -15}

type AlertKind int

const (
	TakeProfit AlertKind = iota
	StopLoss
)

func (k AlertKind) String() string {
	switch k {
	case TakeProfit:
		return "take-profit"
	case StopLoss:
		return "stop-loss"
	default:
		return "unknown"
	}
}

// Alert is raised when a risk coin crosses a threshold.
type Alert struct {
	Kind      AlertKind
	Symbol    string
	Wallet    string
	Change    Percent
	Threshold Percent
}

func (a Alert) String() string {
	where := a.Symbol
	if a.Wallet != "" {
		where += " (" + a.Wallet + ")"
	}
	switch a.Kind {
	case TakeProfit:
		return fmt.Sprintf("%s is up %s, consider taking profit (threshold %s)", where, a.Change.SignedString(), a.Threshold.SignedString())
	default:
		return fmt.Sprintf("%s is down %s, consider a stop loss (threshold %s)", where, a.Change.SignedString(), a.Threshold.SignedString())
	}
}

// Alerts returns the alerts for the risk rows of the analysis.
func (a *Analysis) Alerts(th Thresholds) []Alert {
	var alerts []Alert
	for _, r := range a.Rows {
		if r.Type != Risk || r.MissingPrice {
			continue
		}
		switch {
		case r.Return >= th.TakeProfit:
			alerts = append(alerts, Alert{Kind: TakeProfit, Symbol: r.Symbol, Wallet: r.Wallet, Change: r.Return, Threshold: th.TakeProfit})
		case r.Return <= th.StopLoss:
			alerts = append(alerts, Alert{Kind: StopLoss, Symbol: r.Symbol, Wallet: r.Wallet, Change: r.Return, Threshold: th.StopLoss})
		}
	}
	return alerts
}
