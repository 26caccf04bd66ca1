package cryptofolio

import (
	"fmt"
	"strings"
)

// CoinType is the risk label the user gives to a coin.
type CoinType int

const (
	// Classic is the default label: long term holdings.
	Classic CoinType = iota
	// Risk coins are watched by the take-profit and stop-loss alerts.
	Risk
	// Stable is for stable coins.
	Stable
)

// CoinTypes lists the labels in display order.
var CoinTypes = []CoinType{Classic, Risk, Stable}

func (t CoinType) String() string {
	switch t {
	case Classic:
		return "classic"
	case Risk:
		return "risk"
	case Stable:
		return "stable"
	default:
		return "unknown"
	}
}

// ParseCoinType parses a string into a CoinType, case insensitive.
func ParseCoinType(s string) (CoinType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "classic":
		return Classic, nil
	case "risk":
		return Risk, nil
	case "stable":
		return Stable, nil
	default:
		return 0, fmt.Errorf("unknown coin type: %q", s)
	}
}

// CoinTypeOr parses s and returns fallback when it is not a known label.
func CoinTypeOr(s string, fallback CoinType) CoinType {
	t, err := ParseCoinType(s)
	if err != nil {
		return fallback
	}
	return t
}

func (t CoinType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *CoinType) UnmarshalText(b []byte) error {
	v, err := ParseCoinType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}
