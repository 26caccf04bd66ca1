package renderer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/etnz/cryptofolio"
)

// TypeMarker returns the colored dot of a coin type.
func TypeMarker(t cryptofolio.CoinType) string {
	switch t {
	case cryptofolio.Risk:
		return "🔴"
	case cryptofolio.Stable:
		return "🟡"
	default:
		return "🔵"
	}
}

// symbol prefixes the symbol with its type marker.
func symbol(s string, t cryptofolio.CoinType) string {
	return TypeMarker(t) + " " + s
}

// change formats a net change with its trend marker.
func change(p cryptofolio.Percent) string {
	s := p.SignedString()
	switch {
	case s == "-":
		return s
	case p > 0:
		return "🟢 " + s
	default:
		return "🔻 " + s
	}
}

// otherCurrency tells which entries a report left out, empty when none.
func otherCurrency(ids []int64, currency string) string {
	if len(ids) == 0 {
		return ""
	}
	refs := make([]string, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, "#"+strconv.FormatInt(id, 10))
	}
	return fmt.Sprintf("Entries %s are not in %s: left out.", strings.Join(refs, ", "), currency)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func code(s string) string { return "`" + s + "`" }
