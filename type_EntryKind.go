package cryptofolio

import "fmt"

// EntryKind tells a purchase apart from a staking gain.
type EntryKind int

const (
	Buy EntryKind = iota
	Staking
)

func (k EntryKind) String() string {
	switch k {
	case Buy:
		return "buy"
	case Staking:
		return "staking"
	default:
		return "unknown"
	}
}

// ParseEntryKind parses a string into an EntryKind. The empty string is a purchase.
func ParseEntryKind(s string) (EntryKind, error) {
	switch s {
	case "buy", "":
		return Buy, nil
	case "staking":
		return Staking, nil
	default:
		return 0, fmt.Errorf("unknown entry kind: %q", s)
	}
}

func (k EntryKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *EntryKind) UnmarshalText(b []byte) error {
	v, err := ParseEntryKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}
