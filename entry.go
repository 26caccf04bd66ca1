package cryptofolio

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidEntry is wrapped by every validation error on an Entry.
var ErrInvalidEntry = errors.New("invalid entry")

// Entry is a single portfolio record: a purchase or a staking gain.
type Entry struct {
	ID             int64
	Coin           string // price API identifier, e.g. "bitcoin"
	Symbol         string // display ticker, e.g. "BTC"
	Amount         Quantity
	BuyPrice       Money // unit price, zero for staking gains
	FeeBuyPercent  Percent
	FeeSellPercent Percent
	Type           CoinType
	Wallet         string
	Kind           EntryKind
	CreatedAt      time.Time
}

// NewPurchase returns a validated purchase entry.
func NewPurchase(coin, symbol string, amount Quantity, price Money, feeBuy, feeSell Percent, typ CoinType, wallet string) (Entry, error) {
	e := Entry{
		Coin:           coin,
		Symbol:         symbol,
		Amount:         amount,
		BuyPrice:       price,
		FeeBuyPercent:  feeBuy,
		FeeSellPercent: feeSell,
		Type:           typ,
		Wallet:         wallet,
		Kind:           Buy,
	}
	e.Normalize()
	return e, e.Validate()
}

// NewStakingGain returns a validated staking entry: a free amount with no cost and no fees.
func NewStakingGain(coin, symbol string, amount Quantity, typ CoinType, wallet, currency string) (Entry, error) {
	e := Entry{
		Coin:     coin,
		Symbol:   symbol,
		Amount:   amount,
		BuyPrice: M(0, currency),
		Type:     typ,
		Wallet:   wallet,
		Kind:     Staking,
	}
	e.Normalize()
	return e, e.Validate()
}

// Normalize trims the labels, lower cases the coin id and upper cases the symbol and the currency.
func (e *Entry) Normalize() {
	e.Coin = strings.ToLower(strings.TrimSpace(e.Coin))
	e.Symbol = strings.ToUpper(strings.TrimSpace(e.Symbol))
	e.Wallet = strings.TrimSpace(e.Wallet)
	if c := strings.ToUpper(e.BuyPrice.Currency()); c != e.BuyPrice.Currency() {
		e.BuyPrice = M(e.BuyPrice.Decimal(), c)
	}
}

// CheckCurrency fails when the entry is not expressed in currency.
func (e Entry) CheckCurrency(currency string) error {
	if !strings.EqualFold(e.BuyPrice.Currency(), currency) {
		return fmt.Errorf("%w: currency %s, the portfolio is in %s", ErrInvalidEntry, e.BuyPrice.Currency(), currency)
	}
	return nil
}

// Validate checks that the entry can be stored.
func (e Entry) Validate() error {
	if e.Coin == "" {
		return fmt.Errorf("%w: coin id is required", ErrInvalidEntry)
	}
	if strings.ContainsAny(e.Coin, " ,/?&") {
		return fmt.Errorf("%w: coin id %q contains invalid characters", ErrInvalidEntry, e.Coin)
	}
	if e.Symbol == "" {
		return fmt.Errorf("%w: symbol is required", ErrInvalidEntry)
	}
	if !e.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive, got %s", ErrInvalidEntry, e.Amount)
	}
	for _, fee := range []Percent{e.FeeBuyPercent, e.FeeSellPercent} {
		if fee < 0 || fee > 100 {
			return fmt.Errorf("%w: fee must be between 0 and 100, got %s", ErrInvalidEntry, fee)
		}
	}
	if !slices.Contains(CoinTypes, e.Type) {
		return fmt.Errorf("%w: unknown type %d", ErrInvalidEntry, e.Type)
	}
	switch e.Kind {
	case Buy:
		if !e.BuyPrice.IsPositive() {
			return fmt.Errorf("%w: buy price must be positive, got %s", ErrInvalidEntry, e.BuyPrice)
		}
	case Staking:
		if !e.BuyPrice.IsZero() || e.FeeBuyPercent != 0 || e.FeeSellPercent != 0 {
			return fmt.Errorf("%w: staking gains have no price and no fees", ErrInvalidEntry)
		}
	default:
		return fmt.Errorf("%w: unknown kind %d", ErrInvalidEntry, e.Kind)
	}
	return nil
}

// Cost is the unit price times the amount, without fees.
func (e Entry) Cost() Money {
	if e.Kind == Staking {
		return M(0, e.BuyPrice.Currency())
	}
	return e.BuyPrice.Mul(e.Amount)
}

// InvestedValue is what the entry cost including the buying fees.
func (e Entry) InvestedValue() Money {
	if e.Kind == Staking {
		return M(0, e.BuyPrice.Currency())
	}
	return e.BuyPrice.Mul(e.Amount.Add(e.Amount.MulPercent(e.FeeBuyPercent)))
}

func (e Entry) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Optional("id", e.ID)
	w.Append("kind", e.Kind)
	w.Append("coin", e.Coin)
	w.Append("symbol", e.Symbol)
	w.Append("amount", e.Amount)
	w.Append("price", e.BuyPrice.Decimal())
	w.Optional("currency", e.BuyPrice.Currency())
	w.Optional("feeBuy", e.FeeBuyPercent)
	w.Optional("feeSell", e.FeeSellPercent)
	w.Append("type", e.Type)
	w.Optional("wallet", e.Wallet)
	if !e.CreatedAt.IsZero() {
		w.Append("created", e.CreatedAt.UTC().Format(time.RFC3339))
	}
	return w.MarshalJSON()
}

func (e *Entry) UnmarshalJSON(data []byte) error {
	var v struct {
		ID       int64           `json:"id"`
		Kind     EntryKind       `json:"kind"`
		Coin     string          `json:"coin"`
		Symbol   string          `json:"symbol"`
		Amount   Quantity        `json:"amount"`
		Price    decimal.Decimal `json:"price"`
		Currency string          `json:"currency"`
		FeeBuy   Percent         `json:"feeBuy"`
		FeeSell  Percent         `json:"feeSell"`
		Type     string          `json:"type"`
		Wallet   string          `json:"wallet"`
		Created  time.Time       `json:"created"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v.Currency == "" {
		v.Currency = DefaultCurrency
	}
	*e = Entry{
		ID:             v.ID,
		Coin:           v.Coin,
		Symbol:         v.Symbol,
		Amount:         v.Amount,
		BuyPrice:       M(v.Price, v.Currency),
		FeeBuyPercent:  v.FeeBuy,
		FeeSellPercent: v.FeeSell,
		Type:           CoinTypeOr(v.Type, Classic),
		Wallet:         v.Wallet,
		Kind:           v.Kind,
		CreatedAt:      v.Created,
	}
	return nil
}
