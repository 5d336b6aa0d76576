package models

import (
	"fmt"
	"strings"
	"unicode"
)

// Instrument is one of the closed set of investment instrument classes.
type Instrument int

const (
	FixedDeposit Instrument = iota
	SIP
	MutualFunds
	Gold
	Stocks
	Crypto
	REITs
	AggressiveMutualFunds
)

// Instruments lists every instrument class in display order.
var Instruments = []Instrument{
	FixedDeposit,
	SIP,
	MutualFunds,
	Gold,
	Stocks,
	Crypto,
	REITs,
	AggressiveMutualFunds,
}

type instrumentInfo struct {
	label       string
	slug        string
	defaultRate float64
	aliases     []string
}

var instrumentTable = map[Instrument]instrumentInfo{
	FixedDeposit:          {"Fixed Deposit", "fixed-deposit", 7, []string{"fd", "fixeddepositfd", "fixeddeposits"}},
	SIP:                   {"SIP", "sip", 12, []string{"systematicinvestmentplan", "sips"}},
	MutualFunds:           {"Mutual Funds", "mutual-funds", 15, []string{"mutualfund", "balancedmutualfunds", "balancedmutualfund", "balancedfunds"}},
	Gold:                  {"Gold", "gold", 8, []string{"goldinvestment", "goldetf", "sovereigngoldbonds"}},
	Stocks:                {"Stocks", "stocks", 14, []string{"stock", "equity", "equities", "directequity"}},
	Crypto:                {"Crypto", "crypto", 20, []string{"cryptocurrency", "cryptocurrencies"}},
	REITs:                 {"REITs", "reits", 9, []string{"reit", "realestateinvestmenttrusts", "realestateinvestmenttrust"}},
	AggressiveMutualFunds: {"Aggressive Mutual Funds", "aggressive-mutual-funds", 18, []string{"aggressivemutualfund", "aggressivefunds", "smallcapfunds"}},
}

var instrumentByKey = func() map[string]Instrument {
	idx := make(map[string]Instrument)
	for inst, info := range instrumentTable {
		idx[normalizeKey(info.label)] = inst
		idx[normalizeKey(info.slug)] = inst
		for _, alias := range info.aliases {
			idx[alias] = inst
		}
	}
	return idx
}()

// String returns the display label.
func (i Instrument) String() string {
	if info, ok := instrumentTable[i]; ok {
		return info.label
	}
	return fmt.Sprintf("Instrument(%d)", int(i))
}

// Slug is the path segment used by the market-data provider.
func (i Instrument) Slug() string {
	return instrumentTable[i].slug
}

// DefaultRate is the fallback percentage return for the instrument.
func (i Instrument) DefaultRate() float64 {
	return instrumentTable[i].defaultRate
}

// MarshalText encodes the instrument as its display label so it can key JSON maps.
func (i Instrument) MarshalText() ([]byte, error) {
	if _, ok := instrumentTable[i]; !ok {
		return nil, fmt.Errorf("unknown instrument %d", int(i))
	}
	return []byte(i.String()), nil
}

// UnmarshalText accepts any label understood by ParseInstrument.
func (i *Instrument) UnmarshalText(text []byte) error {
	inst, ok := ParseInstrument(string(text))
	if !ok {
		return fmt.Errorf("unknown instrument %q", string(text))
	}
	*i = inst
	return nil
}

// ParseInstrument resolves a free-form label ("Fixed Deposit (FD)", "gold_investment", "REIT")
// to an instrument class.
func ParseInstrument(label string) (Instrument, bool) {
	inst, ok := instrumentByKey[normalizeKey(label)]
	return inst, ok
}

func normalizeKey(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
