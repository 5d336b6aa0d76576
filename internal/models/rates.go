package models

// RateTable maps every instrument class to a percentage return.
type RateTable map[Instrument]float64

// DefaultRateTable returns a fresh copy of the fallback rates.
func DefaultRateTable() RateTable {
	t := make(RateTable, len(Instruments))
	for _, inst := range Instruments {
		t[inst] = inst.DefaultRate()
	}
	return t
}

// Complete reports whether the table holds exactly the closed instrument set.
func (t RateTable) Complete() bool {
	if len(t) != len(Instruments) {
		return false
	}
	for _, inst := range Instruments {
		if _, ok := t[inst]; !ok {
			return false
		}
	}
	return true
}

// Countries is the fixed list of countries whose inflation is tracked.
var Countries = []string{"Austria", "Germany", "Belgium"}

// InflationTable maps every tracked country to its yearly inflation percentage.
type InflationTable map[string]float64

// DefaultInflationTable returns a table with every country at 0.
func DefaultInflationTable() InflationTable {
	t := make(InflationTable, len(Countries))
	for _, c := range Countries {
		t[c] = 0
	}
	return t
}

// Complete reports whether the table holds exactly the tracked countries.
func (t InflationTable) Complete() bool {
	if len(t) != len(Countries) {
		return false
	}
	for _, c := range Countries {
		if _, ok := t[c]; !ok {
			return false
		}
	}
	return true
}
