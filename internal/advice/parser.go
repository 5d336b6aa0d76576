package advice

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/Dan9191/investment-advisor/internal/models"
	"github.com/tidwall/gjson"
)

var (
	// ErrMalformedJSON means no JSON object could be decoded from the text.
	ErrMalformedJSON = errors.New("malformed JSON")
	// ErrMissingField means a required top-level field is absent.
	ErrMissingField = errors.New("missing field")
	// ErrInvalidField means a required top-level field is present but unusable.
	ErrInvalidField = errors.New("invalid field")
)

var fencedBlock = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*(.*?)```")

// Payload is the structured advice extracted from the advisory text.
type Payload struct {
	EmergencyFund    float64
	InvestableAmount float64
	// Investments maps the label used by the advisor to its rate. The labels are not
	// guaranteed to name a known instrument class.
	Investments map[string]float64
	Returns     map[models.Horizon]models.Estimate
	// Warnings lists fields that were replaced by a default.
	Warnings []string
}

// Parse extracts and validates the advice payload from free-form text.
func Parse(raw string) (*Payload, error) {
	doc, ok := extractJSON(raw)
	if !ok {
		return nil, ErrMalformedJSON
	}
	root := gjson.Parse(doc)

	p := &Payload{
		Investments: make(map[string]float64),
		Returns:     make(map[models.Horizon]models.Estimate, len(models.Horizons)),
	}

	var err error
	if p.EmergencyFund, err = requiredAmount(root, "emergency_fund"); err != nil {
		return nil, err
	}
	if p.InvestableAmount, err = requiredAmount(root, "investable_amount"); err != nil {
		return nil, err
	}

	investments := root.Get("investments")
	if !investments.Exists() {
		return nil, fmt.Errorf("%w: investments", ErrMissingField)
	}
	if !investments.IsObject() {
		return nil, fmt.Errorf("%w: investments is not an object", ErrInvalidField)
	}
	investments.ForEach(func(key, value gjson.Result) bool {
		v, err := coerce(value)
		if err != nil {
			p.Warnings = append(p.Warnings, fmt.Sprintf("investment %q: %v", key.String(), err))
			v = 0
		}
		p.Investments[key.String()] = v
		return true
	})

	returns := root.Get("returns")
	for _, h := range models.Horizons {
		p.Returns[h] = models.NotAvailable
		if !returns.IsObject() {
			continue
		}
		r := returns.Get(h.Key())
		if v, err := coerce(r); err == nil {
			p.Returns[h] = models.Estimate{
				Value:     v,
				Available: true,
				Percent:   r.Type == gjson.String && strings.Contains(r.Str, "%"),
			}
		}
	}

	return p, nil
}

func requiredAmount(root gjson.Result, field string) (float64, error) {
	r := root.Get(field)
	if !r.Exists() {
		return 0, fmt.Errorf("%w: %s", ErrMissingField, field)
	}
	v, err := coerce(r)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidField, field, err)
	}
	return v, nil
}

// coerce reads a finite number from a JSON number, a formatted string, or an object carrying
// the value under a conventional key ({"months": 6, "amount": "₹6000"}).
func coerce(r gjson.Result) (float64, error) {
	switch r.Type {
	case gjson.Number:
		v := r.Float()
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("%w: %s is out of range", ErrNotNumeric, r.Raw)
		}
		return v, nil
	case gjson.String:
		return Normalize(r.Str)
	case gjson.JSON:
		if r.IsObject() {
			for _, key := range []string{"amount", "rate", "value", "expected_return"} {
				if inner := r.Get(key); inner.Exists() && inner.Type != gjson.JSON {
					return coerce(inner)
				}
			}
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrNotNumeric, r.Raw)
}

// extractJSON finds the JSON object in the text: a fenced block first, then the
// whole text, then the outermost braces.
func extractJSON(raw string) (string, bool) {
	if m := fencedBlock.FindStringSubmatch(raw); m != nil {
		return validObject(m[1])
	}
	if doc, ok := validObject(raw); ok {
		return doc, true
	}
	first, last := strings.Index(raw, "{"), strings.LastIndex(raw, "}")
	if first >= 0 && last > first {
		return validObject(raw[first : last+1])
	}
	return "", false
}

func validObject(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if !gjson.Valid(s) || !gjson.Parse(s).IsObject() {
		return "", false
	}
	return s, true
}
