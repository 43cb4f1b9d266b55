package scoring

import (
	"encoding/json"
	"math"
)

// Rate is a derived ratio that may be unavailable.
// An unavailable rate marshals to JSON null; it is never reported as 0, NaN or Inf.
type Rate struct {
	value float64
	ok    bool
}

// NewRate returns num/den*scale, unavailable when den is zero.
func NewRate(num, den, scale float64) Rate {
	if den == 0 {
		return Rate{}
	}
	return Rate{value: num / den * scale, ok: true}
}

// Value returns the rate and whether it is available.
func (r Rate) Value() (float64, bool) { return r.value, r.ok }

// Available reports whether the rate has a value.
func (r Rate) Available() bool { return r.ok }

// Round returns the rate rounded to the given number of decimals.
func (r Rate) Round(decimals int) Rate {
	if !r.ok {
		return r
	}
	p := math.Pow(10, float64(decimals))
	return Rate{value: math.Round(r.value*p) / p, ok: true}
}

// MarshalJSON renders the value rounded to two decimals, or null.
func (r Rate) MarshalJSON() ([]byte, error) {
	if !r.ok {
		return []byte("null"), nil
	}
	return json.Marshal(r.Round(2).value)
}

// UnmarshalJSON accepts a number or null.
func (r *Rate) UnmarshalJSON(b []byte) error {
	var v *float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	if v == nil {
		*r = Rate{}
		return nil
	}
	*r = Rate{value: *v, ok: true}
	return nil
}
