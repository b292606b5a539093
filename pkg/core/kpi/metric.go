package kpi

import (
	"encoding/json"
	"fmt"
	"math"
)

// UndefinedLabel is the JSON representation of a metric whose denominator
// was zero. Consumers must not read it as 0: "ROAS is 0" means revenue is
// zero on positive spend, "ROAS is undefined" means there was no spend.
const UndefinedLabel = "undefined"

// Metric is a tagged ratio value: either Defined(v) with v finite, or
// Undefined. It is never NaN or Infinity. KPI ratios are additionally
// non-negative by construction; trend deltas may be negative.
type Metric struct {
	value   float64
	defined bool
}

// Defined builds a defined metric. Non-finite inputs collapse to Undefined
// rather than leaking NaN/Inf into reports.
func Defined(v float64) Metric {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Metric{}
	}
	return Metric{value: v, defined: true}
}

// Undefined is the zero-denominator sentinel.
var Undefined = Metric{}

// Ratio divides num by den under the safe-division policy: Undefined when
// den == 0, Defined(num/den) otherwise.
func Ratio(num, den float64) Metric {
	if den == 0 {
		return Undefined
	}
	return Defined(num / den)
}

// IsDefined reports whether the metric carries a value.
func (m Metric) IsDefined() bool { return m.defined }

// Value returns the metric value and whether it is defined.
func (m Metric) Value() (float64, bool) { return m.value, m.defined }

// Or returns the metric value, or def when undefined.
func (m Metric) Or(def float64) float64 {
	if !m.defined {
		return def
	}
	return m.value
}

func (m Metric) String() string {
	if !m.defined {
		return UndefinedLabel
	}
	return fmt.Sprintf("%.4f", m.value)
}

// MarshalJSON encodes a defined metric as a JSON number and an undefined
// one as the string "undefined", per the report schema.
func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.defined {
		return json.Marshal(UndefinedLabel)
	}
	return json.Marshal(m.value)
}

// UnmarshalJSON accepts either a JSON number or the string "undefined".
// Used when re-reading externally produced report payloads.
func (m *Metric) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != UndefinedLabel {
			return fmt.Errorf("metric: unexpected string %q", s)
		}
		*m = Undefined
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = Defined(v)
	return nil
}
