package model

import (
	"bytes"
	"encoding/json"
)

// FieldName identifies one of the nine extracted regulation fields
type FieldName string

const (
	FieldBillName        FieldName = "billName"
	FieldDocketNumber    FieldName = "docketNumber"
	FieldJurisdiction    FieldName = "jurisdiction"
	FieldOverview        FieldName = "overview"
	FieldRequirements    FieldName = "requirements"
	FieldPenalties       FieldName = "penalties"
	FieldKeyDates        FieldName = "keyDates"
	FieldCoveredProducts FieldName = "coveredProducts"
	FieldExemptions      FieldName = "exemptions"
)

// Sentinel answers used when a rule finds nothing
const (
	NotFound      = "Not found"
	NotSpecified  = "Not specified"
	NoneSpecified = "None specified"
)

var fieldNames = []FieldName{
	FieldBillName,
	FieldDocketNumber,
	FieldJurisdiction,
	FieldOverview,
	FieldRequirements,
	FieldPenalties,
	FieldKeyDates,
	FieldCoveredProducts,
	FieldExemptions,
}

var sentinels = map[FieldName]string{
	FieldBillName:        NotFound,
	FieldDocketNumber:    NotFound,
	FieldJurisdiction:    NotFound,
	FieldOverview:        NotFound,
	FieldRequirements:    NotFound,
	FieldPenalties:       NotSpecified,
	FieldKeyDates:        NotFound,
	FieldCoveredProducts: NotSpecified,
	FieldExemptions:      NoneSpecified,
}

// FieldNames returns the nine field names in canonical order
func FieldNames() []FieldName {
	out := make([]FieldName, len(fieldNames))
	copy(out, fieldNames)
	return out
}

// Sentinel returns the "no match" answer for a field
func Sentinel(name FieldName) string {
	if s, ok := sentinels[name]; ok {
		return s
	}
	return NotFound
}

// FieldResult is one extracted answer with the heuristic weight of the rule that produced it
type FieldResult struct {
	Answer     string  `json:"answer"`
	Confidence float64 `json:"confidence"` // 0.0 - 1.0, not a calibrated probability
}

// Missing returns the sentinel result for a field
func Missing(name FieldName) FieldResult {
	return FieldResult{Answer: Sentinel(name), Confidence: 0}
}

// FieldSet maps every field name to its result. All nine keys are always present.
type FieldSet map[FieldName]FieldResult

// EmptyFieldSet returns the canonical set where every field is its sentinel at 0.0
func EmptyFieldSet() FieldSet {
	fs := make(FieldSet, len(fieldNames))
	for _, name := range fieldNames {
		fs[name] = Missing(name)
	}
	return fs
}

// Get returns the result for name, or the sentinel when the key is absent
func (fs FieldSet) Get(name FieldName) FieldResult {
	if r, ok := fs[name]; ok {
		return r
	}
	return Missing(name)
}

// Complete fills any absent key with its sentinel
func (fs FieldSet) Complete() FieldSet {
	out := make(FieldSet, len(fieldNames))
	for _, name := range fieldNames {
		out[name] = fs.Get(name)
	}
	return out
}

// MarshalJSON writes the fields in canonical order instead of map order
func (fs FieldSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range fieldNames {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(string(name))
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(fs.Get(name))
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
