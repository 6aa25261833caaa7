package dataset

import "strconv"

// Kind is the semantic kind of a single cell.
type Kind int

const (
	KindMissing Kind = iota
	KindNumber
	KindText
)

// Value is one cell of a dataset. Missing is an explicit kind rather than a
// sentinel string or NaN, so numeric and categorical missingness compare the
// same way everywhere: missing == missing, missing != any concrete value.
type Value struct {
	kind Kind
	num  float64
	str  string
}

func Missing() Value         { return Value{kind: KindMissing} }
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }
func Text(s string) Value    { return Value{kind: KindText, str: s} }

func (v Value) Kind() Kind      { return v.kind }
func (v Value) IsMissing() bool { return v.kind == KindMissing }

// Number returns the numeric payload; ok is false for missing or text cells.
func (v Value) Number() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// Text returns the text payload; ok is false for missing or numeric cells.
func (v Value) Text() (string, bool) {
	return v.str, v.kind == KindText
}

// Display renders the value for reports. Missing renders as the empty string.
func (v Value) Display() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindText:
		return v.str
	default:
		return ""
	}
}

// keyPart encodes the value for use inside a group key. The prefix byte keeps
// missing distinct from the empty string and "10" the text distinct from 10
// the number.
func (v Value) keyPart() string {
	switch v.kind {
	case KindNumber:
		return "n:" + strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindText:
		return "t:" + v.str
	default:
		return "\x00"
	}
}

// Equal compares two values under grouping semantics.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNumber:
		return v.num == o.num
	case KindText:
		return v.str == o.str
	default:
		return true
	}
}

// KeyOf builds the canonical hash key for an ordered tuple of values.
// Two rows share a group iff their tuples encode identically.
func KeyOf(vals []Value) string {
	if len(vals) == 0 {
		return ""
	}
	key := vals[0].keyPart()
	for _, v := range vals[1:] {
		key += "\x1f" + v.keyPart()
	}
	return key
}
