package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// AnswerID identifies the question an answer targets. Clients may send it as a
// JSON string or number; the representation is kept so results echo it back.
type AnswerID struct {
	text    string
	number  float64
	numeric bool
}

func StringID(s string) AnswerID { return AnswerID{text: s} }

func NumberID(n float64) AnswerID { return AnswerID{number: n, numeric: true} }

// IsNumeric reports whether the id was submitted as a JSON number.
func (id AnswerID) IsNumeric() bool { return id.numeric }

// Matches reports whether the id refers to the canonical question id.
// Numeric ids never match: canonical ids are strings.
func (id AnswerID) Matches(questionID string) bool {
	return !id.numeric && id.text == questionID
}

func (id AnswerID) String() string {
	if id.numeric {
		return formatNumber(id.number)
	}
	return id.text
}

func (id AnswerID) MarshalJSON() ([]byte, error) {
	if id.numeric {
		return []byte(formatNumber(id.number)), nil
	}
	return json.Marshal(id.text)
}

func (id *AnswerID) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case string:
		*id = StringID(v)
	case float64:
		*id = NumberID(v)
	default:
		return ErrInvalidAnswerID
	}
	return nil
}

// ValueKind is the JSON shape of a submitted answer value.
type ValueKind int

const (
	KindNone ValueKind = iota
	KindText
	KindNumber
	KindList
)

// AnswerValue is a submitted answer: a string, a number, or a list of numbers.
type AnswerValue struct {
	kind   ValueKind
	text   string
	number float64
	list   []float64
}

func TextValue(s string) AnswerValue { return AnswerValue{kind: KindText, text: s} }

func NumberValue(n float64) AnswerValue { return AnswerValue{kind: KindNumber, number: n} }

func ListValue(ns ...float64) AnswerValue {
	list := make([]float64, len(ns))
	copy(list, ns)
	return AnswerValue{kind: KindList, list: list}
}

// IndexValue is a single choice index, the shape of a radio answer.
func IndexValue(i int) AnswerValue { return NumberValue(float64(i)) }

// IndexesValue is a list of choice indexes, the shape of a checkbox answer.
func IndexesValue(idx []int) AnswerValue {
	list := make([]float64, len(idx))
	for i, v := range idx {
		list[i] = float64(v)
	}
	return AnswerValue{kind: KindList, list: list}
}

func (v AnswerValue) Kind() ValueKind { return v.kind }

// List returns a copy of the list elements when the value is a list.
func (v AnswerValue) List() ([]float64, bool) {
	if v.kind != KindList {
		return nil, false
	}
	out := make([]float64, len(v.list))
	copy(out, v.list)
	return out, true
}

// String coerces the value to text: numbers in shortest decimal form, lists
// comma-joined.
func (v AnswerValue) String() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		return formatNumber(v.number)
	case KindList:
		parts := make([]string, len(v.list))
		for i, n := range v.list {
			parts[i] = formatNumber(n)
		}
		return strings.Join(parts, ",")
	}
	return ""
}

// Numeric coerces the value to a number. Text is parsed after trimming; blank
// text and lists are not numeric.
func (v AnswerValue) Numeric() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.number, true
	case KindText:
		s := strings.TrimSpace(v.text)
		if s == "" {
			return 0, false
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

func (v AnswerValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindText:
		return json.Marshal(v.text)
	case KindNumber:
		return []byte(formatNumber(v.number)), nil
	case KindList:
		var b strings.Builder
		b.WriteByte('[')
		for i, n := range v.list {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(formatNumber(n))
		}
		b.WriteByte(']')
		return []byte(b.String()), nil
	}
	return []byte("null"), nil
}

func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch val := raw.(type) {
	case string:
		*v = TextValue(val)
	case float64:
		*v = NumberValue(val)
	case []any:
		list := make([]float64, 0, len(val))
		for _, item := range val {
			n, ok := item.(float64)
			if !ok {
				return ErrInvalidAnswerValue
			}
			list = append(list, n)
		}
		*v = AnswerValue{kind: KindList, list: list}
	default:
		return ErrInvalidAnswerValue
	}
	return nil
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}
