package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

type quantityKind uint8

const (
	quantityAbsent quantityKind = iota
	quantityCount
	quantityFlag
)

// Quantity is a stock level reported either as an exact count or as an
// eligibility flag, depending on the retailer. The zero value means the
// upstream did not report the field at all.
type Quantity struct {
	kind  quantityKind
	count float64
	flag  bool
}

// Count returns a numeric quantity.
func Count(n float64) Quantity {
	return Quantity{kind: quantityCount, count: n}
}

// Flag returns a boolean quantity.
func Flag(b bool) Quantity {
	return Quantity{kind: quantityFlag, flag: b}
}

// IsZero reports whether the quantity is absent. It lets `omitzero` drop
// unreported fields when encoding.
func (q Quantity) IsZero() bool { return q.kind == quantityAbsent }

// Present reports whether the upstream reported the quantity.
func (q Quantity) Present() bool { return q.kind != quantityAbsent }

// IsCount reports whether the quantity is numeric.
func (q Quantity) IsCount() bool { return q.kind == quantityCount }

// IsFlag reports whether the quantity is a boolean flag.
func (q Quantity) IsFlag() bool { return q.kind == quantityFlag }

// Number returns the numeric value. Flags count as 1 or 0, absent as 0.
func (q Quantity) Number() float64 {
	switch q.kind {
	case quantityCount:
		return q.count
	case quantityFlag:
		if q.flag {
			return 1
		}
	}
	return 0
}

// Bool returns the flag value, or whether a count is positive.
func (q Quantity) Bool() bool {
	switch q.kind {
	case quantityFlag:
		return q.flag
	case quantityCount:
		return q.count > 0
	}
	return false
}

// InStock is true for a positive count or a true flag.
func (q Quantity) InStock() bool {
	return q.Bool()
}

func (q Quantity) String() string {
	switch q.kind {
	case quantityCount:
		return strconv.FormatFloat(sanitizeCount(q.count), 'f', -1, 64)
	case quantityFlag:
		return strconv.FormatBool(q.flag)
	}
	return ""
}

// MarshalJSON encodes counts as numbers, flags as booleans and absent as null.
func (q Quantity) MarshalJSON() ([]byte, error) {
	switch q.kind {
	case quantityCount:
		return []byte(strconv.FormatFloat(sanitizeCount(q.count), 'f', -1, 64)), nil
	case quantityFlag:
		return []byte(strconv.FormatBool(q.flag)), nil
	}
	return []byte("null"), nil
}

// UnmarshalJSON accepts a number, a boolean, a numeric string or null.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*q = Quantity{}
		return nil
	case bytes.Equal(data, []byte("true")):
		*q = Flag(true)
		return nil
	case bytes.Equal(data, []byte("false")):
		*q = Flag(false)
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("quantity %q is not numeric", s)
		}
		*q = Count(n)
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("quantity %s is neither a number nor a boolean", data)
	}
	*q = Count(n)
	return nil
}

func sanitizeCount(n float64) float64 {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return n
}
