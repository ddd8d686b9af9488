package schema

import (
	"time"
)

// Values is an in-memory Record, nil represents the null value.
// Other supported values are bool, int64, float64, string and time.Time.
type Values []any

func (v Values) Len() int {
	return len(v)
}

func (v Values) IsNull(i int) bool {
	return v[i] == nil
}

func (v Values) Bool(i int) bool {
	return v[i].(bool)
}

func (v Values) Int(i int) int64 {
	return v[i].(int64)
}

func (v Values) Float(i int) float64 {
	return v[i].(float64)
}

func (v Values) String(i int) string {
	return v[i].(string)
}

func (v Values) Timestamp(i int) time.Time {
	return v[i].(time.Time)
}
