package dao

import (
	"fmt"
	"time"
)

// Kind semantic type of a bound parameter
type Kind int

const (
	KindString Kind = iota + 1
	KindInt
	KindLong
	KindDouble
	KindDate
	KindTimestamp
	KindBool
	KindNull
	// KindGeneric values with no semantic type; bound unchanged
	KindGeneric
)

var kindNames = map[Kind]string{
	KindString:    "string",
	KindInt:       "int",
	KindLong:      "long",
	KindDouble:    "double",
	KindDate:      "date",
	KindTimestamp: "timestamp",
	KindBool:      "bool",
	KindNull:      "null",
	KindGeneric:   "generic",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Param one positional statement parameter
type Param struct {
	Kind  Kind
	Value any
}

func String(s string) Param       { return Param{Kind: KindString, Value: s} }
func Int(i int) Param             { return Param{Kind: KindInt, Value: i} }
func Long(i int64) Param          { return Param{Kind: KindLong, Value: i} }
func Double(f float64) Param      { return Param{Kind: KindDouble, Value: f} }
func Timestamp(t time.Time) Param { return Param{Kind: KindTimestamp, Value: t} }
func Bool(b bool) Param           { return Param{Kind: KindBool, Value: b} }
func Null() Param                 { return Param{Kind: KindNull} }
func Generic(v any) Param         { return Param{Kind: KindGeneric, Value: v} }

// Date binds the calendar day of t; the clock part is dropped
func Date(t time.Time) Param { return Param{Kind: KindDate, Value: t} }

// Params positional parameter list
type Params []Param

// ParamsOf classifies plain Go values. Nil pointers become Null, time.Time
// becomes Timestamp and anything unrecognised falls back to Generic.
func ParamsOf(values ...any) Params {
	out := make(Params, len(values))
	for i, v := range values {
		out[i] = classify(v)
	}
	return out
}

func classify(v any) Param {
	switch x := v.(type) {
	case nil:
		return Null()
	case Param:
		return x
	case string:
		return String(x)
	case int:
		return Int(x)
	case int32:
		return Int(int(x))
	case int64:
		return Long(x)
	case float64:
		return Double(x)
	case float32:
		return Double(float64(x))
	case bool:
		return Bool(x)
	case time.Time:
		return Timestamp(x)
	case *string:
		if x == nil {
			return Null()
		}
		return String(*x)
	case *int:
		if x == nil {
			return Null()
		}
		return Int(*x)
	case *int64:
		if x == nil {
			return Null()
		}
		return Long(*x)
	case *float64:
		if x == nil {
			return Null()
		}
		return Double(*x)
	case *bool:
		if x == nil {
			return Null()
		}
		return Bool(*x)
	case *time.Time:
		if x == nil {
			return Null()
		}
		return Timestamp(*x)
	default:
		return Generic(v)
	}
}
