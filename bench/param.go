package bench

import (
	"cmp"
	"strconv"
)

// ParamKind tags the value held by a Param.
type ParamKind int

const (
	// KindOpaque values take part in neither ordering nor grouping.
	KindOpaque ParamKind = iota
	KindInt
	KindString
)

// Param is one named parameter of a case.
type Param struct {
	Name string
	Kind ParamKind
	Int  int64
	Str  string
}

// IntParam returns an ordered integer parameter.
func IntParam(name string, v int64) Param {
	return Param{Name: name, Kind: KindInt, Int: v}
}

// StringParam returns an ordered string parameter.
func StringParam(name, v string) Param {
	return Param{Name: name, Kind: KindString, Str: v}
}

// OpaqueParam returns a parameter that is displayed but never compared.
func OpaqueParam(name, v string) Param {
	return Param{Name: name, Kind: KindOpaque, Str: v}
}

// Comparable reports whether the parameter has a natural ordering.
func (p Param) Comparable() bool {
	return p.Kind == KindInt || p.Kind == KindString
}

// Value renders the parameter value.
func (p Param) Value() string {
	if p.Kind == KindInt {
		return strconv.FormatInt(p.Int, 10)
	}

	return p.Str
}

func (p Param) String() string {
	return p.Name + "=" + p.Value()
}

// Compare orders two parameters by their natural ordering. Parameters of
// different kinds, or without an ordering, rank equal.
func (p Param) Compare(o Param) int {
	if p.Kind != o.Kind {
		return 0
	}

	switch p.Kind {
	case KindInt:
		return cmp.Compare(p.Int, o.Int)
	case KindString:
		return cmp.Compare(p.Str, o.Str)
	default:
		return 0
	}
}

// CompareParams compares two parameter lists component-wise over their
// common prefix.
func CompareParams(a, b []Param) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if c := a[i].Compare(b[i]); c != 0 {
			return c
		}
	}

	return 0
}
