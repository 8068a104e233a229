package specifier

import "backupsdk/internal/ordinal"

// kindNames mirrors Kind's order; used only for JSON (de)serialization so
// profile records stay human-readable on disk.
var kindNames = [...]string{
	"none", "all", "first", "last", "nth", "back_nth", "explicit_nths", "every_nth", "explicit_list",
}

func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

func kindFromString(s string) (Kind, bool) {
	for i, name := range kindNames {
		if name == s {
			return Kind(i), true
		}
	}
	return 0, false
}

// JSON is the wire representation of a Specifier, independent of its
// concrete ordinal type. Interval owns converting to/from the typed
// Specifier[T] per axis, since only Interval knows each axis's FromInt.
type JSON struct {
	Min    int    `json:"min"`
	Max    int    `json:"max"`
	Kind   string `json:"kind"`
	N      int    `json:"n,omitempty"`
	Offset int    `json:"offset,omitempty"`
	List   []int  `json:"list,omitempty"`
}

// ToJSON produces the wire representation of s.
func (s Specifier[T]) ToJSON() JSON {
	return JSON{
		Min:    s.min.ToInt(),
		Max:    s.max.ToInt(),
		Kind:   s.kind.String(),
		N:      s.n,
		Offset: s.offset,
		List:   s.list,
	}
}

// FromJSON reconstructs a typed Specifier from its wire representation,
// re-running the same normalization New performs.
func FromJSON[T ordinal.Ordinal](j JSON, fromInt ordinal.FromInt[T]) (Specifier[T], error) {
	kind, ok := kindFromString(j.Kind)
	if !ok {
		return Specifier[T]{}, &InvalidKindError{Kind: j.Kind}
	}
	min := fromInt(j.Min)
	max := fromInt(j.Max)
	return New(min, max, fromInt, kind, j.N, j.Offset, j.List), nil
}

// InvalidKindError reports an unrecognized specifier kind name while
// deserializing a profile record.
type InvalidKindError struct {
	Kind string
}

func (e *InvalidKindError) Error() string {
	return "specifier: unknown kind " + e.Kind
}
