// Package specifier implements a one-axis cron predicate: a closed
// variant over an inclusive integer range, parameterized by an ordinal
// bijection so minutes, weekdays and months all share one implementation
// instead of six near-identical ones.
package specifier

import "backupsdk/internal/ordinal"

// Kind discriminates the specifier variant. Each is a closed, mutually
// exclusive behavior; there is no "combination" of kinds within one axis.
type Kind int

const (
	KindNone Kind = iota
	KindAll
	KindFirst
	KindLast
	KindNth
	KindBackNth
	KindExplicitNths
	KindEveryNth
	KindExplicitList
)

// Specifier is a predicate over [Min, Max] carrying one Kind-specific
// parameter set. Zero value is invalid; use New.
type Specifier[T ordinal.Ordinal] struct {
	min, max T
	fromInt  ordinal.FromInt[T]
	kind     Kind

	n      int // Nth, BackNth, EveryNth.step
	offset int // EveryNth.offset
	list   []int
}

// New constructs a Specifier, normalizing min/max order and list-kind
// contents: sorted, deduplicated, out-of-range entries discarded.
func New[T ordinal.Ordinal](min, max T, fromInt ordinal.FromInt[T], kind Kind, n, offset int, list []int) Specifier[T] {
	if min.ToInt() > max.ToInt() {
		min, max = max, min
	}
	s := Specifier[T]{min: min, max: max, fromInt: fromInt, kind: kind, n: n, offset: offset}

	switch kind {
	case KindExplicitList:
		s.list = normalizeInRange(list, min.ToInt(), max.ToInt())
	case KindExplicitNths:
		maxIndex := max.ToInt() - min.ToInt()
		s.list = normalizeInRange(list, 0, maxIndex)
	}
	return s
}

func normalizeInRange(values []int, lo, hi int) []int {
	out := make([]int, 0, len(values))
	for _, v := range values {
		if v >= lo && v <= hi {
			out = append(out, v)
		}
	}
	sortInts(out)
	return dedupSorted(out)
}

func sortInts(xs []int) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j-1] > xs[j]; j-- {
			xs[j-1], xs[j] = xs[j], xs[j-1]
		}
	}
}

func dedupSorted(xs []int) []int {
	if len(xs) == 0 {
		return xs
	}
	out := xs[:1]
	for _, v := range xs[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}

// None builds the constant-false specifier.
func None[T ordinal.Ordinal](min, max T, fromInt ordinal.FromInt[T]) Specifier[T] {
	return New(min, max, fromInt, KindNone, 0, 0, nil)
}

// All matches every value in range.
func All[T ordinal.Ordinal](min, max T, fromInt ordinal.FromInt[T]) Specifier[T] {
	return New(min, max, fromInt, KindAll, 0, 0, nil)
}

func First[T ordinal.Ordinal](min, max T, fromInt ordinal.FromInt[T]) Specifier[T] {
	return New(min, max, fromInt, KindFirst, 0, 0, nil)
}

func Last[T ordinal.Ordinal](min, max T, fromInt ordinal.FromInt[T]) Specifier[T] {
	return New(min, max, fromInt, KindLast, 0, 0, nil)
}

func Nth[T ordinal.Ordinal](min, max T, fromInt ordinal.FromInt[T], n int) Specifier[T] {
	return New(min, max, fromInt, KindNth, n, 0, nil)
}

func BackNth[T ordinal.Ordinal](min, max T, fromInt ordinal.FromInt[T], n int) Specifier[T] {
	return New(min, max, fromInt, KindBackNth, n, 0, nil)
}

func ExplicitNths[T ordinal.Ordinal](min, max T, fromInt ordinal.FromInt[T], indices []int) Specifier[T] {
	return New(min, max, fromInt, KindExplicitNths, 0, 0, indices)
}

func EveryNth[T ordinal.Ordinal](min, max T, fromInt ordinal.FromInt[T], step, offset int) Specifier[T] {
	return New(min, max, fromInt, KindEveryNth, step, offset, nil)
}

func ExplicitList[T ordinal.Ordinal](min, max T, fromInt ordinal.FromInt[T], values []int) Specifier[T] {
	return New(min, max, fromInt, KindExplicitList, 0, 0, values)
}

func (s Specifier[T]) Min() T    { return s.min }
func (s Specifier[T]) Max() T    { return s.max }
func (s Specifier[T]) Kind() Kind { return s.kind }

// IsAll reports whether the specifier is the unconstrained KindAll variant;
// used by Interval's day-combination rule.
func (s Specifier[T]) IsAll() bool { return s.kind == KindAll }

func (s Specifier[T]) isInRange(x T) bool {
	return s.min.ToInt() <= x.ToInt() && x.ToInt() <= s.max.ToInt()
}

func (s Specifier[T]) rangeLen() int { return s.max.ToInt() - s.min.ToInt() + 1 }

// Matches reports whether x satisfies the specifier. x outside [min, max]
// never matches, regardless of kind.
func (s Specifier[T]) Matches(x T) bool {
	if !s.isInRange(x) {
		return false
	}
	xi := x.ToInt()
	switch s.kind {
	case KindNone:
		return false
	case KindAll:
		return true
	case KindFirst:
		return xi == s.min.ToInt()
	case KindLast:
		return xi == s.max.ToInt()
	case KindNth:
		return s.min.ToInt()+s.n == xi
	case KindBackNth:
		return s.max.ToInt()-s.n == xi
	case KindExplicitNths:
		for _, idx := range s.list {
			if s.min.ToInt()+idx == xi {
				return true
			}
		}
		return false
	case KindEveryNth:
		minOffset := s.min.ToInt() + s.offset
		if minOffset > s.max.ToInt() || minOffset > xi {
			return false
		}
		if s.n == 0 {
			return xi == minOffset
		}
		return mod(xi-minOffset, s.n) == 0
	case KindExplicitList:
		for _, v := range s.list {
			if v == xi {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// mod is Euclidean modulo: always non-negative, matching Rust's rem_euclid
// used by the ported EveryNth.matches.
func mod(a, n int) int {
	m := a % n
	if m < 0 {
		m += abs(n)
	}
	return m
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// FirstMatch returns the smallest matching element, or false if none.
func (s Specifier[T]) FirstMatch() (T, bool) {
	return s.CyclicNext(s.max)
}

// CyclicNext returns the smallest matching y with y > x, wrapping to the
// first match if none exists beyond x. Returns false only when nothing
// matches at all, or x is out of range.
func (s Specifier[T]) CyclicNext(x T) (T, bool) {
	if !s.isInRange(x) {
		var zero T
		return zero, false
	}
	xi := x.ToInt()

	switch s.kind {
	case KindNone:
		var zero T
		return zero, false
	case KindAll:
		return s.fromInt(s.min.ToInt() + mod(xi-s.min.ToInt()+1, s.rangeLen())), true
	case KindFirst:
		return s.min, true
	case KindLast:
		return s.max, true
	case KindNth:
		val := s.min.ToInt() + s.n
		if val <= s.max.ToInt() {
			return s.fromInt(val), true
		}
		var zero T
		return zero, false
	case KindBackNth:
		val := s.max.ToInt() - s.n
		if val >= s.min.ToInt() {
			return s.fromInt(val), true
		}
		var zero T
		return zero, false
	case KindExplicitNths:
		if len(s.list) == 0 {
			var zero T
			return zero, false
		}
		for _, idx := range s.list {
			val := s.min.ToInt() + idx
			if val > xi {
				return s.fromInt(val), true
			}
		}
		return s.fromInt(s.min.ToInt() + s.list[0]), true
	case KindEveryNth:
		minOffset := s.min.ToInt() + s.offset
		if minOffset > s.max.ToInt() {
			var zero T
			return zero, false
		}
		if s.n == 0 {
			return s.fromInt(minOffset), true
		}
		if xi < minOffset {
			return s.fromInt(minOffset), true
		}
		// Smallest integer k strictly greater than (xi-minOffset)/n, found
		// via integer floor division rather than the original's float
		// round(i+0.5) trick (equivalent for non-negative integer inputs,
		// without floating-point edge cases).
		k := (xi-minOffset)/s.n + 1
		candidate := minOffset + k*s.n
		if candidate <= s.max.ToInt() {
			return s.fromInt(candidate), true
		}
		return s.fromInt(minOffset), true
	case KindExplicitList:
		if len(s.list) == 0 {
			var zero T
			return zero, false
		}
		for _, v := range s.list {
			if v > xi {
				return s.fromInt(v), true
			}
		}
		return s.fromInt(s.list[0]), true
	default:
		var zero T
		return zero, false
	}
}
