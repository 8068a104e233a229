package specifier

import (
	"testing"

	"backupsdk/internal/ordinal"
)

func intSpec(min, max int, kind Kind, n, offset int, list []int) Specifier[ordinal.Int] {
	return New(ordinal.Int(min), ordinal.Int(max), ordinal.IntFromInt, kind, n, offset, list)
}

func TestNewNormalizesSwappedRange(t *testing.T) {
	s := intSpec(100, 20, KindAll, 0, 0, nil)
	if s.Min().ToInt() != 20 || s.Max().ToInt() != 100 {
		t.Fatalf("expected swapped range [20,100], got [%d,%d]", s.Min().ToInt(), s.Max().ToInt())
	}
}

func TestNewNormalizesExplicitList(t *testing.T) {
	s := intSpec(50, 200, KindExplicitList, 0, 0, []int{199, 60, 60, 10, 250})
	want := []int{60, 199}
	if len(s.list) != len(want) {
		t.Fatalf("got %v, want %v", s.list, want)
	}
	for i := range want {
		if s.list[i] != want[i] {
			t.Fatalf("got %v, want %v", s.list, want)
		}
	}
}

func TestNewNormalizesExplicitNths(t *testing.T) {
	s := intSpec(20, 5000, KindExplicitNths, 0, 0, []int{0, 10, 5, 15, 7, 80, 1, 10})
	want := []int{0, 1, 5, 7, 10, 15, 80}
	if len(s.list) != len(want) {
		t.Fatalf("got %v, want %v", s.list, want)
	}
	for i := range want {
		if s.list[i] != want[i] {
			t.Fatalf("got %v, want %v", s.list, want)
		}
	}
}

func TestMatchesOutOfRange(t *testing.T) {
	s := intSpec(10, 20, KindAll, 0, 0, nil)
	if s.Matches(9) || s.Matches(21) {
		t.Fatal("out-of-range input must never match")
	}
}

func TestMatchesKinds(t *testing.T) {
	cases := []struct {
		name string
		s    Specifier[ordinal.Int]
		yes  []int
		no   []int
	}{
		{"none", intSpec(0, 100, KindNone, 0, 0, nil), nil, []int{0, 50, 100}},
		{"all", intSpec(11, 27, KindAll, 0, 0, nil), []int{11, 20, 27}, nil},
		{"first", intSpec(10, 20, KindFirst, 0, 0, nil), []int{10}, []int{15, 20}},
		{"last", intSpec(10, 20, KindLast, 0, 0, nil), []int{20}, []int{11, 15}},
		{"nth", intSpec(10, 20, KindNth, 5, 0, nil), []int{15}, []int{11, 20}},
		{"backnth", intSpec(10, 20, KindBackNth, 7, 0, nil), []int{13}, []int{11, 20}},
		{"explicit_nths", intSpec(10, 20, KindExplicitNths, 0, 0, []int{0, 5, 7}), []int{10, 15, 17}, []int{11, 14, 20}},
		{"everynth", intSpec(10, 20, KindEveryNth, 2, 3, nil), []int{13, 15, 17, 19}, []int{10, 11, 14, 18}},
		{"explicit_list", intSpec(10, 20, KindExplicitList, 0, 0, []int{10, 17, 20}), []int{10, 17, 20}, []int{12, 15}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			for _, v := range c.yes {
				if !c.s.Matches(ordinal.Int(v)) {
					t.Errorf("expected match for %d", v)
				}
			}
			for _, v := range c.no {
				if c.s.Matches(ordinal.Int(v)) {
					t.Errorf("expected no match for %d", v)
				}
			}
		})
	}
}

func TestEveryNthZeroStepDegenerate(t *testing.T) {
	s := intSpec(10, 20, KindEveryNth, 0, 5, nil)
	if !s.Matches(15) {
		t.Fatal("EveryNth(0,5) must match min+offset")
	}
	if s.Matches(16) {
		t.Fatal("EveryNth(0,5) must match nothing else")
	}
	next, ok := s.CyclicNext(12)
	if !ok || next.ToInt() != 15 {
		t.Fatal("expected in-range cyclic_next to find the single match")
	}
}

func TestEveryNthOffsetOutOfRangeIsEmpty(t *testing.T) {
	s := intSpec(10, 20, KindEveryNth, 5, 100, nil)
	if s.Matches(15) {
		t.Fatal("offset beyond max must be an empty predicate")
	}
	if _, ok := s.CyclicNext(15); ok {
		t.Fatal("offset beyond max must never produce a cyclic_next")
	}
}

func TestExplicitEmptyListIsEmptyPredicate(t *testing.T) {
	s := intSpec(0, 10, KindExplicitList, 0, 0, nil)
	if s.Matches(5) {
		t.Fatal("empty ExplicitList must match nothing")
	}
	if _, ok := s.CyclicNext(5); ok {
		t.Fatal("empty ExplicitList's cyclic_next must be none even for in-range input")
	}

	sn := intSpec(0, 10, KindExplicitNths, 0, 0, nil)
	if sn.Matches(5) {
		t.Fatal("empty ExplicitNths must match nothing")
	}
	if _, ok := sn.CyclicNext(5); ok {
		t.Fatal("empty ExplicitNths's cyclic_next must be none")
	}
}

func TestFirstMatch(t *testing.T) {
	s := intSpec(0, 10, KindAll, 0, 0, nil)
	v, ok := s.FirstMatch()
	if !ok || v.ToInt() != 0 {
		t.Fatalf("expected first match 0, got %v ok=%v", v, ok)
	}

	s2 := intSpec(4328, 9999, KindEveryNth, 2, 0, nil)
	v2, ok2 := s2.FirstMatch()
	if !ok2 || v2.ToInt() != 4328 {
		t.Fatalf("expected first match 4328, got %v ok=%v", v2, ok2)
	}

	s3 := intSpec(10, 20, KindEveryNth, 100, 400, nil)
	if _, ok3 := s3.FirstMatch(); ok3 {
		t.Fatal("expected no first match when offset is out of range")
	}
}

func TestCyclicNextAll(t *testing.T) {
	s := intSpec(0, 10, KindAll, 0, 0, nil)
	v, ok := s.CyclicNext(10)
	if !ok || v.ToInt() != 0 {
		t.Fatalf("expected wraparound to 0, got %v ok=%v", v, ok)
	}
}

func TestCyclicNextEveryNth(t *testing.T) {
	s := intSpec(0, 10, KindEveryNth, 2, 0, nil)
	v, ok := s.CyclicNext(4)
	if !ok || v.ToInt() != 6 {
		t.Fatalf("expected 6, got %v ok=%v", v, ok)
	}
}

// Boundary scenario: minutes EveryNth(10, 0), input 35 -> next 40.
func TestBoundaryCyclicMinuteNext(t *testing.T) {
	s := intSpec(0, 59, KindEveryNth, 10, 0, nil)
	v, ok := s.CyclicNext(35)
	if !ok || v.ToInt() != 40 {
		t.Fatalf("expected 40, got %v ok=%v", v, ok)
	}
}

func TestCyclicNextNoneIsAlwaysNone(t *testing.T) {
	s := intSpec(0, 100, KindNone, 0, 0, nil)
	if _, ok := s.CyclicNext(50); ok {
		t.Fatal("None specifier must never produce a cyclic_next")
	}
}

// Quantified invariant: for any x in [min,max],
// s.matches(x) <-> s.cyclic_next(prev(x)) == x.
func TestMatchesCyclicNextInvariant(t *testing.T) {
	specs := []Specifier[ordinal.Int]{
		intSpec(0, 59, KindEveryNth, 10, 0, nil),
		intSpec(0, 23, KindExplicitList, 0, 0, []int{1, 5, 13, 22}),
		intSpec(0, 6, KindExplicitNths, 0, 0, []int{0, 3, 6}),
		intSpec(0, 11, KindNth, 2, 0, nil),
		intSpec(0, 11, KindBackNth, 1, 0, nil),
		intSpec(0, 31, KindAll, 0, 0, nil),
	}
	for si, s := range specs {
		for x := s.Min().ToInt(); x <= s.Max().ToInt(); x++ {
			prev := x - 1
			if prev < s.Min().ToInt() {
				prev = s.Max().ToInt()
			}
			matches := s.Matches(ordinal.Int(x))
			next, ok := s.CyclicNext(ordinal.Int(prev))
			impliesMatch := ok && next.ToInt() == x
			if matches != impliesMatch {
				t.Errorf("spec %d: x=%d matches=%v but cyclic_next(prev=%d)=%v,%v", si, x, matches, prev, next, ok)
			}
		}
	}
}
