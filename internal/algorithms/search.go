package algorithms

import (
	"math"
	"strings"
)

// Search algorithm names.
const (
	SearchLinear        = "linear"
	SearchBinary        = "binary"
	SearchJump          = "jump"
	SearchInterpolation = "interpolation"
)

// SearchAlgorithms lists the supported searches.
var SearchAlgorithms = []string{SearchLinear, SearchBinary, SearchJump, SearchInterpolation}

// SearchResult is the outcome of a search run. ElementsChecked counts probe
// steps only; the terminal found/not_found step is not a probe.
type SearchResult struct {
	Index           int    `json:"index"`
	Found           bool   `json:"found"`
	Steps           []Step `json:"steps"`
	ElementsChecked int    `json:"elementsChecked"`
}

type searcher struct {
	a      []int
	target int
	steps  []Step
	probes int
}

func (s *searcher) probe(typ string, data map[string]any) {
	s.probes++
	s.steps = append(s.steps, Step{Type: typ, Data: data})
}

func (s *searcher) done(index int) int {
	if index >= 0 {
		s.steps = append(s.steps, Step{Type: "found", Data: map[string]any{"index": index}})
	} else {
		s.steps = append(s.steps, Step{Type: "not_found", Data: map[string]any{"target": s.target}})
	}
	return index
}

// Search looks for target in values. Binary, jump and interpolation search
// assume values is sorted ascending.
func Search(kind string, values []int, target int) (SearchResult, error) {
	s := &searcher{a: values, target: target}

	var run func() int
	switch strings.ToLower(kind) {
	case SearchLinear:
		run = s.linear
	case SearchBinary:
		run = s.binary
	case SearchJump:
		run = s.jump
	case SearchInterpolation:
		run = s.interpolation
	default:
		return SearchResult{}, unknownAlgorithm("search", kind)
	}

	index := -1
	if len(values) == 0 {
		s.steps = append(s.steps, Step{Type: "empty", Data: map[string]any{"target": target}})
	} else {
		index = run()
	}

	return SearchResult{
		Index:           index,
		Found:           index >= 0,
		Steps:           s.steps,
		ElementsChecked: s.probes,
	}, nil
}

func (s *searcher) linear() int {
	for i, v := range s.a {
		s.probe("check", map[string]any{"index": i, "value": v})
		if v == s.target {
			return s.done(i)
		}
	}
	return s.done(-1)
}

func (s *searcher) binary() int {
	low, high := 0, len(s.a)-1
	for low <= high {
		mid := low + (high-low)/2
		s.probe("range", map[string]any{"left": low, "right": high, "mid": mid})
		switch {
		case s.a[mid] == s.target:
			return s.done(mid)
		case s.a[mid] < s.target:
			low = mid + 1
		default:
			high = mid - 1
		}
	}
	return s.done(-1)
}

func (s *searcher) jump() int {
	n := len(s.a)
	block := max(int(math.Sqrt(float64(n))), 1)

	prev, next := 0, block
	for s.a[min(next, n)-1] < s.target {
		s.probe("jump", map[string]any{"from": prev, "to": min(next, n) - 1})
		prev = next
		next += block
		if prev >= n {
			return s.done(-1)
		}
	}

	for i := prev; i < min(next, n); i++ {
		s.probe("check", map[string]any{"index": i, "value": s.a[i]})
		if s.a[i] == s.target {
			return s.done(i)
		}
		if s.a[i] > s.target {
			break
		}
	}
	return s.done(-1)
}

// interpolation probes where target would sit in a uniform distribution.
// When the bounds hold equal values the probe degenerates to a direct
// comparison at low.
func (s *searcher) interpolation() int {
	low, high := 0, len(s.a)-1
	for low <= high && s.target >= s.a[low] && s.target <= s.a[high] {
		if s.a[high] == s.a[low] {
			s.probe("interpolate", map[string]any{"position": low, "low": low, "high": high})
			if s.a[low] == s.target {
				return s.done(low)
			}
			return s.done(-1)
		}

		pos := low + ((high-low)*(s.target-s.a[low]))/(s.a[high]-s.a[low])
		s.probe("interpolate", map[string]any{"position": pos, "low": low, "high": high})
		switch {
		case s.a[pos] == s.target:
			return s.done(pos)
		case s.a[pos] < s.target:
			low = pos + 1
		default:
			high = pos - 1
		}
	}
	return s.done(-1)
}
