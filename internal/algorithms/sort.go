package algorithms

import "strings"

// Sort algorithm names.
const (
	SortBubble    = "bubble"
	SortInsertion = "insertion"
	SortSelection = "selection"
	SortQuick     = "quick"
)

// SortAlgorithms lists the supported sorts.
var SortAlgorithms = []string{SortBubble, SortInsertion, SortSelection, SortQuick}

type sorter struct {
	a    []int
	sink Sink
}

func (s *sorter) emit(typ string, data map[string]any) {
	if s.sink == nil {
		return
	}
	data["array"] = append([]int(nil), s.a...)
	emit(s.sink, typ, data)
}

func (s *sorter) swap(i, j int) {
	s.a[i], s.a[j] = s.a[j], s.a[i]
	s.emit("swap", map[string]any{"indices": []int{i, j}})
}

// Sort sorts a copy of values with the named algorithm, emitting a step for
// every comparison and move, and returns the sorted copy. Every step carries
// the working array as it stood after the step.
func Sort(kind string, values []int, sink Sink) ([]int, error) {
	s := &sorter{a: append([]int(nil), values...), sink: sink}

	switch strings.ToLower(kind) {
	case SortBubble:
		s.bubble()
	case SortInsertion:
		s.insertion()
	case SortSelection:
		s.selection()
	case SortQuick:
		s.quick(0, len(s.a)-1)
	default:
		return nil, unknownAlgorithm("sort", kind)
	}

	s.emit("sorted", map[string]any{})
	return s.a, nil
}

func (s *sorter) bubble() {
	n := len(s.a)
	for i := 0; i < n-1; i++ {
		for j := 0; j < n-i-1; j++ {
			s.emit("compare", map[string]any{"indices": []int{j, j + 1}})
			if s.a[j] > s.a[j+1] {
				s.swap(j, j+1)
			}
		}
	}
}

func (s *sorter) insertion() {
	for i := 1; i < len(s.a); i++ {
		key := s.a[i]
		s.emit("select", map[string]any{"index": i, "value": key})

		j := i - 1
		for j >= 0 && s.a[j] > key {
			s.a[j+1] = s.a[j]
			s.emit("shift", map[string]any{"from": j, "to": j + 1})
			j--
		}
		s.a[j+1] = key
		s.emit("insert", map[string]any{"index": j + 1, "value": key})
	}
}

func (s *sorter) selection() {
	n := len(s.a)
	for i := 0; i < n-1; i++ {
		minIdx := i
		s.emit("select", map[string]any{"index": i})
		for j := i + 1; j < n; j++ {
			s.emit("compare", map[string]any{"indices": []int{j, minIdx}})
			if s.a[j] < s.a[minIdx] {
				minIdx = j
				s.emit("update_min", map[string]any{"index": minIdx})
			}
		}
		if minIdx != i {
			s.swap(i, minIdx)
		}
	}
}

// quick sorts a[low..high] with a last-element pivot and Lomuto partition.
func (s *sorter) quick(low, high int) {
	if low >= high {
		return
	}
	p := s.partition(low, high)
	s.quick(low, p-1)
	s.quick(p+1, high)
}

func (s *sorter) partition(low, high int) int {
	pivot := s.a[high]
	s.emit("pivot", map[string]any{"index": high, "value": pivot})

	i := low - 1
	for j := low; j < high; j++ {
		s.emit("compare", map[string]any{"indices": []int{j, high}})
		if s.a[j] < pivot {
			i++
			if i != j {
				s.swap(i, j)
			}
		}
	}
	s.swap(i+1, high)
	return i + 1
}
