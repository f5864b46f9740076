package partitioner

import (
	"fmt"

	"record-splitter/internal/group"
)

// Set - итоговый именованный набор записей.
type Set struct {
	ID      string
	Group   string
	Mode    group.Mode
	Records []string
	Weight  float64
}

// Result хранит наборы в порядке генерации и индекс по идентификатору.
type Result struct {
	Sets  []Set
	index map[string]int
}

func newResult() *Result {
	return &Result{index: make(map[string]int)}
}

func (r *Result) add(set Set) error {
	if prev, ok := r.index[set.ID]; ok {
		return fmt.Errorf("%w: %q produced by groups %q and %q",
			ErrIdentifierCollision, set.ID, r.Sets[prev].Group, set.Group)
	}
	r.index[set.ID] = len(r.Sets)
	r.Sets = append(r.Sets, set)
	return nil
}

func (r *Result) Len() int {
	return len(r.Sets)
}

// Map возвращает отображение идентификатор -> записи.
func (r *Result) Map() map[string][]string {
	m := make(map[string][]string, len(r.Sets))
	for _, s := range r.Sets {
		m[s.ID] = s.Records
	}
	return m
}

// RecordCount возвращает суммарное количество записей во всех наборах.
func (r *Result) RecordCount() int {
	n := 0
	for _, s := range r.Sets {
		n += len(s.Records)
	}
	return n
}

// subgroup - часть записей группы, выделенная по split-шаблону.
type subgroup struct {
	id      string
	records []string
	weight  float64
}

// bin - набор, накопленный упаковкой по весу.
type bin struct {
	records []string
	weight  float64
}
