package exclude

import (
	"fmt"
	"regexp"

	"record-splitter/internal/source"

	"go.uber.org/zap"
)

// Spec описывает исключаемые записи: явный список, шаблоны и файл со списком.
type Spec struct {
	Records  []string
	Patterns []string
	File     string
}

func (s Spec) IsEmpty() bool {
	return len(s.Records) == 0 && len(s.Patterns) == 0 && s.File == ""
}

// Filter - скомпилированная спецификация исключений.
type Filter struct {
	records  map[string]struct{}
	patterns []*regexp.Regexp
}

// NewFilter компилирует шаблоны и читает файл исключений.
func NewFilter(spec Spec) (*Filter, error) {
	f := &Filter{records: make(map[string]struct{}, len(spec.Records))}

	for _, r := range spec.Records {
		f.records[r] = struct{}{}
	}

	if spec.File != "" {
		records, err := source.ReadFile(spec.File)
		if err != nil {
			return nil, fmt.Errorf("exclude file: %w", err)
		}
		for _, r := range records {
			f.records[r] = struct{}{}
		}
	}

	for _, p := range spec.Patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			zap.L().Error(err.Error(), zap.String("pattern", p))
			return nil, fmt.Errorf("exclude pattern %q: %w", p, err)
		}
		f.patterns = append(f.patterns, re)
	}

	return f, nil
}

// Excluded проверяет запись сначала по явному списку, затем по шаблонам.
func (f *Filter) Excluded(record string) bool {
	if _, ok := f.records[record]; ok {
		return true
	}
	for _, re := range f.patterns {
		if re.MatchString(record) {
			return true
		}
	}
	return false
}

// Apply разделяет записи на оставшиеся и исключённые, сохраняя порядок.
func (f *Filter) Apply(records []string) (kept, excluded []string) {
	kept = make([]string, 0, len(records))
	for _, r := range records {
		if f.Excluded(r) {
			excluded = append(excluded, r)
			continue
		}
		kept = append(kept, r)
	}
	return kept, excluded
}

// Apply - сокращение для NewFilter(spec).Apply(records).
func Apply(records []string, spec Spec) (kept, excluded []string, err error) {
	if spec.IsEmpty() {
		return records, nil, nil
	}

	f, err := NewFilter(spec)
	if err != nil {
		return nil, nil, err
	}

	kept, excluded = f.Apply(records)
	return kept, excluded, nil
}
