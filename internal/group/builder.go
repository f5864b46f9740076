package group

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"math"
	"os"
	"regexp"

	"record-splitter/internal/source"

	"go.uber.org/zap"
)

// Builder проверяет конфигурацию и строит список групп:
// сначала корневая группа, затем дочерние в порядке объявления.
type Builder struct {
	loadSource func(path string) ([]string, error)
}

// NewBuilder создаёт Builder, читающий source-файлы через source.ReadFile.
func NewBuilder() *Builder {
	return &Builder{
		loadSource: source.ReadFile,
	}
}

// Build проверяет конфигурацию целиком и возвращает группы.
// Любая ошибка конфигурации прерывает построение, частичный результат не возвращается.
func (b *Builder) Build(cfg Config) ([]*Group, error) {
	groups, err := b.build(cfg)
	if err != nil {
		zap.L().Error(err.Error())
		return nil, err
	}
	return groups, nil
}

// TakeInput извлекает из cfg явный список записей корневой группы
// (records или source) и убирает его из конфигурации, чтобы записи
// прошли через фильтр исключений как обычный входной поток.
// Второе значение false, если корневая группа явного списка не задаёт.
func (b *Builder) TakeInput(cfg *Config) ([]string, bool, error) {
	id := cfg.Identifier
	if id == "" {
		id = defaultIdentifier
	}

	var (
		records []string
		err     error
	)

	switch {
	case cfg.Records != nil && cfg.Source != "":
		err = configErr(id, "source", ErrConflictingSource, "")
	case cfg.Records != nil:
		records = cfg.Records
	case cfg.Source != "":
		records, err = b.readSource(id, cfg.Source)
	default:
		return nil, false, nil
	}
	if err != nil {
		zap.L().Error(err.Error())
		return nil, false, err
	}

	cfg.Records, cfg.Source = nil, ""
	return records, true, nil
}

func (b *Builder) build(cfg Config) ([]*Group, error) {
	parentID := cfg.Identifier
	if parentID == "" {
		parentID = defaultIdentifier
	}

	if cfg.Patterns != nil {
		return nil, configErr(parentID, "patterns", ErrUnknownKey, "only child groups accept membership patterns")
	}

	parent, err := b.newGroup(parentID, cfg)
	if err != nil {
		return nil, err
	}
	parent.parent = true
	parent.policy = cfg.policy()
	if parent.HasPolicy(WeightBudgetMode) && cfg.MaxRecords != nil {
		parent.policy.MaxRecords = *cfg.MaxRecords
	}
	parent.weights = cfg.Weights

	groups := make([]*Group, 0, len(cfg.Groups)+1)
	groups = append(groups, parent)

	seen := map[string]struct{}{parentID: {}}

	for i, child := range cfg.Groups {
		id := child.Identifier
		if id == "" {
			id = fmt.Sprintf("%s%d", parentID, i+1)
		}

		if _, ok := seen[id]; ok {
			return nil, configErr(id, "identifier", ErrDuplicateGroup, "")
		}
		seen[id] = struct{}{}

		if child.Groups != nil {
			return nil, configErr(id, "groups", ErrUnknownKey, "groups cannot be nested")
		}
		if child.Records == nil && child.Source == "" && len(child.Patterns) == 0 {
			return nil, configErr(id, "", ErrNoRecordSource, "")
		}

		g, err := b.newGroup(id, child)
		if err != nil {
			return nil, err
		}

		for _, p := range child.Patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, configErr(id, "patterns", ErrInvalidPattern, err.Error())
			}
			g.patterns = append(g.patterns, re)
		}

		inherit(g, parent, &cfg, &child)
		groups = append(groups, g)
	}

	return groups, nil
}

// newGroup проверяет общие для корневой и дочерних групп ключи
// и заполняет собственные (не наследуемые) поля группы.
func (b *Builder) newGroup(id string, cfg Config) (*Group, error) {
	if keys := cfg.policyKeys(); len(keys) > 1 {
		return nil, configErr(id, keys[1], ErrConflictingPolicy, fmt.Sprintf("%v", keys))
	}

	numbers := []struct {
		key   string
		value *int
	}{
		{string(RecordCountMode), cfg.RecordCount},
		{string(SetCountMode), cfg.SetCount},
		{string(WeightBudgetMode), cfg.WeightBudget},
		{"max_records", cfg.MaxRecords},
	}
	for _, n := range numbers {
		if n.value != nil && *n.value <= 0 {
			return nil, configErr(id, n.key, ErrInvalidNumber, fmt.Sprintf("got %d", *n.value))
		}
	}

	for record, w := range cfg.Weights {
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			return nil, configErr(id, "weights", ErrInvalidWeights, fmt.Sprintf("%q: %v", record, w))
		}
	}

	g := &Group{id: id}

	if cfg.SplitPattern != "" {
		re, err := regexp.Compile(cfg.SplitPattern)
		if err != nil {
			return nil, configErr(id, "split_pattern", ErrInvalidPattern, err.Error())
		}
		g.splitPattern = re
	}

	switch {
	case cfg.Records != nil && cfg.Source != "":
		return nil, configErr(id, "source", ErrConflictingSource, "")
	case cfg.Records != nil:
		g.explicit = cfg.Records
		g.hasExplicit = true
	case cfg.Source != "":
		records, err := b.readSource(id, cfg.Source)
		if err != nil {
			return nil, err
		}
		g.explicit = records
		g.hasExplicit = true
	}

	return g, nil
}

func (b *Builder) readSource(id, path string) ([]string, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, configErr(id, "source", ErrSourceNotFound, path)
		}
		return nil, fmt.Errorf("group %q: stat source: %w", id, err)
	}

	records, err := b.loadSource(path)
	if err != nil {
		return nil, fmt.Errorf("group %q: read source: %w", id, err)
	}
	return records, nil
}

// inherit переносит в дочернюю группу незаданные ключи родителя.
// Политика наследуется целиком, если дочерняя группа не задала свою;
// таблица весов сливается с приоритетом значений дочерней группы.
func inherit(g, parent *Group, parentCfg, childCfg *Config) {
	if childCfg.SplitPattern == "" {
		g.splitPattern = parent.splitPattern
	}

	if len(childCfg.policyKeys()) == 0 {
		g.policy = Policy{Kind: parent.policy.Kind, N: parent.policy.N}
	} else {
		g.policy = childCfg.policy()
	}

	if g.HasPolicy(WeightBudgetMode) {
		switch {
		case childCfg.MaxRecords != nil:
			g.policy.MaxRecords = *childCfg.MaxRecords
		case parentCfg.MaxRecords != nil:
			g.policy.MaxRecords = *parentCfg.MaxRecords
		}
	}

	switch {
	case childCfg.Weights != nil && parent.weights != nil:
		merged := maps.Clone(parent.weights)
		maps.Copy(merged, childCfg.Weights)
		g.weights = merged
	case childCfg.Weights != nil:
		g.weights = childCfg.Weights
	default:
		g.weights = parent.weights
	}
}
