package partitioner

import (
	"fmt"
	"slices"
	"strconv"

	"record-splitter/internal/group"
	"record-splitter/internal/suffix"

	"go.uber.org/zap"
)

// Partitioner превращает заполненные группы в именованные наборы
// в соответствии с политикой каждой группы.
type Partitioner struct{}

func NewPartitioner() *Partitioner {
	return &Partitioner{}
}

// Partition обходит группы в порядке построения и собирает наборы всех групп.
// Совпадение идентификаторов двух наборов возвращает ErrIdentifierCollision.
func (p *Partitioner) Partition(groups []*group.Group) (*Result, error) {
	result := newResult()

	for _, g := range groups {
		sets, err := p.partitionGroup(g)
		if err != nil {
			zap.L().Error(err.Error(), zap.String("group", g.ID()))
			return nil, err
		}

		for _, s := range sets {
			if err := result.add(s); err != nil {
				zap.L().Error(err.Error())
				return nil, err
			}
		}

		zap.L().Debug("group partitioned",
			zap.String("group", g.ID()),
			zap.String("mode", string(g.Policy().Kind)),
			zap.Int("records", len(g.Records())),
			zap.Int("sets", len(sets)),
		)
	}

	return result, nil
}

func (p *Partitioner) partitionGroup(g *group.Group) ([]Set, error) {
	var sets []Set

	for _, sub := range split(g) {
		subSets, err := p.applyPolicy(g, sub)
		if err != nil {
			return nil, err
		}
		sets = append(sets, subSets...)
	}

	return sets, nil
}

// applyPolicy применяет политику группы к одной подгруппе.
func (p *Partitioner) applyPolicy(g *group.Group, sub subgroup) ([]Set, error) {
	policy := g.Policy()

	switch policy.Kind {
	case group.NoPolicy:
		return []Set{{
			ID:      sub.id,
			Group:   g.ID(),
			Mode:    policy.Kind,
			Records: sub.records,
		}}, nil

	case group.RecordCountMode:
		if policy.N <= 0 {
			return nil, ErrInvalidCount
		}
		return chunkSets(g.ID(), sub, policy.Kind, policy.N), nil

	case group.SetCountMode:
		if policy.N <= 0 {
			return nil, ErrInvalidCount
		}
		size := (len(sub.records) + policy.N - 1) / policy.N
		return chunkSets(g.ID(), sub, policy.Kind, size), nil

	case group.WeightBudgetMode:
		if policy.N <= 0 || policy.MaxRecords < 0 {
			return nil, ErrInvalidCount
		}
		return weightSets(g, sub, policy), nil

	default:
		zap.L().Error("invalid mode", zap.String("mode", string(policy.Kind)))
	}

	return nil, fmt.Errorf("%w: %q", ErrInvalidMode, policy.Kind)
}

// split делит записи группы на подгруппы по первой захваченной подстроке
// split-шаблона. Записи без совпадения остаются под идентификатором группы.
// Подгруппы упорядочены по первому появлению.
func split(g *group.Group) []subgroup {
	records := g.Records()
	if len(records) == 0 {
		return nil
	}

	re := g.SplitPattern()
	if re == nil {
		return []subgroup{{
			id:      g.ID(),
			records: records,
			weight:  subgroupWeight(g, records),
		}}
	}

	var subs []subgroup
	index := make(map[string]int)

	for _, r := range records {
		id := g.ID()
		if capture, ok := captureOf(re.FindStringSubmatch(r)); ok {
			id = g.ID() + "." + capture
		}

		i, ok := index[id]
		if !ok {
			i = len(subs)
			index[id] = i
			subs = append(subs, subgroup{id: id})
		}
		subs[i].records = append(subs[i].records, r)
	}

	for i := range subs {
		subs[i].weight = subgroupWeight(g, subs[i].records)
	}

	return subs
}

// captureOf возвращает первую захваченную подстроку совпадения.
// Для шаблона без групп захвата используется всё совпадение.
func captureOf(match []string) (string, bool) {
	switch {
	case match == nil:
		return "", false
	case len(match) == 1:
		return match[0], match[0] != ""
	default:
		return match[1], match[1] != ""
	}
}

func subgroupWeight(g *group.Group, records []string) float64 {
	if !g.HasPolicy(group.WeightBudgetMode) {
		return 0
	}
	return g.TotalWeight(records)
}

// chunkSets режет записи подгруппы подряд на куски по size записей.
// Последний кусок может быть короче.
func chunkSets(groupID string, sub subgroup, mode group.Mode, size int) []Set {
	if len(sub.records) == 0 || size <= 0 {
		return nil
	}

	chunks := slices.Collect(slices.Chunk(sub.records, size))
	names := suffix.NewAllocator(len(chunks))

	sets := make([]Set, 0, len(chunks))
	for _, c := range chunks {
		sets = append(sets, Set{
			ID:      sub.id + "." + names.Next(),
			Group:   groupID,
			Mode:    mode,
			Records: c,
		})
	}

	return sets
}

// weightSets упаковывает записи подгруппы по бюджету веса и называет
// полученные наборы в порядке убывания веса.
func weightSets(g *group.Group, sub subgroup, policy group.Policy) []Set {
	bins := pack(sub.records, g.Weight, float64(policy.N), policy.MaxRecords)
	if len(bins) == 0 {
		return nil
	}

	slices.SortStableFunc(bins, func(a, b bin) int {
		switch {
		case a.weight > b.weight:
			return -1
		case a.weight < b.weight:
			return 1
		}
		return 0
	})

	zap.L().Debug("weight packing",
		zap.String("subgroup", sub.id),
		zap.Float64("total_weight", sub.weight),
		zap.Int("sets", len(bins)),
	)

	names := suffix.NewAllocator(len(bins))

	sets := make([]Set, 0, len(bins))
	for _, b := range bins {
		sets = append(sets, Set{
			ID:      sub.id + "." + names.Next() + "." + formatWeight(b.weight),
			Group:   g.ID(),
			Mode:    policy.Kind,
			Records: b.records,
			Weight:  b.weight,
		})
	}

	return sets
}

// pack - жадная упаковка слева направо.
// Запись с весом >= budget сразу выделяется в отдельный набор.
// Текущий набор закрывается, когда в нём maxRecords записей
// или когда следующая запись превысила бы бюджет.
// maxRecords == 0 означает отсутствие лимита.
func pack(records []string, weight func(string) float64, budget float64, maxRecords int) []bin {
	var (
		bins []bin
		cur  bin
	)

	closeCur := func() {
		if len(cur.records) > 0 {
			bins = append(bins, cur)
		}
		cur = bin{}
	}

	for _, r := range records {
		w := weight(r)

		if w >= budget {
			bins = append(bins, bin{records: []string{r}, weight: w})
			continue
		}

		if cur.weight+w > budget {
			closeCur()
		}

		cur.records = append(cur.records, r)
		cur.weight += w

		if maxRecords > 0 && len(cur.records) >= maxRecords {
			closeCur()
		}
	}
	closeCur()

	return bins
}

func formatWeight(w float64) string {
	return strconv.FormatFloat(w, 'f', -1, 64)
}
