package splitter

import (
	"record-splitter/internal/assigner"
	"record-splitter/internal/group"
	"record-splitter/internal/partitioner"

	"go.uber.org/zap"
)

// Observer получает статистику прогона, например для метрик.
type Observer interface {
	ObserveGroup(group string, records int)
	ObserveResult(res *partitioner.Result)
}

// Splitter связывает построение групп, распределение записей и разбиение на наборы.
// Повторный вызов Split с теми же входными данными даёт тот же результат.
type Splitter struct {
	builder     *group.Builder
	partitioner *partitioner.Partitioner
	observer    Observer
}

func NewSplitter() *Splitter {
	return &Splitter{
		builder:     group.NewBuilder(),
		partitioner: partitioner.NewPartitioner(),
	}
}

func (s *Splitter) SetBuilder(b *group.Builder) *Splitter {
	s.builder = b
	return s
}

func (s *Splitter) SetObserver(o Observer) *Splitter {
	s.observer = o
	return s
}

// Split строит группы по cfg, распределяет по ним records и возвращает наборы.
func (s *Splitter) Split(cfg group.Config, records []string) (*partitioner.Result, error) {
	groups, err := s.builder.Build(cfg)
	if err != nil {
		return nil, err
	}

	if err := assigner.Assign(groups, records); err != nil {
		zap.L().Error(err.Error())
		return nil, err
	}

	if s.observer != nil {
		for _, g := range groups {
			s.observer.ObserveGroup(g.ID(), len(g.Records()))
		}
	}

	res, err := s.partitioner.Partition(groups)
	if err != nil {
		return nil, err
	}

	if s.observer != nil {
		s.observer.ObserveResult(res)
	}

	zap.L().Info("records split",
		zap.Int("groups", len(groups)),
		zap.Int("records", res.RecordCount()),
		zap.Int("sets", res.Len()),
	)

	return res, nil
}
