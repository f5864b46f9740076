package assigner

import (
	"errors"

	"record-splitter/internal/group"

	"go.uber.org/zap"
)

var ErrNoGroups = errors.New("no groups to assign")

// Assign распределяет входные записи по группам.
// Группы с явным списком записей получают его как есть и не берут записи из пула.
// Остальные дочерние группы по порядку объявления забирают из пула
// записи, совпавшие с их шаблонами; первая совпавшая группа выигрывает.
// Всё, что осталось в пуле, получает корневая группа groups[0].
// Явный список корневой группы, если задан, заменяет input.
func Assign(groups []*group.Group, input []string) error {
	if len(groups) == 0 {
		return ErrNoGroups
	}

	parent := groups[0]
	if explicit, ok := parent.Explicit(); ok {
		input = explicit
	}

	p := newPool(input)

	for _, g := range groups[1:] {
		records, ok := g.Explicit()
		if !ok {
			records = p.claim(g.Matches)
		}

		if err := g.Assign(records); err != nil {
			zap.L().Error(err.Error(), zap.String("group", g.ID()))
			return err
		}

		zap.L().Debug("group assigned",
			zap.String("group", g.ID()),
			zap.Int("records", len(records)),
			zap.Bool("explicit", ok),
		)
	}

	rest := p.drain()
	if err := parent.Assign(rest); err != nil {
		zap.L().Error(err.Error(), zap.String("group", parent.ID()))
		return err
	}

	zap.L().Debug("group assigned",
		zap.String("group", parent.ID()),
		zap.Int("records", len(rest)),
	)

	return nil
}
