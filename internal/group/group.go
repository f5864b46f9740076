package group

import "regexp"

const defaultIdentifier = "set"

// Group - именованная корзина записей со своей политикой разбиения.
// Создаётся Builder, один раз получает записи через Assign
// и далее используется только на чтение.
type Group struct {
	id           string
	parent       bool
	patterns     []*regexp.Regexp
	splitPattern *regexp.Regexp
	policy       Policy
	weights      map[string]float64

	explicit    []string
	hasExplicit bool

	records  []string
	assigned bool
}

func (g *Group) ID() string {
	return g.id
}

// IsParent сообщает, является ли группа корневой.
func (g *Group) IsParent() bool {
	return g.parent
}

func (g *Group) Policy() Policy {
	return g.policy
}

// HasPolicy проверяет, что у группы активна политика указанного вида.
func (g *Group) HasPolicy(kind Mode) bool {
	return g.policy.Kind == kind
}

func (g *Group) SplitPattern() *regexp.Regexp {
	return g.splitPattern
}

// Explicit возвращает явно заданный список записей (из конфигурации или source-файла).
// Второе значение false, если группа набирает записи из общего пула.
func (g *Group) Explicit() ([]string, bool) {
	return g.explicit, g.hasExplicit
}

// Matches проверяет запись на совпадение хотя бы с одним шаблоном членства.
func (g *Group) Matches(record string) bool {
	for _, re := range g.patterns {
		if re.MatchString(record) {
			return true
		}
	}
	return false
}

// Weight возвращает вес записи. Отсутствующая в таблице запись весит 0.
func (g *Group) Weight(record string) float64 {
	return g.weights[record]
}

// TotalWeight суммирует веса переданных записей по таблице группы.
func (g *Group) TotalWeight(records []string) float64 {
	var total float64
	for _, r := range records {
		total += g.weights[r]
	}
	return total
}

func (g *Group) Records() []string {
	return g.records
}

// Assign прикрепляет записи к группе. Повторный вызов возвращает ErrAlreadyAssigned.
func (g *Group) Assign(records []string) error {
	if g.assigned {
		return ErrAlreadyAssigned
	}
	g.records = records
	g.assigned = true
	return nil
}
