package group

type Mode string

// Политики разбиения группы на наборы
const (
	NoPolicy         Mode = ""
	RecordCountMode  Mode = "record_count"  // Фиксированное число записей в наборе
	SetCountMode     Mode = "set_count"     // Фиксированное число наборов
	WeightBudgetMode Mode = "weight_budget" // Бюджет веса на набор
)

// Policy - активная политика разбиения группы.
// Значение N интерпретируется в зависимости от Kind:
// записи на набор, количество наборов или бюджет веса.
// MaxRecords имеет смысл только для WeightBudgetMode, 0 означает отсутствие лимита.
type Policy struct {
	Kind       Mode
	N          int
	MaxRecords int
}
