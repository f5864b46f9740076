package group

// Config - конфигурация группы в том виде, в котором её задаёт пользователь.
// Nil-указатель или пустое значение означает, что ключ не задан.
type Config struct {
	Identifier   string
	Records      []string
	Source       string
	Weights      map[string]float64
	SplitPattern string
	RecordCount  *int
	SetCount     *int
	WeightBudget *int
	MaxRecords   *int

	// Patterns допустимы только для дочерних групп.
	Patterns []string
	// Groups допустимы только на верхнем уровне.
	Groups []Config
}

func (c *Config) policyKeys() []string {
	var keys []string
	if c.RecordCount != nil {
		keys = append(keys, string(RecordCountMode))
	}
	if c.SetCount != nil {
		keys = append(keys, string(SetCountMode))
	}
	if c.WeightBudget != nil {
		keys = append(keys, string(WeightBudgetMode))
	}
	return keys
}

func (c *Config) policy() Policy {
	switch {
	case c.RecordCount != nil:
		return Policy{Kind: RecordCountMode, N: *c.RecordCount}
	case c.SetCount != nil:
		return Policy{Kind: SetCountMode, N: *c.SetCount}
	case c.WeightBudget != nil:
		return Policy{Kind: WeightBudgetMode, N: *c.WeightBudget}
	}
	return Policy{Kind: NoPolicy}
}

// IntPtr - вспомогательная функция для заполнения числовых ключей.
func IntPtr(v int) *int {
	return &v
}
