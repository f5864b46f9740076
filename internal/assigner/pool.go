package assigner

// pool - упорядоченный пул записей с удалением за O(1).
// Порядок оставшихся записей всегда совпадает с исходным.
type pool struct {
	records   []string
	claimed   []bool
	remaining int
}

func newPool(records []string) *pool {
	return &pool{
		records:   records,
		claimed:   make([]bool, len(records)),
		remaining: len(records),
	}
}

// claim забирает из пула все записи, для которых match вернул true.
func (p *pool) claim(match func(string) bool) []string {
	var out []string
	for i, r := range p.records {
		if p.claimed[i] || !match(r) {
			continue
		}
		p.claimed[i] = true
		p.remaining--
		out = append(out, r)
	}
	return out
}

// drain возвращает все оставшиеся записи и опустошает пул.
func (p *pool) drain() []string {
	return p.claim(func(string) bool { return true })
}
