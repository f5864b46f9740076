package suffix

import "iter"

const (
	alphabetSize = 26
	firstLetter  = 'a'
	lastLetter   = 'z'
)

// Allocator выдаёт алфавитные суффиксы в порядке колонок электронной таблицы:
// a, b, …, z, aa, ab, … Начальная длина выбирается так, чтобы expected
// имён поместились в неё без роста строки.
type Allocator struct {
	length int
	cur    []byte
}

// NewAllocator создаёт Allocator для ожидаемого количества имён.
// Значения expected <= 1 дают начальную длину 1.
func NewAllocator(expected int) *Allocator {
	a := &Allocator{length: Length(expected)}
	a.Reset()
	return a
}

// Length возвращает минимальную длину L >= 1, для которой 26^L >= expected.
func Length(expected int) int {
	length := 1
	capacity := alphabetSize
	for capacity < expected {
		capacity *= alphabetSize
		length++
	}
	return length
}

// Next возвращает очередной суффикс и сдвигает счётчик.
func (a *Allocator) Next() string {
	s := string(a.cur)
	a.cur = increment(a.cur)
	return s
}

// Reset возвращает счётчик к первому имени начальной длины.
func (a *Allocator) Reset() {
	a.cur = make([]byte, a.length)
	for i := range a.cur {
		a.cur[i] = firstLetter
	}
}

// Take возвращает первые n суффиксов для ожидаемого количества expected.
func Take(expected, n int) []string {
	out := make([]string, 0, max(n, 0))
	for s := range Seq(expected) {
		if len(out) >= n {
			break
		}
		out = append(out, s)
	}
	return out
}

// Seq возвращает бесконечную детерминированную последовательность суффиксов.
// Каждый новый проход начинается с первого имени.
func Seq(expected int) iter.Seq[string] {
	return func(yield func(string) bool) {
		a := NewAllocator(expected)
		for {
			if !yield(a.Next()) {
				return
			}
		}
	}
}

// increment прибавляет единицу к строке как к числу в системе с основанием 26.
// Перенос из старшего разряда удлиняет строку.
func increment(b []byte) []byte {
	next := make([]byte, len(b))
	copy(next, b)

	for i := len(next) - 1; i >= 0; i-- {
		if next[i] != lastLetter {
			next[i]++
			return next
		}
		next[i] = firstLetter
	}

	return append([]byte{firstLetter}, next...)
}
