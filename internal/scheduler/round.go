package scheduler

import (
	"fmt"

	"fair-draw-service/internal/domain"
)

// Round управляет расходом пула вызовов в рамках одного раунда.
//
// Политика выбора: пул проходится по порядку (после подготовки он перемешан),
// и возвращается первая ещё не израсходованная запись, ученик которой не отсутствует.
// Запись слота s считается израсходованной, если она входит в первые used[s] вхождений s в пуле.
// Случайность, таким образом, целиком задаётся перемешиванием пула.
type Round struct {
	n         int
	pool      []int
	planned   []int
	used      []int
	usedCount []int
}

// NewRound создаёт раунд поверх пула для класса из n учеников.
func NewRound(pool []int, n int) (*Round, error) {
	planned, err := Counts(pool, n)
	if err != nil {
		return nil, err
	}
	return &Round{
		n:         n,
		pool:      append([]int(nil), pool...),
		planned:   planned,
		used:      []int{},
		usedCount: make([]int, n),
	}, nil
}

// Size возвращает размер класса.
func (r *Round) Size() int {
	return r.n
}

// Pool возвращает копию пула в порядке расхода.
func (r *Round) Pool() []int {
	return append([]int(nil), r.pool...)
}

// Used возвращает копию уже вызванных слотов в порядке вызова.
func (r *Round) Used() []int {
	return append([]int(nil), r.used...)
}

// Planned возвращает число вхождений каждого слота в пул.
func (r *Round) Planned() []int {
	return append([]int(nil), r.planned...)
}

// Called возвращает, сколько раз каждый слот уже был вызван.
func (r *Round) Called() []int {
	return append([]int(nil), r.usedCount...)
}

// Draw выбирает следующий слот и добавляет его в used.
// Возвращает domain.ErrExhaustedPool, если доступных слотов не осталось.
func (r *Round) Draw(absent map[int]struct{}) (int, error) {
	seen := make([]int, r.n)
	for _, slot := range r.pool {
		seen[slot]++
		if seen[slot] <= r.usedCount[slot] {
			continue
		}
		if _, skip := absent[slot]; skip {
			continue
		}
		r.used = append(r.used, slot)
		r.usedCount[slot]++
		return slot, nil
	}
	return 0, domain.ErrExhaustedPool
}

// Undo откатывает последний вызов. Используется, если вызов не удалось сохранить.
func (r *Round) Undo() (int, bool) {
	if len(r.used) == 0 {
		return 0, false
	}
	last := r.used[len(r.used)-1]
	r.used = r.used[:len(r.used)-1]
	r.usedCount[last]--
	return last, true
}

// Remaining возвращает число вызовов, которые ещё можно сделать без учёта отсутствующих.
func (r *Round) Remaining(absent map[int]struct{}) int {
	var total int
	for slot, planned := range r.planned {
		if _, skip := absent[slot]; skip {
			continue
		}
		if left := planned - r.usedCount[slot]; left > 0 {
			total += left
		}
	}
	return total
}

// Reset очищает used, сохраняя пул.
func (r *Round) Reset() {
	r.used = []int{}
	clear(r.usedCount)
}

// Restore восстанавливает used из истории. Слоты проверяются до изменения состояния:
// слот вне [0, n) или вызванный чаще, чем он встречается в пуле, отклоняется.
func (r *Round) Restore(used []int) error {
	counts := make([]int, r.n)
	for _, slot := range used {
		if slot < 0 || slot >= r.n {
			return fmt.Errorf("%w: slot %d out of range [0, %d)", domain.ErrInvalidParameter, slot, r.n)
		}
		counts[slot]++
		if counts[slot] > r.planned[slot] {
			return fmt.Errorf("%w: slot %d called %d times, planned %d", domain.ErrInvalidParameter, slot, counts[slot], r.planned[slot])
		}
	}
	r.Reset()
	for _, slot := range used {
		r.used = append(r.used, slot)
		r.usedCount[slot]++
	}
	return nil
}

// State возвращает состояние раунда.
func (r *Round) State() domain.RoundState {
	switch {
	case r.Remaining(nil) == 0:
		return domain.StateExhausted
	case len(r.used) == 0:
		return domain.StatePlanSelected
	default:
		return domain.StateDrawing
	}
}
