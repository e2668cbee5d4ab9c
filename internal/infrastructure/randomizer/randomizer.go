package randomizer

import (
	"math/rand"
	"sync"
	"time"
)

type randomizerImpl struct {
	mu  sync.Mutex // Один генератор разделяют все классы
	rnd *rand.Rand
}

// New создаёт потокобезопасный randomizer на основе math/rand.
// Нулевой seed означает seed от системных часов; ненулевой даёт воспроизводимый порядок пула.
func New(seed int64) Randomizer {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &randomizerImpl{
		rnd: rand.New(rand.NewSource(seed)), // #nosec G404
	}
}

// Shuffle перемешивает элементы алгоритмом Фишера-Йетса.
func (r *randomizerImpl) Shuffle(n int, swap func(i, j int)) {
	if n <= 1 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rnd.Shuffle(n, swap)
}

// ShuffleInts перемешивает срез на месте; кратность элементов не меняется.
func ShuffleInts(r Randomizer, values []int) {
	r.Shuffle(len(values), func(i, j int) {
		values[i], values[j] = values[j], values[i]
	})
}
