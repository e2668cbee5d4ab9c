package scheduler

import (
	"fmt"
	"math"

	"fair-draw-service/internal/domain"
	"fair-draw-service/internal/generator"
)

const (
	// DefaultSeedStep шаг между кандидатами seed.
	DefaultSeedStep = 100
	// DefaultSeedMax последний (включительно) кандидат seed.
	DefaultSeedMax = 1_000_000
	// MaxPoolSize верхняя граница k*l: буфер потока выделяется целиком.
	MaxPoolSize = 1_000_000
)

// Plan выбранная комбинация генератора и seed вместе с пулом вызовов.
type Plan struct {
	Kind     generator.Kind
	Seed     uint64
	Variance float64
	// Pool последовательность индексов учеников в [0, n) длиной k*l.
	Pool []int
}

// StdDev возвращает стандартное отклонение числа вызовов на ученика.
func (p Plan) StdDev() float64 {
	return math.Sqrt(p.Variance)
}

// Summary описывает план для класса размером n: ожидаемое число вызовов и диапазон ±σ.
func (p Plan) Summary(className string, n int) domain.PlanSummary {
	expected := float64(len(p.Pool)) / float64(n)
	std := p.StdDev()
	return domain.PlanSummary{
		ClassName: className,
		Generator: p.Kind.String(),
		Seed:      p.Seed,
		Variance:  p.Variance,
		StdDev:    std,
		Expected:  expected,
		RangeLow:  expected - std,
		RangeHigh: expected + std,
		PoolSize:  len(p.Pool),
	}
}

// Searcher перебирает генераторы и seed в поисках самого равномерного пула.
type Searcher struct {
	SeedStep uint64
	SeedMax  uint64
}

// NewSearcher создаёт поисковик; нулевые значения заменяются значениями по умолчанию.
func NewSearcher(seedStep, seedMax uint64) Searcher {
	if seedStep == 0 {
		seedStep = DefaultSeedStep
	}
	if seedMax == 0 {
		seedMax = DefaultSeedMax
	}
	return Searcher{SeedStep: seedStep, SeedMax: seedMax}
}

// SelectPlan выполняет поиск на полном наборе кандидатов {0, 100, ..., 1_000_000}.
func SelectPlan(k, l, n int) (Plan, error) {
	return NewSearcher(DefaultSeedStep, DefaultSeedMax).Select(k, l, n)
}

// Seeds возвращает кандидатов seed в порядке возрастания.
func (s Searcher) Seeds() []uint64 {
	step := s.SeedStep
	if step == 0 {
		step = DefaultSeedStep
	}
	seeds := make([]uint64, 0, s.SeedMax/step+1)
	for seed := uint64(0); seed <= s.SeedMax; seed += step {
		seeds = append(seeds, seed)
	}
	return seeds
}

// Select находит кандидата с минимальной дисперсией числа вызовов на ученика.
// При равенстве побеждает первый найденный: генераторы в порядке generator.Kinds(), seed по возрастанию.
func (s Searcher) Select(k, l, n int) (Plan, error) {
	params := domain.Params{K: k, L: l, N: n}
	if err := params.Validate(); err != nil {
		return Plan{}, err
	}
	count := params.Count()
	if count > MaxPoolSize {
		return Plan{}, fmt.Errorf("%w: k*l=%d exceeds %d", domain.ErrInvalidParameter, count, MaxPoolSize)
	}

	raw := make([]uint64, count)
	counts := make([]int, n)
	seeds := s.Seeds()
	best := Plan{Variance: math.Inf(1)}
	found := false

	for _, kind := range generator.Kinds() {
		for _, seed := range seeds {
			generator.Fill(kind, seed, raw)
			variance := rawVariance(raw, counts)
			if !found || variance < best.Variance {
				best = Plan{Kind: kind, Seed: seed, Variance: variance}
				found = true
			}
		}
	}

	// Пул материализуем один раз для победителя
	generator.Fill(best.Kind, best.Seed, raw)
	best.Pool = reduce(raw, n)
	return best, nil
}

// rawVariance считает дисперсию для сырого потока, переиспользуя буфер counts.
func rawVariance(raw []uint64, counts []int) float64 {
	clear(counts)
	n := uint64(len(counts))
	for _, v := range raw {
		counts[v%n]++
	}
	return countsVariance(counts, len(raw))
}

func countsVariance(counts []int, total int) float64 {
	expected := float64(total) / float64(len(counts))
	var sum float64
	for _, observed := range counts {
		d := float64(observed) - expected
		sum += d * d
	}
	return sum / float64(len(counts))
}

func reduce(raw []uint64, n int) []int {
	pool := make([]int, len(raw))
	for i, v := range raw {
		pool[i] = int(v % uint64(n))
	}
	return pool
}

// Counts возвращает число вхождений каждого ученика в пул.
func Counts(pool []int, n int) ([]int, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: n=%d must be positive", domain.ErrInvalidParameter, n)
	}
	counts := make([]int, n)
	for _, slot := range pool {
		if slot < 0 || slot >= n {
			return nil, fmt.Errorf("%w: slot %d out of range [0, %d)", domain.ErrInvalidParameter, slot, n)
		}
		counts[slot]++
	}
	return counts, nil
}

// Variance считает дисперсию пула относительно равномерного ожидания len(pool)/n.
func Variance(pool []int, n int) (float64, error) {
	counts, err := Counts(pool, n)
	if err != nil {
		return 0, err
	}
	return countsVariance(counts, len(pool)), nil
}
