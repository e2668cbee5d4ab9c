package randomizer

// Randomizer перемешивает пул вызовов после выбора плана.
type Randomizer interface {
	Shuffle(n int, swap func(i, j int))
}
