package generator

import (
	"fmt"
	"math/rand"
)

// Kind определяет алгоритм генерации псевдослучайной последовательности.
type Kind int

const (
	Xorshift Kind = iota
	Uniform
	MiddleSquare
	LCG
)

const (
	mask32 = 0xFFFFFFFF

	lcgMultiplier = 1664525
	lcgIncrement  = 1013904223

	// uniformBound верхняя (невключительная) граница для Uniform.
	uniformBound = 1_000_000
)

var kindNames = map[Kind]string{
	Xorshift:     "Xorshift",
	Uniform:      "Uniform",
	MiddleSquare: "MiddleSquare",
	LCG:          "LCG",
}

// Kinds возвращает генераторы в порядке перебора при поиске плана.
func Kinds() []Kind {
	return []Kind{Xorshift, Uniform, MiddleSquare, LCG}
}

// String возвращает стабильное имя генератора, используемое в API и CSV.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind преобразует имя генератора обратно в Kind.
func ParseKind(name string) (Kind, error) {
	for kind, kindName := range kindNames {
		if kindName == name {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("unknown generator kind %q", name)
}

// Generate возвращает ровно count значений генератора kind для seed.
// Результат детерминирован по (kind, seed, count).
func Generate(kind Kind, seed uint64, count int) []uint64 {
	if count <= 0 {
		return []uint64{}
	}
	dst := make([]uint64, count)
	Fill(kind, seed, dst)
	return dst
}

// Fill заполняет dst значениями генератора без дополнительных аллокаций.
// Используется в горячем цикле поиска плана.
func Fill(kind Kind, seed uint64, dst []uint64) {
	switch kind {
	case Xorshift:
		fillXorshift(seed, dst)
	case Uniform:
		fillUniform(seed, dst)
	case MiddleSquare:
		fillMiddleSquare(seed, dst)
	case LCG:
		fillLCG(seed, dst)
	default:
		panic(fmt.Sprintf("generator: unsupported kind %d", int(kind)))
	}
}

// fillXorshift реализует 32-битный xorshift (13, 17, 5).
func fillXorshift(seed uint64, dst []uint64) {
	x := seed & mask32
	// Нулевое состояние xorshift не покидает никогда
	if x == 0 {
		x = 1
	}
	for i := range dst {
		x ^= (x << 13) & mask32
		x ^= x >> 17
		x ^= (x << 5) & mask32
		dst[i] = x
	}
}

// fillLCG реализует линейный конгруэнтный генератор по модулю 2^32.
func fillLCG(seed uint64, dst []uint64) {
	x := seed & mask32
	for i := range dst {
		x = (lcgMultiplier*x + lcgIncrement) & mask32
		dst[i] = x
	}
}

// fillUniform использует math/rand как эталонный генератор.
func fillUniform(seed uint64, dst []uint64) {
	rnd := rand.New(rand.NewSource(int64(seed))) // #nosec G404
	for i := range dst {
		dst[i] = uint64(rnd.Int63n(uniformBound))
	}
}

// fillMiddleSquare реализует метод середины квадрата фон Неймана.
// Ширина окна равна числу десятичных цифр seed и не меняется при перезапуске.
func fillMiddleSquare(seed uint64, dst []uint64) {
	width := decimalDigits(seed)
	x := seed
	var reseeds uint64
	for i := range dst {
		x = middleDigits(x*x, width)
		if x == 0 {
			// Ноль является неподвижной точкой, перезапускаемся со следующего seed
			reseeds++
			x = seed + reseeds
		}
		dst[i] = x
	}
}

// middleDigits возвращает width центральных цифр числа sq,
// дополненного нулями слева до 2*width цифр.
func middleDigits(sq uint64, width int) uint64 {
	total := decimalDigits(sq)
	if total < 2*width {
		total = 2 * width
	}
	start := (total - width) / 2
	// Отбрасываем младшие цифры справа от окна
	drop := total - start - width
	return (sq / pow10(drop)) % pow10(width)
}

func decimalDigits(v uint64) int {
	digits := 1
	for v >= 10 {
		v /= 10
		digits++
	}
	return digits
}

func pow10(exp int) uint64 {
	result := uint64(1)
	for i := 0; i < exp; i++ {
		result *= 10
	}
	return result
}
