package nower

import "time"

// Nower отдаёт текущее время для меток создания классов и вызовов.
// Подменяется в тестах хранилища.
type Nower interface {
	Now() time.Time
}
