package domain

import (
	"fmt"
	"math"
)

// RoundState отражает состояние розыгрыша для одного класса.
type RoundState string

const (
	StateUninitialized RoundState = "UNINITIALIZED"
	StatePlanSelected  RoundState = "PLAN_SELECTED"
	StateDrawing       RoundState = "DRAWING"
	StateExhausted     RoundState = "EXHAUSTED"
)

// Params описывает параметры планирования на учебный год.
type Params struct {
	K int `json:"k"` // занятий в год
	L int `json:"l"` // среднее число вызовов за занятие
	N int `json:"n"` // размер класса
}

// Count возвращает ожидаемое число вызовов за год.
func (p Params) Count() int {
	return p.K * p.L
}

// Validate проверяет, что все параметры положительны и k*l помещается в int.
func (p Params) Validate() error {
	if p.K < 1 || p.L < 1 || p.N < 1 {
		return fmt.Errorf("%w: k=%d l=%d n=%d must be positive", ErrInvalidParameter, p.K, p.L, p.N)
	}
	if p.K > math.MaxInt/p.L {
		return fmt.Errorf("%w: k*l overflows (k=%d l=%d)", ErrInvalidParameter, p.K, p.L)
	}
	return nil
}

// Settings хранит пользовательские флаги класса.
type Settings struct {
	SoundOn  bool `json:"sound_on"`
	AutoSave bool `json:"auto_save"`
}

// Class описывает класс и его список учеников.
type Class struct {
	Name     string   `json:"class_name"`
	Params   Params   `json:"params"`
	Names    []string `json:"names"`
	Settings Settings `json:"settings"`
	Prepared bool     `json:"prepared"`
	Used     []int    `json:"used"`
}

// ClassInfo используется в списке классов.
type ClassInfo struct {
	Name  string     `json:"class_name"`
	State RoundState `json:"state"`
	Size  int        `json:"n"`
}

// RosterView возвращает состояние класса для отображения.
type RosterView struct {
	Class     Class      `json:"class"`
	State     RoundState `json:"state"`
	Remaining int        `json:"remaining"`
	Called    []Member   `json:"called"`
}

// Member ученик в порядке вызова либо в списке.
type Member struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
}

// PlanSummary содержит итог поиска плана.
type PlanSummary struct {
	ClassName string  `json:"class_name"`
	Generator string  `json:"generator"`
	Seed      uint64  `json:"seed"`
	Variance  float64 `json:"variance"`
	StdDev    float64 `json:"std_dev"`
	Expected  float64 `json:"expected_per_student"`
	RangeLow  float64 `json:"range_low"`
	RangeHigh float64 `json:"range_high"`
	PoolSize  int     `json:"pool_size"`
}

// DrawResult результат одного вызова.
type DrawResult struct {
	Slot      int    `json:"slot"`
	Number    int    `json:"number"`
	Name      string `json:"name"`
	Remaining int    `json:"remaining"`
}

// SlotStat запланированное и фактическое число вызовов ученика.
type SlotStat struct {
	Number  int    `json:"number"`
	Name    string `json:"name"`
	Planned int    `json:"planned"`
	Called  int    `json:"called"`
}

// PlanStats агрегирует статистику по плану класса.
type PlanStats struct {
	Summary PlanSummary `json:"summary"`
	PerSlot []SlotStat  `json:"per_student"`
}

// HistoryRecord строка истории вызовов (одна на ученика).
type HistoryRecord struct {
	Number    int
	Name      string
	Called    bool
	SoundOn   bool
	AutoSave  bool
	ClassName string
	K         int
	L         int
	N         int
}
