package nower

import "time"

type nowerImpl struct{}

// New создаёт реализацию на базе системных часов.
func New() Nower {
	return &nowerImpl{}
}

// Now возвращает текущее время в UTC: метки вызовов пишутся в БД без зоны.
func (n *nowerImpl) Now() time.Time {
	return time.Now().UTC()
}

type fixedNower struct {
	at time.Time
}

// NewFixed возвращает часы, всегда показывающие at.
func NewFixed(at time.Time) Nower {
	return fixedNower{at: at}
}

func (f fixedNower) Now() time.Time {
	return f.at
}
