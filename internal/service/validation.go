package service

import (
	"fmt"
	"unicode/utf8"

	"fair-draw-service/internal/domain"
)

const (
	// MaxClassNameLength ограничение колонки classes.class_name
	MaxClassNameLength = 100
	// MaxRosterSize максимальный размер класса
	MaxRosterSize = 1000
	// MaxDrawCount максимальное k*l; время поиска растёт линейно от него
	MaxDrawCount = 10_000
)

// ValidateClassName проверяет корректность имени класса (ожидается уже обрезанное имя).
func ValidateClassName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: class name cannot be empty", domain.ErrInvalidParameter)
	}
	if utf8.RuneCountInString(name) > MaxClassNameLength {
		return fmt.Errorf("%w: class name too long (max %d characters)", domain.ErrInvalidParameter, MaxClassNameLength)
	}
	return nil
}

// ValidateParams проверяет параметры планирования.
func ValidateParams(p domain.Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.N > MaxRosterSize {
		return fmt.Errorf("%w: n=%d exceeds %d", domain.ErrInvalidParameter, p.N, MaxRosterSize)
	}
	if p.K > MaxDrawCount || p.L > MaxDrawCount || p.Count() > MaxDrawCount {
		return fmt.Errorf("%w: k*l=%d exceeds %d", domain.ErrInvalidParameter, p.Count(), MaxDrawCount)
	}
	return nil
}
