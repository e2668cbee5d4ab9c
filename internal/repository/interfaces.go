package repository

import (
	"context"

	"fair-draw-service/internal/domain"
)

// Repository объединяет все доменные репозитории.
type Repository interface {
	ClassRepository
	DrawRepository
}

// ClassRepository содержит операции для работы с классами и их списками.
type ClassRepository interface {
	ListClasses(ctx context.Context) ([]domain.Class, error)
	CreateClass(ctx context.Context, class domain.Class) error
	RenameClass(ctx context.Context, oldName, newName string) error
	DeleteClass(ctx context.Context, name string) error
	SaveRoster(ctx context.Context, class domain.Class) error
	SetPrepared(ctx context.Context, name string, prepared bool) error
}

// DrawRepository содержит операции с историей вызовов.
type DrawRepository interface {
	AppendDraw(ctx context.Context, name string, seq, slot int) error
	ClearDraws(ctx context.Context, name string) error
	ReplaceDraws(ctx context.Context, name string, used []int) error
}

// HealthChecker описывает метод проверки соединения.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

var _ Repository = (*Storage)(nil)
