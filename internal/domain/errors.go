package domain

import "errors"

// Доменные ошибки, используемые для обработки бизнес-логики.
// Эти ошибки преобразуются в HTTP-ответы в слое обработчиков.
var (
	ErrInvalidParameter = errors.New("invalid parameter")                // k, l или n не положительны либо размер списка не совпадает с n.
	ErrExhaustedPool    = errors.New("draw pool exhausted")              // Все доступные ученики вызваны запланированное число раз.
	ErrPlanNotSelected  = errors.New("draw plan is not prepared")        // Вызов до подготовки плана.
	ErrClassNotFound    = errors.New("class not found")                  // Класс с таким именем не зарегистрирован.
	ErrClassExists      = errors.New("class already exists")             // Попытка создать или переименовать класс в уже занятое имя.
	ErrLastClass        = errors.New("at least one class must remain")   // Попытка удалить последний класс.
	ErrClassBusy        = errors.New("class plan search is in progress") // Для класса уже идёт поиск плана.
	ErrMalformedRecord  = errors.New("malformed history record")         // Импортируемая история не прошла проверку.
)
