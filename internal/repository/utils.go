package repository

import "errors"

// Общие ошибки репозитория.
var (
	ErrBuildQuery   = errors.New("failed to build SQL query")
	ErrExecuteQuery = errors.New("failed to execute query")
	ErrScanResult   = errors.New("failed to scan result")
)

// foreignKeyViolation код ошибки PostgreSQL при нарушении внешнего ключа.
const foreignKeyViolation = "23503"
