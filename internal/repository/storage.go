package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"
	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"fair-draw-service/internal/domain"
	"fair-draw-service/internal/infrastructure/nower"
)

type pgxPool interface {
	querier
	Begin(ctx context.Context) (pgx.Tx, error)
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Close()
	Ping(ctx context.Context) error
}

// querier общий набор методов пула и транзакции.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// Storage инкапсулирует работу с PostgreSQL.
type Storage struct {
	pool  pgxPool
	nower nower.Nower
	sb    squirrel.StatementBuilderType
}

// New создаёт новый слой хранения.
func New(pool pgxPool, nower nower.Nower) *Storage {
	return &Storage{
		pool:  pool,
		nower: nower,
		sb:    squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Close освобождает соединения пула.
func (s *Storage) Close() {
	s.pool.Close()
}

// Ping проверяет доступность подключения к БД.
func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// db возвращает транзакцию из контекста (если её открыл trm.Manager) либо пул.
func (s *Storage) db(ctx context.Context) querier {
	return trmpgx.DefaultCtxGetter.DefaultTrOrDB(ctx, s.pool)
}

// ListClasses загружает все классы вместе со списками и историей вызовов.
func (s *Storage) ListClasses(ctx context.Context) ([]domain.Class, error) {
	db := s.db(ctx)

	selectSQL, selectArgs, err := s.sb.
		Select("class_name", "k", "l", "n", "sound_on", "auto_save", "prepared").
		From("classes").
		OrderBy("created_at ASC", "class_name ASC").
		ToSql()
	if err != nil {
		slog.ErrorContext(ctx, "failed to build select classes query", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrBuildQuery, err)
	}
	rows, err := db.Query(ctx, selectSQL, selectArgs...)
	if err != nil {
		slog.ErrorContext(ctx, "failed to query classes", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrExecuteQuery, err)
	}
	defer rows.Close()

	classes := []domain.Class{}
	index := map[string]int{}
	for rows.Next() {
		var c domain.Class
		if err := rows.Scan(&c.Name, &c.Params.K, &c.Params.L, &c.Params.N,
			&c.Settings.SoundOn, &c.Settings.AutoSave, &c.Prepared); err != nil {
			slog.ErrorContext(ctx, "failed to scan class", "error", err)
			return nil, fmt.Errorf("%w: %v", ErrScanResult, err)
		}
		c.Names = []string{}
		c.Used = []int{}
		index[c.Name] = len(classes)
		classes = append(classes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(classes) == 0 {
		return classes, nil
	}

	if err := s.loadMembers(ctx, db, classes, index); err != nil {
		return nil, err
	}
	if err := s.loadDraws(ctx, db, classes, index); err != nil {
		return nil, err
	}
	return classes, nil
}

func (s *Storage) loadMembers(ctx context.Context, db querier, classes []domain.Class, index map[string]int) error {
	selectSQL, selectArgs, err := s.sb.
		Select("class_name", "name").
		From("class_members").
		OrderBy("class_name ASC", "slot ASC").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBuildQuery, err)
	}
	rows, err := db.Query(ctx, selectSQL, selectArgs...)
	if err != nil {
		slog.ErrorContext(ctx, "failed to query class members", "error", err)
		return fmt.Errorf("%w: %v", ErrExecuteQuery, err)
	}
	defer rows.Close()
	for rows.Next() {
		var className, name string
		if err := rows.Scan(&className, &name); err != nil {
			return fmt.Errorf("%w: %v", ErrScanResult, err)
		}
		if i, ok := index[className]; ok {
			classes[i].Names = append(classes[i].Names, name)
		}
	}
	return rows.Err()
}

func (s *Storage) loadDraws(ctx context.Context, db querier, classes []domain.Class, index map[string]int) error {
	selectSQL, selectArgs, err := s.sb.
		Select("class_name", "slot").
		From("draws").
		OrderBy("class_name ASC", "seq ASC").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBuildQuery, err)
	}
	rows, err := db.Query(ctx, selectSQL, selectArgs...)
	if err != nil {
		slog.ErrorContext(ctx, "failed to query draws", "error", err)
		return fmt.Errorf("%w: %v", ErrExecuteQuery, err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			className string
			slot      int
		)
		if err := rows.Scan(&className, &slot); err != nil {
			return fmt.Errorf("%w: %v", ErrScanResult, err)
		}
		if i, ok := index[className]; ok {
			classes[i].Used = append(classes[i].Used, slot)
		}
	}
	return rows.Err()
}

// CreateClass сохраняет новый класс и его список учеников.
func (s *Storage) CreateClass(ctx context.Context, class domain.Class) error {
	db := s.db(ctx)

	exists, err := s.classExists(ctx, db, class.Name)
	if err != nil {
		return err
	}
	if exists {
		return domain.ErrClassExists
	}

	now := s.nower.Now()
	insertSQL, insertArgs, err := s.sb.
		Insert("classes").
		Columns("class_name", "k", "l", "n", "sound_on", "auto_save", "prepared", "created_at", "updated_at").
		Values(class.Name, class.Params.K, class.Params.L, class.Params.N,
			class.Settings.SoundOn, class.Settings.AutoSave, class.Prepared, now, now).
		ToSql()
	if err != nil {
		slog.ErrorContext(ctx, "failed to build insert class query", "error", err)
		return fmt.Errorf("%w: %v", ErrBuildQuery, err)
	}
	if _, err := db.Exec(ctx, insertSQL, insertArgs...); err != nil {
		slog.ErrorContext(ctx, "failed to insert class", "error", err)
		return fmt.Errorf("%w: %v", ErrExecuteQuery, err)
	}
	return insertMembers(ctx, db, class.Name, class.Names)
}

// RenameClass переименовывает класс; списки и история переезжают каскадом.
func (s *Storage) RenameClass(ctx context.Context, oldName, newName string) error {
	db := s.db(ctx)

	exists, err := s.classExists(ctx, db, newName)
	if err != nil {
		return err
	}
	if exists {
		return domain.ErrClassExists
	}

	updateSQL, updateArgs, err := s.sb.
		Update("classes").
		Set("class_name", newName).
		Set("updated_at", s.nower.Now()).
		Where(squirrel.Eq{"class_name": oldName}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBuildQuery, err)
	}
	cmd, err := db.Exec(ctx, updateSQL, updateArgs...)
	if err != nil {
		slog.ErrorContext(ctx, "failed to rename class", "error", err)
		return fmt.Errorf("%w: %v", ErrExecuteQuery, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrClassNotFound
	}
	return nil
}

// DeleteClass удаляет класс вместе со списком и историей.
func (s *Storage) DeleteClass(ctx context.Context, name string) error {
	deleteSQL, deleteArgs, err := s.sb.
		Delete("classes").
		Where(squirrel.Eq{"class_name": name}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBuildQuery, err)
	}
	cmd, err := s.db(ctx).Exec(ctx, deleteSQL, deleteArgs...)
	if err != nil {
		slog.ErrorContext(ctx, "failed to delete class", "error", err)
		return fmt.Errorf("%w: %v", ErrExecuteQuery, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrClassNotFound
	}
	return nil
}

// SaveRoster перезаписывает параметры, настройки и список учеников класса.
func (s *Storage) SaveRoster(ctx context.Context, class domain.Class) error {
	db := s.db(ctx)

	updateSQL, updateArgs, err := s.sb.
		Update("classes").
		Set("k", class.Params.K).
		Set("l", class.Params.L).
		Set("n", class.Params.N).
		Set("sound_on", class.Settings.SoundOn).
		Set("auto_save", class.Settings.AutoSave).
		Set("prepared", class.Prepared).
		Set("updated_at", s.nower.Now()).
		Where(squirrel.Eq{"class_name": class.Name}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBuildQuery, err)
	}
	cmd, err := db.Exec(ctx, updateSQL, updateArgs...)
	if err != nil {
		slog.ErrorContext(ctx, "failed to update class", "error", err)
		return fmt.Errorf("%w: %v", ErrExecuteQuery, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrClassNotFound
	}

	deleteSQL, deleteArgs, err := s.sb.
		Delete("class_members").
		Where(squirrel.Eq{"class_name": class.Name}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBuildQuery, err)
	}
	if _, err := db.Exec(ctx, deleteSQL, deleteArgs...); err != nil {
		slog.ErrorContext(ctx, "failed to delete class members", "error", err)
		return fmt.Errorf("%w: %v", ErrExecuteQuery, err)
	}
	return insertMembers(ctx, db, class.Name, class.Names)
}

// SetPrepared отмечает, что для класса выбран план.
func (s *Storage) SetPrepared(ctx context.Context, name string, prepared bool) error {
	updateSQL, updateArgs, err := s.sb.
		Update("classes").
		Set("prepared", prepared).
		Set("updated_at", s.nower.Now()).
		Where(squirrel.Eq{"class_name": name}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBuildQuery, err)
	}
	cmd, err := s.db(ctx).Exec(ctx, updateSQL, updateArgs...)
	if err != nil {
		slog.ErrorContext(ctx, "failed to update prepared flag", "error", err)
		return fmt.Errorf("%w: %v", ErrExecuteQuery, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrClassNotFound
	}
	return nil
}

// AppendDraw добавляет вызов в конец истории класса.
func (s *Storage) AppendDraw(ctx context.Context, name string, seq, slot int) error {
	insertSQL, insertArgs, err := s.sb.
		Insert("draws").
		Columns("class_name", "seq", "slot", "drawn_at").
		Values(name, seq, slot, s.nower.Now()).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBuildQuery, err)
	}
	if _, err := s.db(ctx).Exec(ctx, insertSQL, insertArgs...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return domain.ErrClassNotFound
		}
		slog.ErrorContext(ctx, "failed to insert draw", "error", err)
		return fmt.Errorf("%w: %v", ErrExecuteQuery, err)
	}
	return nil
}

// ClearDraws очищает историю вызовов класса.
func (s *Storage) ClearDraws(ctx context.Context, name string) error {
	deleteSQL, deleteArgs, err := s.sb.
		Delete("draws").
		Where(squirrel.Eq{"class_name": name}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBuildQuery, err)
	}
	if _, err := s.db(ctx).Exec(ctx, deleteSQL, deleteArgs...); err != nil {
		slog.ErrorContext(ctx, "failed to clear draws", "error", err)
		return fmt.Errorf("%w: %v", ErrExecuteQuery, err)
	}
	return nil
}

// ReplaceDraws заменяет историю класса целиком (используется при импорте).
func (s *Storage) ReplaceDraws(ctx context.Context, name string, used []int) error {
	if err := s.ClearDraws(ctx, name); err != nil {
		return err
	}
	if len(used) == 0 {
		return nil
	}
	now := s.nower.Now()
	rows := make([][]any, len(used))
	for i, slot := range used {
		rows[i] = []any{name, i, slot, now}
	}
	_, err := s.db(ctx).CopyFrom(ctx,
		pgx.Identifier{"draws"},
		[]string{"class_name", "seq", "slot", "drawn_at"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		slog.ErrorContext(ctx, "failed to copy draws", "error", err)
		return fmt.Errorf("%w: %v", ErrExecuteQuery, err)
	}
	return nil
}

func (s *Storage) classExists(ctx context.Context, db querier, name string) (bool, error) {
	existsSQL, existsArgs, err := s.sb.
		Select("1").
		From("classes").
		Where(squirrel.Eq{"class_name": name}).
		ToSql()
	if err != nil {
		slog.ErrorContext(ctx, "failed to build exists query", "error", err)
		return false, fmt.Errorf("%w: %v", ErrBuildQuery, err)
	}
	var exists bool
	if err := db.QueryRow(ctx, "SELECT EXISTS("+existsSQL+")", existsArgs...).Scan(&exists); err != nil {
		slog.ErrorContext(ctx, "failed to check class existence", "error", err)
		return false, fmt.Errorf("%w: %v", ErrExecuteQuery, err)
	}
	return exists, nil
}

// insertMembers сохраняет учеников одним батчем, номер слота равен позиции в списке.
func insertMembers(ctx context.Context, db querier, className string, names []string) error {
	if len(names) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for slot, name := range names {
		batch.Queue(`INSERT INTO class_members (class_name, slot, name) VALUES ($1,$2,$3)`, className, slot, name)
	}
	if err := db.SendBatch(ctx, batch).Close(); err != nil {
		slog.ErrorContext(ctx, "failed to insert class members", "error", err, "class_name", className)
		return fmt.Errorf("%w: %v", ErrExecuteQuery, err)
	}
	return nil
}
