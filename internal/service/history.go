package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"fair-draw-service/internal/domain"
	"fair-draw-service/internal/metrics"
)

// Колонки CSV истории.
const (
	columnNumber    = "番号"
	columnName      = "名前"
	columnCalled    = "指名済"
	columnSoundOn   = "音ON"
	columnAutoSave  = "自動保存ON"
	columnClassName = "クラス名"
	columnK         = "k"
	columnL         = "l"
	columnN         = "n"
)

var historyHeader = []string{
	columnNumber, columnName, columnCalled, columnSoundOn, columnAutoSave,
	columnClassName, columnK, columnL, columnN,
}

var requiredColumns = []string{columnNumber, columnName, columnK, columnL, columnN}

// EncodeHistory пишет историю в CSV, одна строка на ученика.
func EncodeHistory(w io.Writer, records []domain.HistoryRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(historyHeader); err != nil {
		return err
	}
	for _, rec := range records {
		row := []string{
			strconv.Itoa(rec.Number),
			rec.Name,
			formatBool(rec.Called),
			formatBool(rec.SoundOn),
			formatBool(rec.AutoSave),
			rec.ClassName,
			strconv.Itoa(rec.K),
			strconv.Itoa(rec.L),
			strconv.Itoa(rec.N),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// DecodeHistory читает CSV истории. Колонки ищутся по заголовку, порядок не важен.
// Обязательны 番号, 名前, k, l, n; отсутствующие флаги считаются False.
func DecodeHistory(r io.Reader) ([]domain.HistoryRecord, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty file", domain.ErrMalformedRecord)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedRecord, err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		columns[name] = i
	}
	for _, required := range requiredColumns {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", domain.ErrMalformedRecord, required)
		}
	}

	var records []domain.HistoryRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrMalformedRecord, err)
		}
		rec, err := parseRecord(row, columns)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", domain.ErrMalformedRecord, line, err)
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no records", domain.ErrMalformedRecord)
	}
	return records, nil
}

func parseRecord(row []string, columns map[string]int) (domain.HistoryRecord, error) {
	field := func(name string) string {
		if i, ok := columns[name]; ok && i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}
	var (
		rec domain.HistoryRecord
		err error
	)
	ints := []struct {
		column string
		dst    *int
	}{
		{columnNumber, &rec.Number},
		{columnK, &rec.K},
		{columnL, &rec.L},
		{columnN, &rec.N},
	}
	for _, f := range ints {
		if *f.dst, err = strconv.Atoi(field(f.column)); err != nil {
			return domain.HistoryRecord{}, fmt.Errorf("column %s: %q is not a number", f.column, field(f.column))
		}
	}
	bools := []struct {
		column string
		dst    *bool
	}{
		{columnCalled, &rec.Called},
		{columnSoundOn, &rec.SoundOn},
		{columnAutoSave, &rec.AutoSave},
	}
	for _, f := range bools {
		if *f.dst, err = parseBool(field(f.column)); err != nil {
			return domain.HistoryRecord{}, fmt.Errorf("column %s: %w", f.column, err)
		}
	}
	rec.Name = field(columnName)
	rec.ClassName = field(columnClassName)
	return rec, nil
}

// RebuildState восстанавливает параметры, список и вызванных учеников из записей.
// Все записи проверяются до построения результата; Name класса не заполняется.
func RebuildState(records []domain.HistoryRecord) (domain.Class, error) {
	if len(records) == 0 {
		return domain.Class{}, fmt.Errorf("%w: no records", domain.ErrMalformedRecord)
	}
	first := records[0]
	params := domain.Params{K: first.K, L: first.L, N: first.N}
	if err := params.Validate(); err != nil {
		return domain.Class{}, fmt.Errorf("%w: %v", domain.ErrMalformedRecord, err)
	}
	if params.N > MaxRosterSize {
		return domain.Class{}, fmt.Errorf("%w: n=%d exceeds %d", domain.ErrMalformedRecord, params.N, MaxRosterSize)
	}

	names := make([]string, params.N)
	seen := make([]bool, params.N)
	used := []int{}
	for _, rec := range records {
		if rec.K != params.K || rec.L != params.L || rec.N != params.N {
			return domain.Class{}, fmt.Errorf("%w: number %d: k/l/n differ from the first row", domain.ErrMalformedRecord, rec.Number)
		}
		slot := rec.Number - 1
		if slot < 0 || slot >= params.N {
			return domain.Class{}, fmt.Errorf("%w: number %d out of range 1..%d", domain.ErrMalformedRecord, rec.Number, params.N)
		}
		if seen[slot] {
			return domain.Class{}, fmt.Errorf("%w: duplicate number %d", domain.ErrMalformedRecord, rec.Number)
		}
		seen[slot] = true
		names[slot] = strings.TrimSpace(rec.Name)
		if rec.Called {
			used = append(used, slot)
		}
	}
	sort.Ints(used)
	for slot, name := range names {
		if name == "" {
			names[slot] = paddingName(slot)
		}
	}
	return domain.Class{
		Params:   params,
		Names:    names,
		Settings: domain.Settings{SoundOn: first.SoundOn, AutoSave: first.AutoSave},
		Used:     used,
	}, nil
}

// ExportHistory пишет историю класса в CSV.
// Формат хранит только флаг вызова, поэтому повторные вызовы одного ученика не различаются.
func (s *Service) ExportHistory(_ context.Context, name string, w io.Writer) error {
	s.mu.Lock()
	st, err := s.lookupLocked(name)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	records := st.historyRecords()
	s.mu.Unlock()

	if err := EncodeHistory(w, records); err != nil {
		return err
	}
	metrics.IncHistoryExports()
	return nil
}

// ImportHistory заменяет список и историю класса данными из CSV.
// Класс берётся из запроса, колонка クラス名 игнорируется. При ошибке состояние не меняется.
func (s *Service) ImportHistory(ctx context.Context, name string, r io.Reader) (domain.RosterView, error) {
	records, err := DecodeHistory(r)
	if err != nil {
		return domain.RosterView{}, err
	}
	rebuilt, err := RebuildState(records)
	if err != nil {
		return domain.RosterView{}, err
	}
	if err := ValidateParams(rebuilt.Params); err != nil {
		return domain.RosterView{}, err
	}

	ctx, cancel := s.longOperationContext(ctx)
	defer cancel()

	st, class, err := s.acquire(name)
	if err != nil {
		return domain.RosterView{}, err
	}
	defer s.release(st)

	plan, round, err := s.selectPlan(rebuilt.Params)
	if err != nil {
		return domain.RosterView{}, err
	}
	if err := round.Restore(rebuilt.Used); err != nil {
		return domain.RosterView{}, fmt.Errorf("%w: %v", domain.ErrMalformedRecord, err)
	}
	rebuilt.Name = class.Name
	rebuilt.Prepared = true
	err = s.trMgr.Do(ctx, func(ctx context.Context) error {
		if err := s.repo.SaveRoster(ctx, rebuilt); err != nil {
			return err
		}
		return s.repo.ReplaceDraws(ctx, rebuilt.Name, rebuilt.Used)
	})
	if err != nil {
		return domain.RosterView{}, err
	}
	metrics.IncHistoryImports()

	s.mu.Lock()
	defer s.mu.Unlock()
	rebuilt.Used = nil
	st.class = rebuilt
	st.plan, st.round = &plan, round
	return st.view(), nil
}

func (c *classState) historyRecords() []domain.HistoryRecord {
	called := make([]int, c.class.Params.N)
	if c.round != nil {
		called = c.round.Called()
	}
	records := make([]domain.HistoryRecord, len(c.class.Names))
	for slot, name := range c.class.Names {
		records[slot] = domain.HistoryRecord{
			Number:    slot + 1,
			Name:      name,
			Called:    called[slot] > 0,
			SoundOn:   c.class.Settings.SoundOn,
			AutoSave:  c.class.Settings.AutoSave,
			ClassName: c.class.Name,
			K:         c.class.Params.K,
			L:         c.class.Params.L,
			N:         c.class.Params.N,
		}
	}
	return records
}

func formatBool(v bool) string {
	if v {
		return "True"
	}
	return "False"
}

// parseBool принимает True/False в любом регистре, 1/0 и пустую строку (False).
func parseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1":
		return true, nil
	case "false", "0", "":
		return false, nil
	default:
		return false, fmt.Errorf("unknown boolean %q", value)
	}
}
