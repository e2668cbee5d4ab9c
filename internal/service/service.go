package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	trm "github.com/avito-tech/go-transaction-manager/trm/v2"

	"fair-draw-service/internal/config"
	"fair-draw-service/internal/domain"
	"fair-draw-service/internal/infrastructure/randomizer"
	"fair-draw-service/internal/logging"
	"fair-draw-service/internal/metrics"
	"fair-draw-service/internal/repository"
	"fair-draw-service/internal/scheduler"
)

const (
	// DefaultOperationTimeout таймаут по умолчанию для обычных операций
	DefaultOperationTimeout = 30 * time.Second
	// DefaultLongOperationTimeout таймаут по умолчанию для длительных операций
	DefaultLongOperationTimeout = 60 * time.Second
)

// Repository описывает операции, которые требуются сервису.
type Repository interface {
	repository.Repository
}

// RosterInput полная замена списка класса.
type RosterInput struct {
	ClassName string
	Params    domain.Params
	Names     []string
	Settings  domain.Settings
}

// DrawInput запрос на вызов ученика.
type DrawInput struct {
	ClassName   string
	AbsentNames []string
}

// classState состояние розыгрыша одного класса.
// Список вызванных хранится в round, class.Used заполняется только при выдаче наружу.
type classState struct {
	class domain.Class
	plan  *scheduler.Plan
	round *scheduler.Round
	busy  bool
}

func (c *classState) state() domain.RoundState {
	if c.round == nil {
		return domain.StateUninitialized
	}
	return c.round.State()
}

func (c *classState) info() domain.ClassInfo {
	return domain.ClassInfo{Name: c.class.Name, State: c.state(), Size: c.class.Params.N}
}

// Service агрегирует бизнес-логику приложения.
type Service struct {
	repo       Repository
	health     repository.HealthChecker
	cfg        config.Config
	trMgr      trm.Manager
	randomizer randomizer.Randomizer
	searcher   scheduler.Searcher

	mu      sync.Mutex
	classes map[string]*classState
	order   []string
}

func New(repo Repository, cfg config.Config, trMgr trm.Manager, randomizer randomizer.Randomizer) *Service {
	svc := &Service{
		repo:       repo,
		cfg:        cfg,
		trMgr:      trMgr,
		randomizer: randomizer,
		searcher:   scheduler.NewSearcher(cfg.Scheduler.SeedStep, cfg.Scheduler.SeedMax),
		classes:    map[string]*classState{},
	}
	if svc.cfg.Timeouts.Operation <= 0 {
		svc.cfg.Timeouts.Operation = DefaultOperationTimeout
	}
	if svc.cfg.Timeouts.LongOperation <= 0 {
		svc.cfg.Timeouts.LongOperation = DefaultLongOperationTimeout
	}
	if checker, ok := repo.(repository.HealthChecker); ok {
		svc.health = checker
	}
	return svc
}

// Restore загружает классы из хранилища и восстанавливает пулы подготовленных классов.
// Если хранилище пустое, создаются классы по умолчанию.
func (s *Service) Restore(ctx context.Context) error {
	ctx, cancel := s.longOperationContext(ctx)
	defer cancel()

	classes, err := s.repo.ListClasses(ctx)
	if err != nil {
		return fmt.Errorf("load classes: %w", err)
	}
	if len(classes) == 0 {
		if classes, err = s.createDefaultClasses(ctx); err != nil {
			return fmt.Errorf("create default classes: %w", err)
		}
	}

	states := make(map[string]*classState, len(classes))
	order := make([]string, 0, len(classes))
	for _, class := range classes {
		class.Names = NormalizeNames(class.Names, class.Params.N)
		st := &classState{class: class}
		if class.Prepared {
			if err := s.restoreRound(st, class.Used); err != nil {
				slog.WarnContext(logging.WithLogClassName(ctx, class.Name), "failed to restore draw state, class reset", "error", err)
				if err := s.resetStored(ctx, class.Name); err != nil {
					return fmt.Errorf("reset class %q: %w", class.Name, err)
				}
				st.class.Prepared = false
			}
		}
		st.class.Used = nil
		states[class.Name] = st
		order = append(order, class.Name)
	}

	s.mu.Lock()
	s.classes, s.order = states, order
	s.mu.Unlock()
	slog.InfoContext(ctx, "classes restored", "count", len(classes))
	return nil
}

// resetStored снимает в хранилище признак подготовки и удаляет журнал вызовов класса.
func (s *Service) resetStored(ctx context.Context, name string) error {
	return s.trMgr.Do(ctx, func(ctx context.Context) error {
		if err := s.repo.SetPrepared(ctx, name, false); err != nil {
			return err
		}
		return s.repo.ClearDraws(ctx, name)
	})
}

func (s *Service) restoreRound(st *classState, used []int) error {
	plan, round, err := s.selectPlan(st.class.Params)
	if err != nil {
		return err
	}
	if err := round.Restore(used); err != nil {
		return err
	}
	st.plan, st.round = &plan, round
	return nil
}

func (s *Service) createDefaultClasses(ctx context.Context) ([]domain.Class, error) {
	classes := make([]domain.Class, 0, len(s.cfg.Defaults.Classes))
	for _, name := range s.cfg.Defaults.Classes {
		classes = append(classes, s.newClass(strings.TrimSpace(name)))
	}
	err := s.trMgr.Do(ctx, func(ctx context.Context) error {
		for _, class := range classes {
			if err := s.repo.CreateClass(ctx, class); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return classes, nil
}

func (s *Service) newClass(name string) domain.Class {
	params := domain.Params{K: s.cfg.Defaults.K, L: s.cfg.Defaults.L, N: s.cfg.Defaults.N}
	return domain.Class{
		Name:   name,
		Params: params,
		Names:  NormalizeNames(nil, params.N),
		Used:   []int{},
	}
}

// ListClasses возвращает классы в порядке создания.
func (s *Service) ListClasses(_ context.Context) []domain.ClassInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	infos := make([]domain.ClassInfo, 0, len(s.order))
	for _, name := range s.order {
		infos = append(infos, s.classes[name].info())
	}
	return infos
}

// CreateClass создаёт класс с параметрами по умолчанию.
func (s *Service) CreateClass(ctx context.Context, name string) (domain.ClassInfo, error) {
	ctx, cancel := s.shortOperationContext(ctx)
	defer cancel()

	name = strings.TrimSpace(name)
	if err := ValidateClassName(name); err != nil {
		return domain.ClassInfo{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.classes[name]; ok {
		return domain.ClassInfo{}, domain.ErrClassExists
	}
	class := s.newClass(name)
	if err := s.repo.CreateClass(ctx, class); err != nil {
		return domain.ClassInfo{}, err
	}
	st := &classState{class: class}
	st.class.Used = nil
	s.classes[name] = st
	s.order = append(s.order, name)
	return st.info(), nil
}

// RenameClass переименовывает класс, сохраняя пул и историю.
func (s *Service) RenameClass(ctx context.Context, oldName, newName string) (domain.ClassInfo, error) {
	ctx, cancel := s.shortOperationContext(ctx)
	defer cancel()

	newName = strings.TrimSpace(newName)
	if err := ValidateClassName(newName); err != nil {
		return domain.ClassInfo{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.idleLocked(oldName)
	if err != nil {
		return domain.ClassInfo{}, err
	}
	if st.class.Name == newName {
		return st.info(), nil
	}
	if _, ok := s.classes[newName]; ok {
		return domain.ClassInfo{}, domain.ErrClassExists
	}
	if err := s.repo.RenameClass(ctx, st.class.Name, newName); err != nil {
		return domain.ClassInfo{}, err
	}
	delete(s.classes, st.class.Name)
	for i, name := range s.order {
		if name == st.class.Name {
			s.order[i] = newName
		}
	}
	st.class.Name = newName
	s.classes[newName] = st
	return st.info(), nil
}

// DeleteClass удаляет класс. Последний класс удалить нельзя.
func (s *Service) DeleteClass(ctx context.Context, name string) error {
	ctx, cancel := s.shortOperationContext(ctx)
	defer cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.idleLocked(name)
	if err != nil {
		return err
	}
	if len(s.classes) <= 1 {
		return domain.ErrLastClass
	}
	if err := s.repo.DeleteClass(ctx, st.class.Name); err != nil {
		return err
	}
	delete(s.classes, st.class.Name)
	for i, n := range s.order {
		if n == st.class.Name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// SetRoster полностью заменяет параметры и список класса.
// Пул и история сбрасываются, класс возвращается в UNINITIALIZED.
func (s *Service) SetRoster(ctx context.Context, input RosterInput) (domain.RosterView, error) {
	ctx, cancel := s.shortOperationContext(ctx)
	defer cancel()

	if err := ValidateParams(input.Params); err != nil {
		return domain.RosterView{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.idleLocked(input.ClassName)
	if err != nil {
		return domain.RosterView{}, err
	}
	updated := domain.Class{
		Name:     st.class.Name,
		Params:   input.Params,
		Names:    NormalizeNames(input.Names, input.Params.N),
		Settings: input.Settings,
	}
	err = s.trMgr.Do(ctx, func(ctx context.Context) error {
		if err := s.repo.SaveRoster(ctx, updated); err != nil {
			return err
		}
		return s.repo.ClearDraws(ctx, updated.Name)
	})
	if err != nil {
		return domain.RosterView{}, err
	}
	st.class = updated
	st.plan, st.round = nil, nil
	slog.InfoContext(logging.WithLogRosterSize(logging.WithLogClassName(ctx, updated.Name), updated.Params.N), "roster replaced")
	return st.view(), nil
}

// GetRoster возвращает список класса и состояние розыгрыша.
func (s *Service) GetRoster(_ context.Context, name string) (domain.RosterView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.lookupLocked(name)
	if err != nil {
		return domain.RosterView{}, err
	}
	return st.view(), nil
}

// PreparePlan ищет самый равномерный план и строит новый пул.
// Поиск выполняется без блокировки реестра; на время поиска класс помечен как занятый.
func (s *Service) PreparePlan(ctx context.Context, name string) (domain.PlanSummary, error) {
	ctx, cancel := s.longOperationContext(ctx)
	defer cancel()

	st, class, err := s.acquire(name)
	if err != nil {
		return domain.PlanSummary{}, err
	}
	defer s.release(st)

	plan, round, err := s.selectPlan(class.Params)
	if err != nil {
		return domain.PlanSummary{}, err
	}
	err = s.trMgr.Do(ctx, func(ctx context.Context) error {
		if err := s.repo.SetPrepared(ctx, class.Name, true); err != nil {
			return err
		}
		return s.repo.ClearDraws(ctx, class.Name)
	})
	if err != nil {
		return domain.PlanSummary{}, logging.WrapError(logging.WithLogClassName(ctx, class.Name), err)
	}

	s.mu.Lock()
	st.plan, st.round = &plan, round
	st.class.Prepared = true
	s.mu.Unlock()

	ctx = logging.WithLogGenerator(logging.WithLogClassName(ctx, class.Name), plan.Kind.String())
	slog.InfoContext(ctx, "plan selected", "seed", plan.Seed, "variance", plan.Variance)
	return plan.Summary(class.Name, class.Params.N), nil
}

// Draw вызывает следующего ученика, пропуская отсутствующих.
func (s *Service) Draw(ctx context.Context, input DrawInput) (domain.DrawResult, error) {
	ctx, cancel := s.shortOperationContext(ctx)
	defer cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.idleLocked(input.ClassName)
	if err != nil {
		return domain.DrawResult{}, err
	}
	if st.round == nil {
		return domain.DrawResult{}, domain.ErrPlanNotSelected
	}

	absent := AbsentSlots(st.class.Names, input.AbsentNames)
	slot, err := st.round.Draw(absent)
	if errors.Is(err, domain.ErrExhaustedPool) {
		metrics.IncExhaustedPools()
		return domain.DrawResult{}, err
	}
	if err != nil {
		return domain.DrawResult{}, err
	}
	ctx = logging.WithLogStudentNumber(logging.WithLogClassName(ctx, st.class.Name), slot+1)
	seq := len(st.round.Used()) - 1
	if err := s.repo.AppendDraw(ctx, st.class.Name, seq, slot); err != nil {
		st.round.Undo()
		return domain.DrawResult{}, logging.WrapError(ctx, err)
	}
	metrics.IncDraws()

	slog.DebugContext(ctx, "student called")
	return domain.DrawResult{
		Slot:      slot,
		Number:    slot + 1,
		Name:      st.class.Names[slot],
		Remaining: st.round.Remaining(absent),
	}, nil
}

// Reset очищает историю вызовов раунда, пул сохраняется.
func (s *Service) Reset(ctx context.Context, name string) (domain.RosterView, error) {
	ctx, cancel := s.shortOperationContext(ctx)
	defer cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.idleLocked(name)
	if err != nil {
		return domain.RosterView{}, err
	}
	if st.round == nil {
		return domain.RosterView{}, domain.ErrPlanNotSelected
	}
	if err := s.repo.ClearDraws(ctx, st.class.Name); err != nil {
		return domain.RosterView{}, err
	}
	st.round.Reset()
	return st.view(), nil
}

// Stats возвращает итог плана и запланированное/фактическое число вызовов по ученикам.
func (s *Service) Stats(_ context.Context, name string) (domain.PlanStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.lookupLocked(name)
	if err != nil {
		return domain.PlanStats{}, err
	}
	if st.round == nil || st.plan == nil {
		return domain.PlanStats{}, domain.ErrPlanNotSelected
	}
	planned := st.round.Planned()
	called := st.round.Called()
	perSlot := make([]domain.SlotStat, len(planned))
	for i := range planned {
		perSlot[i] = domain.SlotStat{
			Number:  i + 1,
			Name:    st.class.Names[i],
			Planned: planned[i],
			Called:  called[i],
		}
	}
	return domain.PlanStats{
		Summary: st.plan.Summary(st.class.Name, st.class.Params.N),
		PerSlot: perSlot,
	}, nil
}

// HealthCheck возвращает состояние зависимостей сервиса.
func (s *Service) HealthCheck(ctx context.Context) error {
	if s.health == nil {
		return nil
	}
	ctx, cancel := s.shortOperationContext(ctx)
	defer cancel()
	return s.health.Ping(ctx)
}

// selectPlan выполняет поиск и строит раунд поверх (при необходимости перемешанного) пула.
func (s *Service) selectPlan(params domain.Params) (scheduler.Plan, *scheduler.Round, error) {
	start := time.Now()
	plan, err := s.searcher.Select(params.K, params.L, params.N)
	metrics.ObservePlanSearch(time.Since(start))
	if err != nil {
		return scheduler.Plan{}, nil, err
	}
	pool := append([]int(nil), plan.Pool...)
	if !s.cfg.Scheduler.KeepPoolOrder {
		randomizer.ShuffleInts(s.randomizer, pool)
	}
	round, err := scheduler.NewRound(pool, params.N)
	if err != nil {
		return scheduler.Plan{}, nil, err
	}
	metrics.IncPlansSelected(plan.Kind.String())
	return plan, round, nil
}

// acquire помечает класс занятым и возвращает копию его описания.
func (s *Service) acquire(name string) (*classState, domain.Class, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.idleLocked(name)
	if err != nil {
		return nil, domain.Class{}, err
	}
	st.busy = true
	class := st.class
	class.Names = append([]string(nil), st.class.Names...)
	return st, class, nil
}

func (s *Service) release(st *classState) {
	s.mu.Lock()
	st.busy = false
	s.mu.Unlock()
}

// lookupLocked ищет класс по имени; вызывается под s.mu.
func (s *Service) lookupLocked(name string) (*classState, error) {
	st, ok := s.classes[strings.TrimSpace(name)]
	if !ok {
		return nil, domain.ErrClassNotFound
	}
	return st, nil
}

// idleLocked как lookupLocked, но отказывает, пока для класса идёт поиск.
func (s *Service) idleLocked(name string) (*classState, error) {
	st, err := s.lookupLocked(name)
	if err != nil {
		return nil, err
	}
	if st.busy {
		return nil, domain.ErrClassBusy
	}
	return st, nil
}

// shortOperationContext создаёт контекст с таймаутом для обычных операций.
func (s *Service) shortOperationContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.cfg.Timeouts.Operation)
}

// longOperationContext создаёт контекст с таймаутом для длительных операций.
func (s *Service) longOperationContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.cfg.Timeouts.LongOperation)
}

func (c *classState) view() domain.RosterView {
	class := c.class
	class.Names = append([]string(nil), c.class.Names...)
	class.Used = []int{}
	view := domain.RosterView{State: c.state(), Called: []domain.Member{}}
	if c.round != nil {
		class.Used = c.round.Used()
		view.Remaining = c.round.Remaining(nil)
		for _, slot := range class.Used {
			view.Called = append(view.Called, domain.Member{Number: slot + 1, Name: class.Names[slot]})
		}
	}
	view.Class = class
	return view
}

// NormalizeNames обрезает пробелы, убирает пустые строки и приводит длину списка к n.
func NormalizeNames(names []string, n int) []string {
	result := make([]string, 0, n)
	for _, name := range names {
		if len(result) == n {
			break
		}
		if name = strings.TrimSpace(name); name != "" {
			result = append(result, name)
		}
	}
	for i := len(result); i < n; i++ {
		result = append(result, paddingName(i))
	}
	return result
}

// paddingName имя-заглушка для слота (нумерация с единицы).
func paddingName(slot int) string {
	return fmt.Sprintf("名前%d", slot+1)
}

// AbsentSlots переводит имена отсутствующих в слоты. Неизвестные имена игнорируются.
func AbsentSlots(names, absentNames []string) map[int]struct{} {
	if len(absentNames) == 0 {
		return nil
	}
	wanted := make(map[string]struct{}, len(absentNames))
	for _, name := range absentNames {
		if name = strings.TrimSpace(name); name != "" {
			wanted[name] = struct{}{}
		}
	}
	absent := make(map[int]struct{}, len(wanted))
	for slot, name := range names {
		if _, ok := wanted[name]; ok {
			absent[slot] = struct{}{}
		}
	}
	return absent
}
