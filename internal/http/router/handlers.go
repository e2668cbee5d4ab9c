package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	classadd "fair-draw-service/internal/http/handler/class_add"
	classdelete "fair-draw-service/internal/http/handler/class_delete"
	classlist "fair-draw-service/internal/http/handler/class_list"
	classrename "fair-draw-service/internal/http/handler/class_rename"
	"fair-draw-service/internal/http/handler/common"
	drawpick "fair-draw-service/internal/http/handler/draw_pick"
	drawreset "fair-draw-service/internal/http/handler/draw_reset"
	historyexport "fair-draw-service/internal/http/handler/history_export"
	historyimport "fair-draw-service/internal/http/handler/history_import"
	planprepare "fair-draw-service/internal/http/handler/plan_prepare"
	planstats "fair-draw-service/internal/http/handler/plan_stats"
	rosterget "fair-draw-service/internal/http/handler/roster_get"
	rosterset "fair-draw-service/internal/http/handler/roster_set"
	"fair-draw-service/internal/http/middleware"
	"fair-draw-service/internal/http/swagger"
	"fair-draw-service/internal/service"
)

// Handler агрегирует HTTP-эндпоинты.
type Handler struct {
	service     *service.Service
	swaggerSpec []byte
}

func New(service *service.Service, spec []byte) *Handler {
	return &Handler{service: service, swaggerSpec: spec}
}

// Router возвращает готовый chi.Router со всеми маршрутами и middleware.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.PanicMiddleware)
	r.Use(middleware.LoggerMiddleware)
	r.Use(middleware.MetricsMiddleware)
	swagger.RegisterRoutes(r, h.swaggerSpec)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := h.service.HealthCheck(r.Context()); err != nil {
			slog.ErrorContext(r.Context(), "health check failed", "error", err)
			common.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "degraded",
				"error":  err.Error(),
			})
			return
		}
		common.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Handle("/metrics", promhttp.Handler())

	h.registerClassRoutes(r)
	h.registerRosterRoutes(r)
	h.registerPlanRoutes(r)
	h.registerDrawRoutes(r)
	h.registerHistoryRoutes(r)

	return r
}

func (h *Handler) registerClassRoutes(r chi.Router) {
	r.Route("/classes", func(router chi.Router) {
		classlist.New(h.service).Register(router)
		classadd.New(h.service).Register(router)
		classrename.New(h.service).Register(router)
		classdelete.New(h.service).Register(router)
	})
}

func (h *Handler) registerRosterRoutes(r chi.Router) {
	r.Route("/roster", func(router chi.Router) {
		rosterset.New(h.service).Register(router)
		rosterget.New(h.service).Register(router)
	})
}

func (h *Handler) registerPlanRoutes(r chi.Router) {
	r.Route("/plan", func(router chi.Router) {
		planprepare.New(h.service).Register(router)
		planstats.New(h.service).Register(router)
	})
}

func (h *Handler) registerDrawRoutes(r chi.Router) {
	r.Route("/draw", func(router chi.Router) {
		drawpick.New(h.service).Register(router)
		drawreset.New(h.service).Register(router)
	})
}

func (h *Handler) registerHistoryRoutes(r chi.Router) {
	r.Route("/history", func(router chi.Router) {
		historyexport.New(h.service).Register(router)
		historyimport.New(h.service).Register(router)
	})
}
