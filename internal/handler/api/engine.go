package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"SimPulse/internal/domain/models"
	domrepo "SimPulse/internal/domain/repository"
	icache "SimPulse/internal/service/cache"
	"SimPulse/internal/service/stream"
	"SimPulse/internal/services/market"
	"SimPulse/internal/usecase"
	xhttp "SimPulse/pkg/http"
	applogger "SimPulse/pkg/logger"
)

// candlesCacheTTL keeps repeated chart pulls off the scheduler loop.
const candlesCacheTTL = 500 * time.Millisecond

// EngineHandler exposes the control and query surface plus the observer
// WebSocket. All routes go through the engine's command channel; the handler
// holds no market state of its own.
type EngineHandler struct {
	engine *usecase.Engine
	deals  domrepo.DealStore
	hub    *stream.Hub
	cache  *icache.TTLCache
	l      *applogger.Logger
}

func NewEngineHandler(engine *usecase.Engine, deals domrepo.DealStore, hub *stream.Hub, l *applogger.Logger) *EngineHandler {
	return &EngineHandler{
		engine: engine,
		deals:  deals,
		hub:    hub,
		cache:  icache.NewTTLCache(),
		l:      l,
	}
}

// RegisterRoutes mounts the API.
func (h *EngineHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/state", h.State)
	g.GET("/symbols", h.Symbols)
	g.GET("/candles", h.Candles)
	g.GET("/signals", h.Signals)
	g.GET("/rules", h.Rules)
	g.POST("/market", h.SetMarket)
	g.POST("/timeframe", h.SetTimeframe)
	g.POST("/regime", h.SetRegime)
	g.POST("/event", h.TriggerEvent)
	g.POST("/deals", h.ScheduleDeal)
	g.GET("/deals", h.ListDeals)
	g.GET("/deals/:id", h.GetDeal)

	e.GET("/ws", h.Observe)
	e.GET("/healthz", h.Health)
}

func (h *EngineHandler) State(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.engine.Snapshot())
}

func (h *EngineHandler) Symbols(c echo.Context) error {
	return xhttp.SuccessResponse(c, market.Symbols())
}

func (h *EngineHandler) Candles(c echo.Context) error {
	req := new(models.CandlesRequest)
	if errs := xhttp.ReadAndValidateRequest(c, req); errs != nil {
		return xhttp.BadRequestResponse(c, errs)
	}
	key := "candles:" + c.QueryParam("limit")
	if v, ok := h.cache.Get(key); ok {
		return xhttp.SuccessResponse(c, v)
	}
	out := h.engine.RecentCandles(req.Limit)
	h.cache.Set(key, out, candlesCacheTTL)
	return xhttp.SuccessResponse(c, out)
}

func (h *EngineHandler) Signals(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.engine.LatestSignals())
}

func (h *EngineHandler) Rules(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.engine.Rules())
}

func (h *EngineHandler) SetMarket(c echo.Context) error {
	req := new(models.SetMarketRequest)
	if errs := xhttp.ReadAndValidateRequest(c, req); errs != nil {
		return xhttp.BadRequestResponse(c, errs)
	}
	st, err := h.engine.SetMarket(req.Symbol)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
	}
	h.l.Info("market selected", applogger.String("symbol", req.Symbol))
	return xhttp.SuccessResponse(c, st)
}

func (h *EngineHandler) SetTimeframe(c echo.Context) error {
	req := new(models.SetTimeframeRequest)
	if errs := xhttp.ReadAndValidateRequest(c, req); errs != nil {
		return xhttp.BadRequestResponse(c, errs)
	}
	st, err := h.engine.SetTimeframe(domrepo.Timeframe(req.TF))
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
	}
	return xhttp.SuccessResponse(c, st)
}

func (h *EngineHandler) SetRegime(c echo.Context) error {
	req := new(models.SetRegimeRequest)
	if errs := xhttp.ReadAndValidateRequest(c, req); errs != nil {
		return xhttp.BadRequestResponse(c, errs)
	}
	st, err := h.engine.SetRegime(models.RegimeKind(req.Override), req.Intensity)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
	}
	return xhttp.SuccessResponse(c, st)
}

func (h *EngineHandler) TriggerEvent(c echo.Context) error {
	req := new(models.TriggerEventRequest)
	if errs := xhttp.ReadAndValidateRequest(c, req); errs != nil {
		return xhttp.BadRequestResponse(c, errs)
	}
	st, err := h.engine.TriggerEvent(models.EventKind(req.Kind), req.Strength)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
	}
	return xhttp.SuccessResponse(c, st)
}

func (h *EngineHandler) ScheduleDeal(c echo.Context) error {
	if h.deals == nil {
		return xhttp.AppErrorResponse(c, xhttp.InternalError("deal store unavailable"))
	}
	req := new(models.ScheduleDealRequest)
	if errs := xhttp.ReadAndValidateRequest(c, req); errs != nil {
		return xhttp.BadRequestResponse(c, errs)
	}
	if !market.Known(req.Symbol) {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("unknown symbol %q", req.Symbol))
	}
	startAt, ok := xhttp.ParseTime(req.StartAt)
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("startAt must be RFC3339 or unix seconds"))
	}
	jumps := make([]models.Jump, 0, len(req.Jumps))
	for _, j := range req.Jumps {
		jumps = append(jumps, models.Jump{DelaySec: j.DelaySec, MagnitudePct: j.MagnitudePct, HoldSec: j.HoldSec})
	}
	d := &models.Deal{
		ID:          uuid.NewString(),
		Symbol:      req.Symbol,
		Label:       req.Label,
		BasePrice:   req.BasePrice,
		StartAt:     startAt,
		DurationSec: req.DurationSec,
		DropDelay:   req.DropDelay,
		DropPct:     req.DropPct,
		Jumps:       jumps,
	}
	if err := h.deals.Schedule(c.Request().Context(), d); err != nil {
		h.l.Error("deal schedule failed", applogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("could not schedule deal"))
	}
	h.l.Info("deal scheduled",
		applogger.String("deal", d.ID),
		applogger.String("symbol", d.Symbol),
		applogger.String("start_at", startAt.Format(time.RFC3339)))
	return xhttp.CreatedResponse(c, d)
}

func (h *EngineHandler) ListDeals(c echo.Context) error {
	if h.deals == nil {
		return xhttp.ListResponse(c, []*models.Deal{}, 0)
	}
	limit := xhttp.ParseIntDefault(c.QueryParam("limit"), 50)
	deals, err := h.deals.List(c.Request().Context(), limit)
	if err != nil {
		h.l.Error("deal list failed", applogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("could not list deals"))
	}
	return xhttp.ListResponse(c, deals, int64(len(deals)))
}

func (h *EngineHandler) GetDeal(c echo.Context) error {
	if h.deals == nil {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("deal store unavailable"))
	}
	d, err := h.deals.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		h.l.Error("deal get failed", applogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("could not load deal"))
	}
	if d == nil {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("deal %s not found", c.Param("id")))
	}
	return xhttp.SuccessResponse(c, d)
}

// Observe upgrades the connection and attaches it to the broadcast hub.
func (h *EngineHandler) Observe(c echo.Context) error {
	return h.hub.Serve(c.Response(), c.Request())
}

func (h *EngineHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"status":    "ok",
		"observers": h.hub.ClientCount(),
		"price":     h.engine.CurrentPrice(),
	})
}

var _ xhttp.Handler = (*EngineHandler)(nil)
