package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"AtlasQuant/internal/domain/models"
	drepo "AtlasQuant/internal/domain/repository"
	"AtlasQuant/internal/services/analytics"
	"AtlasQuant/internal/usecase"
	xhttp "AtlasQuant/pkg/http"
	xlogger "AtlasQuant/pkg/logger"

	"github.com/labstack/echo/v4"
)

const healthTimeout = 2 * time.Second

// DecisionsHandler exposes the decision pipeline over HTTP: analysis,
// order submission, screener, ledger and universe reads.
type DecisionsHandler struct {
	logger   *xlogger.Logger
	analyzer *usecase.Analyzer
	orders   *usecase.OrderService
	screener *usecase.Screener
	ledger   drepo.LedgerStore
	universe drepo.UniverseStore
	tape     *usecase.TapeCollector
}

func NewDecisionsHandler(
	logger *xlogger.Logger,
	analyzer *usecase.Analyzer,
	orders *usecase.OrderService,
	screener *usecase.Screener,
	ledger drepo.LedgerStore,
	universe drepo.UniverseStore,
	tape *usecase.TapeCollector,
) *DecisionsHandler {
	return &DecisionsHandler{
		logger:   logger,
		analyzer: analyzer,
		orders:   orders,
		screener: screener,
		ledger:   ledger,
		universe: universe,
		tape:     tape,
	}
}

func (h *DecisionsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/analyze", h.Analyze)
	g.POST("/orders", h.SubmitOrder)
	g.GET("/screener", h.Screener)
	g.GET("/ledger", h.Ledger)
	g.GET("/universe", h.Universe)
	g.POST("/universe", h.UpsertUniverse)
	g.GET("/health", h.Health)
}

// toAppError maps domain errors onto HTTP-facing ones. Config and data
// errors are caller problems, everything else stays a 500.
func toAppError(err error) error {
	var cfgErr *analytics.ConfigError
	if errors.As(err, &cfgErr) {
		return xhttp.NewAppError("ERR_CONFIG", cfgErr.Field, cfgErr.Msg, http.StatusBadRequest).WithError(err)
	}
	var dataErr *analytics.DataError
	if errors.As(err, &dataErr) {
		return xhttp.NewAppError("ERR_DATA", dataErr.Op, dataErr.Msg, http.StatusUnprocessableEntity).WithError(err)
	}
	return err
}

func (h *DecisionsHandler) Analyze(c echo.Context) error {
	req := &models.AnalyzeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	report, err := h.analyzer.Analyze(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("analyze usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.SuccessResponse(c, report)
}

func (h *DecisionsHandler) SubmitOrder(c echo.Context) error {
	req := &models.OrderRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.orders.Submit(c.Request().Context(), req)
	if err != nil {
		h.logger.Error("order usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *DecisionsHandler) Screener(c echo.Context) error {
	req := &models.ScreenerRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	rows, err := h.screener.Scan(c.Request().Context(), req.Category, req.Sample)
	if err != nil {
		h.logger.Error("screener usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err))
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *DecisionsHandler) Ledger(c echo.Context) error {
	req := &models.LedgerRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	rows, err := h.ledger.ReadLedger(c.Request().Context(), req.Limit)
	if err != nil {
		h.logger.Error("ledger read error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *DecisionsHandler) Universe(c echo.Context) error {
	req := &models.UniverseRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	rows, err := h.universe.List(c.Request().Context(), req.Category, req.OnlyActive)
	if err != nil {
		h.logger.Error("universe read error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *DecisionsHandler) UpsertUniverse(c echo.Context) error {
	var rows []models.Instrument
	if err := c.Bind(&rows); err != nil {
		return xhttp.BadRequestResponse(c, err.Error())
	}
	if len(rows) == 0 {
		return xhttp.BadRequestResponse(c, "no instruments")
	}

	n, err := h.universe.Upsert(c.Request().Context(), rows)
	if err != nil {
		h.logger.Error("universe upsert error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, map[string]int{"written": n})
}

// Health reports ledger connectivity and tape status.
func (h *DecisionsHandler) Health(c echo.Context) error {
	status := "ok"
	var problems []string

	ctx, cancel := context.WithTimeout(c.Request().Context(), healthTimeout)
	defer cancel()
	if err := h.ledger.Health(ctx); err != nil {
		status = "degraded"
		problems = append(problems, "ledger: "+err.Error())
	}

	tapeUp := h.tape != nil && h.tape.IsConnected()
	if h.tape != nil && !tapeUp {
		status = "degraded"
		problems = append(problems, "tape: disconnected")
	}

	body := map[string]interface{}{
		"status":  status,
		"tape_up": tapeUp,
	}
	if len(problems) > 0 {
		body["problems"] = problems
	}
	return xhttp.SuccessResponse(c, body)
}
