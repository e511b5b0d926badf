package api

import (
	"errors"
	"time"

	"github.com/labstack/echo/v4"

	models "TradePulse/internal/domain/models"
	"TradePulse/internal/usecase"
	xhttp "TradePulse/pkg/http"
	xlogger "TradePulse/pkg/logger"
)

// EngineHandler exposes the pipeline's query surface over HTTP.
type EngineHandler struct {
	logger   *xlogger.Logger
	pipeline *usecase.SignalPipeline
}

func NewEngineHandler(logger *xlogger.Logger, pipeline *usecase.SignalPipeline) *EngineHandler {
	return &EngineHandler{logger: logger, pipeline: pipeline}
}

func (h *EngineHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/pairs", h.Pairs)
	g.GET("/trend", h.Trend)
	g.GET("/levels", h.Levels)
	g.GET("/signals", h.Signals)
	g.GET("/signals/executed", h.ExecutedSignals)
	g.POST("/signals/execute", h.ExecuteSignal)
	g.GET("/stats", h.Stats)
}

func (h *EngineHandler) Pairs(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.pipeline.Pairs())
}

func (h *EngineHandler) Trend(c echo.Context) error {
	req := &models.TrendRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.pipeline.GetTrend(req.Pair)
	if err != nil {
		return h.mapError(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *EngineHandler) Levels(c echo.Context) error {
	req := &models.LevelsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.pipeline.GetLevels(req.Pair)
	if err != nil {
		return h.mapError(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *EngineHandler) Signals(c echo.Context) error {
	req := &models.SignalsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.pipeline.GetActiveSignals(req.Pair)
	if err != nil {
		return h.mapError(c, err)
	}
	res = filterSignals(c, res)
	return xhttp.ListResponse(c, res, int64(len(res)))
}

func (h *EngineHandler) ExecutedSignals(c echo.Context) error {
	req := &models.SignalsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.pipeline.GetExecutedSignals(req.Pair)
	if err != nil {
		return h.mapError(c, err)
	}
	res = filterSignals(c, res)
	return xhttp.ListResponse(c, res, int64(len(res)))
}

// filterSignals applies the optional since/limit query params to a signal list.
func filterSignals(c echo.Context, in []models.Signal) []models.Signal {
	since := xhttp.ParseTimeDefault(c.QueryParam("since"), time.Time{})
	if !since.IsZero() {
		out := in[:0]
		for _, s := range in {
			if !s.CreatedAt.Before(since) {
				out = append(out, s)
			}
		}
		in = out
	}
	if limit := xhttp.ParseIntDefault(c.QueryParam("limit"), 0); limit > 0 && limit < len(in) {
		in = in[len(in)-limit:]
	}
	return in
}

func (h *EngineHandler) ExecuteSignal(c echo.Context) error {
	req := &models.ExecuteSignalRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	sig, err := h.pipeline.MarkExecuted(req.Pair, req.Index)
	if err != nil {
		return h.mapError(c, err)
	}
	h.logger.Info("signal marked executed",
		xlogger.String("pair", req.Pair), xlogger.String("id", sig.ID))
	return xhttp.SuccessResponse(c, sig)
}

func (h *EngineHandler) Stats(c echo.Context) error {
	req := &models.StatsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.pipeline.GetStats(req.Pair)
	if err != nil {
		return h.mapError(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *EngineHandler) mapError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, usecase.ErrUnknownPair), errors.Is(err, usecase.ErrNoSuchSignal):
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError(err.Error()))
	default:
		h.logger.Error("engine query failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
}
