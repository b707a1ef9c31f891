package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"github.com/randomtoy/oracle-go/internal/app"
	"github.com/randomtoy/oracle-go/internal/domain"
	"github.com/randomtoy/oracle-go/internal/followup"
	"github.com/randomtoy/oracle-go/internal/prompt"
)

const (
	maxQuestionLen = 500
	defaultSpread  = "three-card"
)

type Handler struct {
	svc      *app.ReadingService
	readings *app.ReadingStore
	logger   *slog.Logger
}

func NewHandler(svc *app.ReadingService, readings *app.ReadingStore, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, readings: readings, logger: logger}
}

func (h *Handler) Register(e *echo.Echo) {
	e.GET("/healthz", h.Healthz)

	v1 := e.Group("/v1")
	v1.GET("/spreads", h.ListSpreads)
	v1.POST("/readings", h.CreateReading)
	v1.GET("/readings/:id", h.GetReading)
	v1.DELETE("/readings/:id", h.DeleteReading)
	v1.POST("/readings/:id/interpretations", h.Interpret)
	v1.POST("/readings/:id/followups", h.FollowUp)
}

func (h *Handler) Healthz(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (h *Handler) ListSpreads(c echo.Context) error {
	spreads, err := h.svc.Spreads(c.Request().Context())
	if err != nil {
		return h.mapError(c, err)
	}
	lang := c.QueryParam("lang")
	out := make([]SpreadResponse, len(spreads))
	for i, sp := range spreads {
		out[i] = toSpreadResponse(sp, lang)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) CreateReading(c echo.Context) error {
	var req CreateReadingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	if utf8.RuneCountInString(req.Question) > maxQuestionLen {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "question must be at most 500 characters"})
	}
	mode, err := parseMode(req.Mode)
	if err != nil {
		return h.mapError(c, err)
	}
	if req.Spread == "" {
		req.Spread = defaultSpread
	}

	r, err := h.svc.Read(c.Request().Context(), app.ReadRequest{
		Question: req.Question,
		DeckID:   req.Deck,
		Spread:   req.Spread,
		Mode:     mode,
		Lang:     req.Lang,
	})
	if err != nil {
		return h.mapError(c, err)
	}
	h.readings.Replace(req.Replaces, r)

	return c.JSON(http.StatusCreated, toReadingResponse(r, requestID(c)))
}

func (h *Handler) GetReading(c echo.Context) error {
	r, err := h.readings.Get(c.Param("id"))
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, toReadingResponse(r, requestID(c)))
}

func (h *Handler) DeleteReading(c echo.Context) error {
	if err := h.readings.Delete(c.Param("id")); err != nil {
		return h.mapError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Interpret(c echo.Context) error {
	var req InterpretRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	mode, err := parseMode(req.Mode)
	if err != nil {
		return h.mapError(c, err)
	}
	r, err := h.readings.Get(c.Param("id"))
	if err != nil {
		return h.mapError(c, err)
	}
	if _, err := h.svc.Interpret(c.Request().Context(), r, mode); err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, toReadingResponse(r, requestID(c)))
}

func (h *Handler) FollowUp(c echo.Context) error {
	var req FollowUpRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	if utf8.RuneCountInString(req.Question) > maxQuestionLen {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "question must be at most 500 characters"})
	}
	mode, err := parseMode(req.Mode)
	if err != nil {
		return h.mapError(c, err)
	}
	r, err := h.readings.Get(c.Param("id"))
	if err != nil {
		return h.mapError(c, err)
	}

	tier := domain.ParseTier(req.Tier)
	msg, err := h.svc.Ask(c.Request().Context(), r, app.AskRequest{
		Question: req.Question,
		Tier:     tier,
		Mode:     mode,
	})
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, FollowUpResponse{
		Message:   toMessage(msg),
		Remaining: followup.Remaining(tier, r.FollowUp.Messages()),
	})
}

func parseMode(raw string) (prompt.Mode, error) {
	mode := prompt.Mode(strings.ToLower(strings.TrimSpace(raw)))
	if mode != "" && !mode.Valid() {
		return "", fmt.Errorf("%w: unknown mode %q", domain.ErrInvalidRequest, raw)
	}
	return mode, nil
}

func requestID(c echo.Context) string {
	id, _ := c.Get("request_id").(string)
	return id
}

func (h *Handler) mapError(c echo.Context, err error) error {
	id := requestID(c)

	switch {
	case errors.Is(err, domain.ErrDeckNotFound),
		errors.Is(err, domain.ErrSpreadNotFound),
		errors.Is(err, domain.ErrReadingNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrInvalidRequest):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrQuotaExceeded):
		return c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrAskInFlight):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrNoActiveProvider), errors.Is(err, domain.ErrProviderNotFound):
		h.logger.Error("no usable provider", "request_id", id, "error", err)
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "no AI provider available"})
	case errors.Is(err, domain.ErrPromptTooLong), errors.Is(err, domain.ErrProvider):
		h.logger.Error("upstream provider failure", "request_id", id, "error", err)
		return c.JSON(http.StatusBadGateway, ErrorResponse{Error: "upstream provider failure"})
	default:
		h.logger.Error("internal error", "request_id", id, "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
