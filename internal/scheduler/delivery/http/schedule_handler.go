package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sinclairt/schedulable/internal/entity"
	"github.com/sinclairt/schedulable/internal/scheduler/dto"
	"github.com/sinclairt/schedulable/internal/scheduler/service"
	"github.com/sinclairt/schedulable/pkg/logger"
)

const defaultRunLimit = 50

// ScheduleHandler handles HTTP requests for schedules.
type ScheduleHandler struct {
	scheduleService service.ScheduleService
	logger          *logger.Logger
}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler(scheduleService service.ScheduleService, logger *logger.Logger) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: scheduleService, logger: logger}
}

// RegisterRoutes registers the schedule routes to the Echo group.
func (h *ScheduleHandler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.CreateSchedule)
	g.GET("", h.ListSchedules)
	g.GET("/owner/:type/:id", h.GetScheduleByOwner)
	g.GET("/:id", h.GetScheduleByID)
	g.PUT("/:id", h.UpdateSchedule)
	g.DELETE("/:id", h.DeleteSchedule)
	g.POST("/:id/restore", h.RestoreSchedule)
	g.POST("/:id/run", h.MarkAsRun)
	g.GET("/:id/occurrences", h.Occurrences)
	g.GET("/:id/due", h.IsDue)
	g.GET("/:id/runs", h.ListRuns)
}

// errorStatus maps service errors onto HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, entity.ErrScheduleNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrScheduleExists):
		return http.StatusConflict
	case service.IsValidationError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *ScheduleHandler) fail(c echo.Context, err error) error {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed", logger.ErrorField(err), logger.StringField("path", c.Path()))
		return c.JSON(status, dto.ErrorResponse{Error: "Internal server error"})
	}
	return c.JSON(status, dto.ErrorResponse{Error: err.Error()})
}

func scheduleID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid schedule ID")
	}
	return uint(id), nil
}

// CreateSchedule godoc
// @Summary Create a schedule
// @Description Attach a new schedule to an owner. Cron is applied first, then category, then individual fields.
// @Tags schedules
// @Accept  json
// @Produce  json
// @Param   schedule  body    dto.CreateScheduleRequest   true    "Schedule to create"
// @Success 201 {object} dto.ScheduleResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /schedules [post]
func (h *ScheduleHandler) CreateSchedule(c echo.Context) error {
	var req dto.CreateScheduleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request payload"})
	}

	resp, err := h.scheduleService.CreateSchedule(c.Request().Context(), &req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, resp)
}

// ListSchedules godoc
// @Summary List schedules
// @Description List schedules, optionally restricted to a category, an instant they fire at or a range they fire in
// @Tags schedules
// @Produce  json
// @Param   category         query   string  false   "Category"
// @Param   due_on           query   string  false   "RFC 3339 instant the schedule fires at"
// @Param   from             query   string  false   "RFC 3339 range start"
// @Param   to               query   string  false   "RFC 3339 range end"
// @Param   active           query   bool    false   "Only schedules inside their activity window"
// @Param   include_trashed  query   bool    false   "Include soft-deleted schedules"
// @Success 200 {array} dto.ScheduleResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /schedules [get]
func (h *ScheduleHandler) ListSchedules(c echo.Context) error {
	var req dto.ListSchedulesRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid query parameters"})
	}
	filter, err := req.Filter()
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	}

	schedules, err := h.scheduleService.ListSchedules(c.Request().Context(), filter)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, schedules)
}

// GetScheduleByID godoc
// @Summary Get a schedule by ID
// @Tags schedules
// @Produce  json
// @Param   id  path    int true    "Schedule ID"
// @Success 200 {object} dto.ScheduleResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /schedules/{id} [get]
func (h *ScheduleHandler) GetScheduleByID(c echo.Context) error {
	id, err := scheduleID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	}

	resp, err := h.scheduleService.GetScheduleByID(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetScheduleByOwner godoc
// @Summary Get the schedule of an owner
// @Tags schedules
// @Produce  json
// @Param   type  path    string  true    "Schedulable type"
// @Param   id    path    int     true    "Schedulable ID"
// @Success 200 {object} dto.ScheduleResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /schedules/owner/{type}/{id} [get]
func (h *ScheduleHandler) GetScheduleByOwner(c echo.Context) error {
	ownerID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid schedulable ID"})
	}

	resp, err := h.scheduleService.GetScheduleByOwner(c.Request().Context(), c.Param("type"), uint(ownerID))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// UpdateSchedule godoc
// @Summary Update a schedule
// @Description Apply field changes to a schedule. With reset set the schedule is cleared first.
// @Tags schedules
// @Accept  json
// @Produce  json
// @Param   id        path    int                         true    "Schedule ID"
// @Param   schedule  body    dto.UpdateScheduleRequest   true    "Changes to apply"
// @Success 200 {object} dto.ScheduleResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /schedules/{id} [put]
func (h *ScheduleHandler) UpdateSchedule(c echo.Context) error {
	id, err := scheduleID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	}

	var req dto.UpdateScheduleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request payload"})
	}

	resp, err := h.scheduleService.UpdateSchedule(c.Request().Context(), id, &req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// DeleteSchedule godoc
// @Summary Delete a schedule
// @Description Soft-delete a schedule. It can be restored later.
// @Tags schedules
// @Param   id  path    int true    "Schedule ID"
// @Success 204 {object} nil
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /schedules/{id} [delete]
func (h *ScheduleHandler) DeleteSchedule(c echo.Context) error {
	id, err := scheduleID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	}

	if err := h.scheduleService.DeleteSchedule(c.Request().Context(), id); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// RestoreSchedule godoc
// @Summary Restore a deleted schedule
// @Tags schedules
// @Produce  json
// @Param   id  path    int true    "Schedule ID"
// @Success 200 {object} dto.ScheduleResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /schedules/{id}/restore [post]
func (h *ScheduleHandler) RestoreSchedule(c echo.Context) error {
	id, err := scheduleID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	}

	resp, err := h.scheduleService.RestoreSchedule(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// MarkAsRun godoc
// @Summary Mark a schedule as run
// @Description Record a manual run now and advance next_run_at
// @Tags schedules
// @Produce  json
// @Param   id  path    int true    "Schedule ID"
// @Success 200 {object} dto.ScheduleResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /schedules/{id}/run [post]
func (h *ScheduleHandler) MarkAsRun(c echo.Context) error {
	id, err := scheduleID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	}

	resp, err := h.scheduleService.MarkAsRun(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Occurrences godoc
// @Summary List occurrences of a schedule
// @Tags schedules
// @Produce  json
// @Param   id         path    int     true    "Schedule ID"
// @Param   direction  query   string  false   "next, previous or between" Enums(next, previous, between)
// @Param   count      query   int     false   "Number of occurrences, at most 1000"
// @Param   from       query   string  false   "RFC 3339 reference or range start"
// @Param   to         query   string  false   "RFC 3339 range end"
// @Success 200 {object} dto.OccurrencesResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /schedules/{id}/occurrences [get]
func (h *ScheduleHandler) Occurrences(c echo.Context) error {
	id, err := scheduleID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	}

	var req dto.OccurrencesRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid query parameters"})
	}

	resp, err := h.scheduleService.Occurrences(c.Request().Context(), id, &req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// IsDue godoc
// @Summary Check whether a schedule fires at an instant
// @Tags schedules
// @Produce  json
// @Param   id  path    int     true    "Schedule ID"
// @Param   at  query   string  false   "RFC 3339 instant, defaults to now"
// @Success 200 {object} dto.DueResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /schedules/{id}/due [get]
func (h *ScheduleHandler) IsDue(c echo.Context) error {
	id, err := scheduleID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	}

	var at time.Time
	if raw := c.QueryParam("at"); raw != "" {
		if at, err = time.Parse(time.RFC3339, raw); err != nil {
			return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid at parameter"})
		}
	}

	resp, err := h.scheduleService.IsDue(c.Request().Context(), id, at)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// ListRuns godoc
// @Summary List recorded runs of a schedule
// @Tags schedules
// @Produce  json
// @Param   id     path    int  true    "Schedule ID"
// @Param   limit  query   int  false   "Maximum number of runs, newest first"
// @Success 200 {array} dto.ScheduleRunResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /schedules/{id}/runs [get]
func (h *ScheduleHandler) ListRuns(c echo.Context) error {
	id, err := scheduleID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	}

	limit := defaultRunLimit
	if raw := c.QueryParam("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil || limit <= 0 {
			return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid limit parameter"})
		}
	}

	runs, err := h.scheduleService.ListRuns(c.Request().Context(), id, limit)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, runs)
}
