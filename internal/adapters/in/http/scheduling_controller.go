package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/suchimauz/clinic-scheduling-engine/internal/config"
	"github.com/suchimauz/clinic-scheduling-engine/internal/core/domain"
	"github.com/suchimauz/clinic-scheduling-engine/internal/core/json_types"
	"github.com/suchimauz/clinic-scheduling-engine/internal/core/ports/in"
	"github.com/suchimauz/clinic-scheduling-engine/internal/core/ports/out"
)

var timeNow = time.Now

const requestIDHeader = "X-Request-ID"

// RequestObserver метрики HTTP-запросов, может быть nil
type RequestObserver interface {
	ObserveHTTPRequest(method, route string, status int, seconds float64)
}

type SchedulingController struct {
	useCase  in.SchedulingUseCase
	cfg      *config.Config
	logger   out.LoggerPort
	observer RequestObserver
	gatherer prometheus.Gatherer
}

func NewSchedulingController(
	useCase in.SchedulingUseCase,
	cfg *config.Config,
	logger out.LoggerPort,
	observer RequestObserver,
	gatherer prometheus.Gatherer,
) *SchedulingController {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &SchedulingController{
		useCase:  useCase,
		cfg:      cfg,
		logger:   logger.WithModule("HttpController"),
		observer: observer,
		gatherer: gatherer,
	}
}

func (c *SchedulingController) RegisterRoutes(router *gin.Engine) {
	router.Use(requestID(), c.observeRequests())
	router.GET("/healthz", c.healthz)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})))

	api := router.Group("/api/v1")
	api.Use(jwtAuth(c.cfg.Auth.JWTSecret, c.logger))
	{
		doctors := api.Group("/doctors/:doctorId")
		doctors.GET("/availability", c.listAvailability)
		doctors.POST("/availability", requireRole(domain.RoleDoctor), c.addAvailability)
		doctors.DELETE("/availability/:ruleId", requireRole(domain.RoleDoctor), c.removeAvailability)
		doctors.GET("/slots", c.bookableSlots)
		doctors.GET("/schedule", c.daySchedule)
		doctors.GET("/dashboard", requireRole(domain.RoleDoctor), c.dashboard)

		appointments := api.Group("/appointments")
		appointments.POST("", requireRole(domain.RolePatient), c.book)
		appointments.PATCH("/:appointmentId", requireRole(domain.RolePatient), c.editAppointment)
		appointments.POST("/:appointmentId/reschedule", requireRole(domain.RolePatient), c.reschedule)
		appointments.POST("/:appointmentId/status", c.updateStatus)
		appointments.POST("/:appointmentId/cancel", c.cancel)
	}
}

type AddAvailabilityRequest struct {
	DayOfWeek           domain.Weekday   `json:"day_of_week"`
	StartTime           *json_types.Time `json:"start_time"`
	EndTime             *json_types.Time `json:"end_time"`
	SlotDurationMinutes int              `json:"slot_duration_minutes"`
}

type BookRequest struct {
	DoctorID json_types.ID    `json:"doctor"`
	Date     *json_types.Date `json:"date"`
	Time     *json_types.Time `json:"time"`
	Severity domain.Severity  `json:"severity"`
	Symptoms string           `json:"symptoms"`
}

type RescheduleRequest struct {
	Date *json_types.Date `json:"date"`
	Time *json_types.Time `json:"time"`
}

type UpdateStatusRequest struct {
	Status domain.AppointmentStatus `json:"status" binding:"required"`
}

func (c *SchedulingController) healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok", "version": c.cfg.App.Version})
}

func (c *SchedulingController) listAvailability(ctx *gin.Context) {
	rules, err := c.useCase.ListAvailabilityRules(ctx.Request.Context(), json_types.ID(ctx.Param("doctorId")))
	if err != nil {
		c.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"rules": rules})
}

func (c *SchedulingController) addAvailability(ctx *gin.Context) {
	doctorID, ok := c.ownDoctor(ctx)
	if !ok {
		return
	}

	var req AddAvailabilityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		abortWithError(ctx, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if req.StartTime == nil || req.EndTime == nil {
		abortWithError(ctx, http.StatusBadRequest, "invalid_request", "start_time and end_time are required")
		return
	}

	rule, warnings, err := c.useCase.AddAvailabilityRule(ctx.Request.Context(), domain.AvailabilityRule{
		DoctorID:            doctorID,
		DayOfWeek:           req.DayOfWeek,
		StartTime:           *req.StartTime,
		EndTime:             *req.EndTime,
		SlotDurationMinutes: req.SlotDurationMinutes,
	})
	if err != nil {
		c.writeError(ctx, err)
		return
	}

	if warnings == nil {
		warnings = []domain.RuleWarning{}
	}
	ctx.JSON(http.StatusCreated, gin.H{"rule": rule, "warnings": warnings})
}

func (c *SchedulingController) removeAvailability(ctx *gin.Context) {
	doctorID, ok := c.ownDoctor(ctx)
	if !ok {
		return
	}

	err := c.useCase.RemoveAvailabilityRule(ctx.Request.Context(), doctorID, json_types.ID(ctx.Param("ruleId")))
	if err != nil {
		c.writeError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (c *SchedulingController) bookableSlots(ctx *gin.Context) {
	date, ok := dateQuery(ctx)
	if !ok {
		return
	}

	slots, err := c.useCase.GetBookableSlots(ctx.Request.Context(), json_types.ID(ctx.Param("doctorId")), date)
	if err != nil {
		c.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"date": date, "slots": slots})
}

func (c *SchedulingController) daySchedule(ctx *gin.Context) {
	date, ok := dateQuery(ctx)
	if !ok {
		return
	}

	slots, err := c.useCase.GetDaySchedule(ctx.Request.Context(), json_types.ID(ctx.Param("doctorId")), date)
	if err != nil {
		c.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"date": date, "slots": slots})
}

func (c *SchedulingController) dashboard(ctx *gin.Context) {
	doctorID, ok := c.ownDoctor(ctx)
	if !ok {
		return
	}

	dashboard, err := c.useCase.DoctorDashboard(ctx.Request.Context(), doctorID)
	if err != nil {
		c.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dashboard)
}

func (c *SchedulingController) book(ctx *gin.Context) {
	var req BookRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		abortWithError(ctx, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if req.DoctorID.IsEmpty() || req.Date == nil || req.Time == nil {
		abortWithError(ctx, http.StatusBadRequest, "invalid_request", "doctor, date and time are required")
		return
	}

	appointment, err := c.useCase.Book(ctx.Request.Context(), domain.BookingRequest{
		DoctorID:  req.DoctorID,
		PatientID: actorFrom(ctx).ID,
		Date:      *req.Date,
		Time:      *req.Time,
		Severity:  req.Severity,
		Symptoms:  req.Symptoms,
	})
	if err != nil {
		c.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, appointment)
}

func (c *SchedulingController) editAppointment(ctx *gin.Context) {
	var edit domain.AppointmentEdit
	if err := ctx.ShouldBindJSON(&edit); err != nil {
		abortWithError(ctx, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	appointment, err := c.useCase.EditAppointment(
		ctx.Request.Context(),
		json_types.ID(ctx.Param("appointmentId")),
		actorFrom(ctx).ID,
		edit,
	)
	if err != nil {
		c.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, appointment)
}

func (c *SchedulingController) reschedule(ctx *gin.Context) {
	var req RescheduleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		abortWithError(ctx, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if req.Date == nil || req.Time == nil {
		abortWithError(ctx, http.StatusBadRequest, "invalid_request", "date and time are required")
		return
	}

	appointment, err := c.useCase.Reschedule(
		ctx.Request.Context(),
		json_types.ID(ctx.Param("appointmentId")),
		*req.Date,
		*req.Time,
		actorFrom(ctx).ID,
	)
	if err != nil {
		c.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, appointment)
}

func (c *SchedulingController) updateStatus(ctx *gin.Context) {
	var req UpdateStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		abortWithError(ctx, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if !req.Status.IsValid() {
		abortWithError(ctx, http.StatusBadRequest, "invalid_request", "unknown status")
		return
	}

	appointment, err := c.useCase.UpdateStatus(
		ctx.Request.Context(),
		json_types.ID(ctx.Param("appointmentId")),
		actorFrom(ctx),
		req.Status,
	)
	if err != nil {
		c.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, appointment)
}

func (c *SchedulingController) cancel(ctx *gin.Context) {
	appointment, err := c.useCase.Cancel(
		ctx.Request.Context(),
		json_types.ID(ctx.Param("appointmentId")),
		actorFrom(ctx),
	)
	if err != nil {
		c.writeError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, appointment)
}

// ownDoctor врач управляет только своей доступностью
func (c *SchedulingController) ownDoctor(ctx *gin.Context) (json_types.ID, bool) {
	doctorID := json_types.ID(ctx.Param("doctorId"))
	if actorFrom(ctx).ID != doctorID {
		abortWithError(ctx, http.StatusForbidden, "forbidden", domain.ReasonNotOwner.Message())
		return "", false
	}
	return doctorID, true
}

func dateQuery(ctx *gin.Context) (json_types.Date, bool) {
	raw := ctx.Query("date")
	if raw == "" {
		abortWithError(ctx, http.StatusBadRequest, "invalid_request", "date query parameter is required")
		return json_types.Date{}, false
	}
	date, err := json_types.ParseDate(raw)
	if err != nil {
		abortWithError(ctx, http.StatusBadRequest, "invalid_request", "Invalid date format")
		return json_types.Date{}, false
	}
	return date, true
}

// writeError переводит ошибки сервиса в коды ответа
func (c *SchedulingController) writeError(ctx *gin.Context, err error) {
	var rejection *domain.Rejection
	var configErr *domain.ConfigurationError

	switch {
	case errors.As(err, &rejection):
		status := http.StatusUnprocessableEntity
		if rejection.Reason == domain.ReasonSlotAlreadyBooked {
			status = http.StatusConflict
		}
		body := gin.H{
			"error":   "rejected",
			"reason":  rejection.Reason,
			"message": rejection.Reason.Message(),
		}
		if !rejection.AppointmentID.IsEmpty() {
			body["appointment"] = rejection.AppointmentID
		}
		ctx.AbortWithStatusJSON(status, body)
	case errors.As(err, &configErr):
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_rule",
			"field":   configErr.Field,
			"message": configErr.Message,
		})
	case errors.Is(err, domain.ErrAuthenticationMissing):
		abortWithError(ctx, http.StatusUnauthorized, "authentication_missing", "Please log in again.")
	case errors.Is(err, domain.ErrNotFound):
		abortWithError(ctx, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrStoreUnavailable):
		c.logger.Error("http.store_unavailable", out.LogFields{
			"requestId": ctx.GetString(requestIDHeader),
			"path":      ctx.FullPath(),
			"error":     err.Error(),
		})
		abortWithError(ctx, http.StatusBadGateway, "store_unavailable", "The clinic backend is unavailable.")
	default:
		c.logger.Error("http.internal_error", out.LogFields{
			"requestId": ctx.GetString(requestIDHeader),
			"path":      ctx.FullPath(),
			"error":     err.Error(),
		})
		abortWithError(ctx, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func abortWithError(ctx *gin.Context, status int, code, message string) {
	ctx.AbortWithStatusJSON(status, gin.H{"error": code, "message": message})
}

func (c *SchedulingController) observeRequests() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := timeNow()
		ctx.Next()

		if c.observer == nil {
			return
		}
		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		c.observer.ObserveHTTPRequest(ctx.Request.Method, route, ctx.Writer.Status(), timeNow().Sub(start).Seconds())
	}
}

// requestID сквозной идентификатор запроса для логов
func requestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := ctx.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		ctx.Set(requestIDHeader, id)
		ctx.Header(requestIDHeader, id)
		ctx.Next()
	}
}
