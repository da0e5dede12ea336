package booking

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/therapy-scheduler/internal/model"
	"github.com/jwalitptl/therapy-scheduler/internal/scheduling"
	apperrors "github.com/jwalitptl/therapy-scheduler/pkg/errors"
	"github.com/jwalitptl/therapy-scheduler/pkg/httputil"
	"github.com/jwalitptl/therapy-scheduler/pkg/validator"
)

// Service is the part of the booking service the HTTP layer needs.
type Service interface {
	ListTherapists(ctx context.Context) ([]*model.Therapist, error)
	ListRooms(ctx context.Context) ([]*model.Room, error)
	CheckSlot(ctx context.Context, req *model.CheckSlotRequest) (scheduling.Availability, error)
	CheckRecurring(ctx context.Context, req *model.RecurringCheckRequest) (*model.RecurringCheckResponse, error)
	FindAlternatives(ctx context.Context, req *model.AlternativesRequest) (*model.AlternativesResponse, error)
	Book(ctx context.Context, req *model.BookRequest) (*model.BookResponse, error)
	ListAppointments(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
	CancelAppointment(ctx context.Context, id, reason string) error
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/therapists", h.ListTherapists)
	r.GET("/rooms", h.ListRooms)

	availability := r.Group("/availability")
	{
		availability.POST("/check", h.CheckSlot)
		availability.POST("/recurring", h.CheckRecurring)
		availability.POST("/alternatives", h.FindAlternatives)
	}

	appointments := r.Group("/appointments")
	{
		appointments.POST("", h.Book)
		appointments.GET("", h.ListAppointments)
		appointments.DELETE("/:id", h.CancelAppointment)
	}
}

func bindError(c *gin.Context, err error) {
	httputil.RespondWithError(c, apperrors.BadRequest(validator.Describe(err), err))
}

func (h *Handler) ListTherapists(c *gin.Context) {
	therapists, err := h.service.ListTherapists(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, therapists)
}

func (h *Handler) ListRooms(c *gin.Context) {
	rooms, err := h.service.ListRooms(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, rooms)
}

func (h *Handler) CheckSlot(c *gin.Context) {
	var req model.CheckSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.service.CheckSlot(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, result)
}

func (h *Handler) CheckRecurring(c *gin.Context) {
	var req model.RecurringCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	resp, err := h.service.CheckRecurring(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, resp)
}

func (h *Handler) FindAlternatives(c *gin.Context) {
	var req model.AlternativesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	resp, err := h.service.FindAlternatives(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, resp)
}

// Book answers 201 when appointments were written and 409 with the full
// report when the request was rejected because of conflicts.
func (h *Handler) Book(c *gin.Context) {
	var req model.BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	resp, err := h.service.Book(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if len(resp.Created) == 0 {
		c.JSON(http.StatusConflict, httputil.Response{
			Success: false,
			Data:    resp,
			Error: &httputil.Error{
				Code:    http.StatusConflict,
				Message: resp.Report.Message,
			},
		})
		return
	}
	httputil.RespondWithStatus(c, http.StatusCreated, resp)
}

func (h *Handler) ListAppointments(c *gin.Context) {
	var filters model.AppointmentFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		bindError(c, err)
		return
	}

	appointments, err := h.service.ListAppointments(c.Request.Context(), &filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appointments)
}

func (h *Handler) CancelAppointment(c *gin.Context) {
	var req model.CancelRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
	}

	if err := h.service.CancelAppointment(c.Request.Context(), c.Param("id"), req.Reason); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"id": c.Param("id"), "status": model.AppointmentStatusCancelled})
}
