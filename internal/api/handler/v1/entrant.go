package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/slices-events/slices-api/internal/api/handler/v1/request"
	"github.com/slices-events/slices-api/internal/api/handler/v1/response"
	"github.com/slices-events/slices-api/internal/domain"
	"github.com/slices-events/slices-api/internal/service"
)

type EntrantService interface {
	CreateEntrant(ctx context.Context, entrant domain.Entrant) (domain.Entrant, error)
	GetEntrant(ctx context.Context, id uint) (domain.Entrant, error)
	UpdateProfile(ctx context.Context, entrant domain.Entrant) (domain.Entrant, error)
	DeleteEntrant(ctx context.Context, id uint) error
}

type EntrantEventLister interface {
	EventsForEntrant(ctx context.Context, entrantID uint) ([]*domain.Event, error)
}

type EntrantNotificationLister interface {
	NotificationsForRecipient(ctx context.Context, recipientID uint) ([]domain.Notification, error)
}

type EntrantHandler struct {
	svc           EntrantService
	events        EntrantEventLister
	notifications EntrantNotificationLister
}

func NewEntrantHandler(svc EntrantService, events EntrantEventLister, notifications EntrantNotificationLister) *EntrantHandler {
	return &EntrantHandler{
		svc:           svc,
		events:        events,
		notifications: notifications,
	}
}

// HandleCreateEntrant godoc
// @Summary      Create a new entrant
// @Description  Registers an entrant profile. Email must be unique.
// @Tags         entrants
// @Accept       json
// @Produce      json
// @Param        input  body      request.CreateEntrantRequest  true  "Entrant details"
// @Success      201    {object}  domain.Entrant
// @Failure      400    {object}  response.Err
// @Failure      409    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /entrants [post]
func (h *EntrantHandler) HandleCreateEntrant(ctx *gin.Context) {
	var req request.CreateEntrantRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	entrant, err := h.svc.CreateEntrant(ctx.Request.Context(), domain.Entrant{
		Name:              req.Name,
		Email:             req.Email,
		Phone:             req.Phone,
		NotificationOptIn: req.NotificationOptIn,
	})
	if err != nil {
		if errors.Is(err, service.ErrEntrantEmailExists) {
			response.RenderErr(ctx, response.ErrConflict(err))
			return
		}

		err = fmt.Errorf("HandleCreateEntrant -> h.svc.CreateEntrant -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, entrant)
}

// HandleGetEntrant godoc
// @Summary      Get an entrant
// @Description  Retrieves an entrant profile by id
// @Tags         entrants
// @Produce      json
// @Param        entrantID  path      int  true  "Entrant ID"
// @Success      200  {object}  domain.Entrant
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /entrants/{entrantID} [get]
func (h *EntrantHandler) HandleGetEntrant(ctx *gin.Context) {
	entrantID, respErr := pathID(ctx, "entrantID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	entrant, err := h.svc.GetEntrant(ctx.Request.Context(), entrantID)
	if err != nil {
		if errors.Is(err, service.ErrEntrantNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("entrant", "ID", entrantID))
			return
		}

		err = fmt.Errorf("HandleGetEntrant -> h.svc.GetEntrant -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, entrant)
}

// HandleUpdateEntrant godoc
// @Summary      Update an entrant profile
// @Description  Replaces the entrant's profile fields. A cleared phone stays cleared.
// @Tags         entrants
// @Accept       json
// @Produce      json
// @Param        entrantID  path      int                           true  "Entrant ID"
// @Param        input      body      request.UpdateEntrantRequest  true  "New profile"
// @Success      200  {object}  domain.Entrant
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /entrants/{entrantID} [put]
func (h *EntrantHandler) HandleUpdateEntrant(ctx *gin.Context) {
	entrantID, respErr := pathID(ctx, "entrantID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.UpdateEntrantRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	entrant, err := h.svc.UpdateProfile(ctx.Request.Context(), domain.Entrant{
		ID:                entrantID,
		Name:              req.Name,
		Email:             req.Email,
		Phone:             req.Phone,
		NotificationOptIn: req.NotificationOptIn,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEntrantNotFound):
			response.RenderErr(ctx, response.ErrNotFound("entrant", "ID", entrantID))
		case errors.Is(err, service.ErrEntrantEmailExists):
			response.RenderErr(ctx, response.ErrConflict(err))
		default:
			err = fmt.Errorf("HandleUpdateEntrant -> h.svc.UpdateProfile -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, entrant)
}

// HandleDeleteEntrant godoc
// @Summary      Delete an entrant
// @Description  Deletes the entrant and removes them from every event's roster, waitlist and invitation sets
// @Tags         entrants
// @Produce      json
// @Param        entrantID  path      int  true  "Entrant ID"
// @Success      204
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /entrants/{entrantID} [delete]
func (h *EntrantHandler) HandleDeleteEntrant(ctx *gin.Context) {
	entrantID, respErr := pathID(ctx, "entrantID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.DeleteEntrant(ctx.Request.Context(), entrantID); err != nil {
		if errors.Is(err, service.ErrEntrantNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("entrant", "ID", entrantID))
			return
		}

		err = fmt.Errorf("HandleDeleteEntrant -> h.svc.DeleteEntrant -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleGetEntrantEvents godoc
// @Summary      Get an entrant's events
// @Description  Lists the events the entrant is enrolled in or waitlisted for
// @Tags         entrants,events
// @Produce      json
// @Param        entrantID  path      int  true  "Entrant ID"
// @Success      200  {array}   response.Event
// @Failure      400  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /entrants/{entrantID}/events [get]
func (h *EntrantHandler) HandleGetEntrantEvents(ctx *gin.Context) {
	entrantID, respErr := pathID(ctx, "entrantID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	events, err := h.events.EventsForEntrant(ctx.Request.Context(), entrantID)
	if err != nil {
		err = fmt.Errorf("HandleGetEntrantEvents -> h.events.EventsForEntrant -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.NewEvents(events))
}

// HandleGetEntrantNotifications godoc
// @Summary      Get an entrant's notifications
// @Description  Lists the entrant's notifications, newest first
// @Tags         entrants,notifications
// @Produce      json
// @Param        entrantID  path      int  true  "Entrant ID"
// @Success      200  {array}   domain.Notification
// @Failure      400  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /entrants/{entrantID}/notifications [get]
func (h *EntrantHandler) HandleGetEntrantNotifications(ctx *gin.Context) {
	entrantID, respErr := pathID(ctx, "entrantID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	notifications, err := h.notifications.NotificationsForRecipient(ctx.Request.Context(), entrantID)
	if err != nil {
		err = fmt.Errorf("HandleGetEntrantNotifications -> h.notifications.NotificationsForRecipient -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, notifications)
}
