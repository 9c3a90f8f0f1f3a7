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

type NotificationService interface {
	NotificationsForEvent(ctx context.Context, eventID uint, typ domain.NotificationType) ([]domain.Notification, error)
	AcceptInvitation(ctx context.Context, id string) error
	DeclineInvitation(ctx context.Context, id string) error
	StayNotSelected(ctx context.Context, id string) error
	LeaveNotSelected(ctx context.Context, id string) error
	MarkRead(ctx context.Context, id string) error
	SendBulk(ctx context.Context, eventID, senderID uint, recipientIDs []uint, title, body string) error
}

type NotificationHandler struct {
	svc NotificationService
}

func NewNotificationHandler(svc NotificationService) *NotificationHandler {
	return &NotificationHandler{
		svc: svc,
	}
}

// HandleSendBulk godoc
// @Summary      Send a bulk notification
// @Description  Sends a general notification from an organizer to a list of recipients
// @Tags         notifications
// @Accept       json
// @Produce      json
// @Param        input  body  request.BulkNotificationRequest  true  "Notification details"
// @Success      201
// @Failure      400  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /notifications [post]
func (h *NotificationHandler) HandleSendBulk(ctx *gin.Context) {
	var req request.BulkNotificationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	err := h.svc.SendBulk(ctx.Request.Context(), req.EventID, req.SenderID, req.RecipientIDs, req.Title, req.Body)
	if err != nil {
		err = fmt.Errorf("HandleSendBulk -> h.svc.SendBulk -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"message": "notifications sent"})
}

// HandleGetEventNotifications godoc
// @Summary      Get an event's notifications
// @Description  Lists an event's notifications, optionally filtered by type
// @Tags         events,notifications
// @Produce      json
// @Param        eventID  path   int     true   "Event ID"
// @Param        type     query  string  false  "Notification type (general, invitation, not_selected)"
// @Success      200  {array}   domain.Notification
// @Failure      400  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/{eventID}/notifications [get]
func (h *NotificationHandler) HandleGetEventNotifications(ctx *gin.Context) {
	eventID, respErr := pathID(ctx, "eventID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	notifications, err := h.svc.NotificationsForEvent(ctx.Request.Context(), eventID, domain.NotificationType(ctx.Query("type")))
	if err != nil {
		err = fmt.Errorf("HandleGetEventNotifications -> h.svc.NotificationsForEvent -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, notifications)
}

// HandleAcceptInvitation godoc
// @Summary      Accept an invitation
// @Description  Accepts a lottery invitation, moving the recipient from the waitlist onto the roster
// @Tags         notifications
// @Produce      json
// @Param        notificationID  path  string  true  "Notification ID"
// @Success      200
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /notifications/{notificationID}/accept [post]
func (h *NotificationHandler) HandleAcceptInvitation(ctx *gin.Context) {
	h.resolve(ctx, h.svc.AcceptInvitation, "invitation accepted")
}

// HandleDeclineInvitation godoc
// @Summary      Decline an invitation
// @Description  Declines a lottery invitation, removing the recipient from the waitlist and recording the cancellation
// @Tags         notifications
// @Produce      json
// @Param        notificationID  path  string  true  "Notification ID"
// @Success      200
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /notifications/{notificationID}/decline [post]
func (h *NotificationHandler) HandleDeclineInvitation(ctx *gin.Context) {
	h.resolve(ctx, h.svc.DeclineInvitation, "invitation declined")
}

// HandleStayNotSelected godoc
// @Summary      Stay on the waitlist
// @Description  Records a losing entrant's choice to stay waitlisted for replacement draws
// @Tags         notifications
// @Produce      json
// @Param        notificationID  path  string  true  "Notification ID"
// @Success      200
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /notifications/{notificationID}/stay [post]
func (h *NotificationHandler) HandleStayNotSelected(ctx *gin.Context) {
	h.resolve(ctx, h.svc.StayNotSelected, "staying on waitlist")
}

// HandleLeaveNotSelected godoc
// @Summary      Leave the waitlist
// @Description  Removes a losing entrant from the waitlist at their own request
// @Tags         notifications
// @Produce      json
// @Param        notificationID  path  string  true  "Notification ID"
// @Success      200
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /notifications/{notificationID}/leave [post]
func (h *NotificationHandler) HandleLeaveNotSelected(ctx *gin.Context) {
	h.resolve(ctx, h.svc.LeaveNotSelected, "left waitlist")
}

// HandleMarkRead godoc
// @Summary      Mark a notification as read
// @Tags         notifications
// @Produce      json
// @Param        notificationID  path  string  true  "Notification ID"
// @Success      200
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /notifications/{notificationID}/read [post]
func (h *NotificationHandler) HandleMarkRead(ctx *gin.Context) {
	h.resolve(ctx, h.svc.MarkRead, "notification read")
}

func (h *NotificationHandler) resolve(ctx *gin.Context, fn func(context.Context, string) error, okMsg string) {
	id := ctx.Param("notificationID")

	if err := fn(ctx.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, service.ErrNotificationNotFound):
			response.RenderErr(ctx, response.ErrNotFound("notification", "ID", id))
		case errors.Is(err, service.ErrEventNotFound):
			response.RenderErr(ctx, response.ErrNotFound("event", "notificationID", id))
		case errors.Is(err, service.ErrWrongNotificationType):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		case errors.Is(err, service.ErrInvitationResolved):
			response.RenderErr(ctx, response.ErrConflict(err))
		case errors.Is(err, service.ErrEventFull):
			response.RenderErr(ctx, response.ErrConflict(err))
		case errors.Is(err, service.ErrNotInWaitlist):
			response.RenderErr(ctx, response.ErrConflict(err))
		default:
			err = fmt.Errorf("NotificationHandler.resolve -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": okMsg})
}
