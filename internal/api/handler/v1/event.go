package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/slices-events/slices-api/internal/api/handler/v1/request"
	"github.com/slices-events/slices-api/internal/api/handler/v1/response"
	"github.com/slices-events/slices-api/internal/domain"
	"github.com/slices-events/slices-api/internal/service"
)

type EventService interface {
	CreateEvent(ctx context.Context, info domain.EventInfo) (*domain.Event, error)
	GetEvent(ctx context.Context, id uint) (*domain.Event, error)
	FutureEvents(ctx context.Context) ([]*domain.Event, error)
	EventsForOrganizer(ctx context.Context, organizerID uint) ([]*domain.Event, error)
	EventsForEntrant(ctx context.Context, entrantID uint) ([]*domain.Event, error)
	DeleteEvent(ctx context.Context, id uint) error
	RosterEntrants(ctx context.Context, eventID uint) ([]domain.Entrant, error)
	WaitlistEntrants(ctx context.Context, eventID uint) ([]domain.Entrant, error)
	EntrantStatus(ctx context.Context, eventID, entrantID uint) (domain.EntrantStatus, error)
	JoinWaitlist(ctx context.Context, eventID, entrantID uint) error
	LeaveWaitlist(ctx context.Context, eventID, entrantID uint) error
	DoLottery(ctx context.Context, eventID uint) error
	DoReplacementLottery(ctx context.Context, eventID uint) error
	CancelEntrants(ctx context.Context, eventID uint, entrantIDs []uint) error
	ReAdmitEntrant(ctx context.Context, eventID, entrantID uint) error
}

type EventHandler struct {
	svc EventService
}

func NewEventHandler(svc EventService) *EventHandler {
	return &EventHandler{
		svc: svc,
	}
}

func pathID(ctx *gin.Context, name string) (uint, *response.Err) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil {
		return 0, response.ErrBadRequest(fmt.Errorf("invalid %v: %w", name, err))
	}

	return uint(id), nil
}

// HandleCreateEvent godoc
// @Summary      Create a new event
// @Description  Creates an event with a registration deadline, a seat capacity and an optional waitlist capacity
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        input  body      request.CreateEventRequest  true  "Event details"
// @Success      201    {object}  response.Event
// @Failure      400    {object}  response.Err
// @Failure      500    {object}  response.Err
// @Router       /events [post]
func (h *EventHandler) HandleCreateEvent(ctx *gin.Context) {
	var req request.CreateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	info := domain.EventInfo{
		Name:                 req.Name,
		Description:          req.Description,
		Location:             req.Location,
		EventDate:            req.EventDate,
		RegistrationDeadline: req.RegistrationDeadline,
		Capacity:             req.Capacity,
		WaitlistCapacity:     req.WaitlistCapacity,
		OrganizerID:          req.OrganizerID,
	}

	event, err := h.svc.CreateEvent(ctx.Request.Context(), info)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDates) {
			response.RenderErr(ctx, response.ErrBadRequest(err))
			return
		}

		err = fmt.Errorf("HandleCreateEvent -> h.svc.CreateEvent -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, response.NewEvent(event))
}

// HandleGetEvents godoc
// @Summary      List events
// @Description  Lists future events, or an organizer's events when organizer_id is given
// @Tags         events
// @Produce      json
// @Param        organizer_id  query     int  false  "Organizer ID"
// @Success      200  {array}   response.Event
// @Failure      400  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events [get]
func (h *EventHandler) HandleGetEvents(ctx *gin.Context) {
	var (
		events []*domain.Event
		err    error
	)

	if raw := ctx.Query("organizer_id"); raw != "" {
		organizerID, parseErr := strconv.ParseUint(raw, 10, 64)
		if parseErr != nil {
			response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid organizer_id: %w", parseErr)))
			return
		}

		events, err = h.svc.EventsForOrganizer(ctx.Request.Context(), uint(organizerID))
	} else {
		events, err = h.svc.FutureEvents(ctx.Request.Context())
	}
	if err != nil {
		err = fmt.Errorf("HandleGetEvents -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.NewEvents(events))
}

// HandleGetEvent godoc
// @Summary      Get an event
// @Description  Retrieves an event with its roster, waitlist and invitation state
// @Tags         events
// @Produce      json
// @Param        eventID  path      int  true  "Event ID"
// @Success      200  {object}  response.Event
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/{eventID} [get]
func (h *EventHandler) HandleGetEvent(ctx *gin.Context) {
	eventID, respErr := pathID(ctx, "eventID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	event, err := h.svc.GetEvent(ctx.Request.Context(), eventID)
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
			return
		}

		err = fmt.Errorf("HandleGetEvent -> h.svc.GetEvent -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.NewEvent(event))
}

// HandleDeleteEvent godoc
// @Summary      Delete an event
// @Description  Deletes an event along with its memberships and notifications
// @Tags         events
// @Produce      json
// @Param        eventID  path      int  true  "Event ID"
// @Success      204
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/{eventID} [delete]
func (h *EventHandler) HandleDeleteEvent(ctx *gin.Context) {
	eventID, respErr := pathID(ctx, "eventID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.DeleteEvent(ctx.Request.Context(), eventID); err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
			return
		}

		err = fmt.Errorf("HandleDeleteEvent -> h.svc.DeleteEvent -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleGetRoster godoc
// @Summary      Get the roster
// @Description  Lists the entrants enrolled in the event
// @Tags         events
// @Produce      json
// @Param        eventID  path      int  true  "Event ID"
// @Success      200  {array}   domain.Entrant
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/{eventID}/entrants [get]
func (h *EventHandler) HandleGetRoster(ctx *gin.Context) {
	eventID, respErr := pathID(ctx, "eventID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	entrants, err := h.svc.RosterEntrants(ctx.Request.Context(), eventID)
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
			return
		}

		err = fmt.Errorf("HandleGetRoster -> h.svc.RosterEntrants -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, entrants)
}

// HandleGetWaitlist godoc
// @Summary      Get the waitlist
// @Description  Lists the waitlisted entrants in join order
// @Tags         events
// @Produce      json
// @Param        eventID  path      int  true  "Event ID"
// @Success      200  {array}   domain.Entrant
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/{eventID}/waitlist [get]
func (h *EventHandler) HandleGetWaitlist(ctx *gin.Context) {
	eventID, respErr := pathID(ctx, "eventID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	entrants, err := h.svc.WaitlistEntrants(ctx.Request.Context(), eventID)
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
			return
		}

		err = fmt.Errorf("HandleGetWaitlist -> h.svc.WaitlistEntrants -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, entrants)
}

// HandleGetEntrantStatus godoc
// @Summary      Get an entrant's status
// @Description  Reports where the entrant sits in the event's state machine
// @Tags         events
// @Produce      json
// @Param        eventID    path      int  true  "Event ID"
// @Param        entrantID  path      int  true  "Entrant ID"
// @Success      200  {object}  response.EntrantStatus
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/{eventID}/entrants/{entrantID} [get]
func (h *EventHandler) HandleGetEntrantStatus(ctx *gin.Context) {
	eventID, respErr := pathID(ctx, "eventID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}
	entrantID, respErr := pathID(ctx, "entrantID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	status, err := h.svc.EntrantStatus(ctx.Request.Context(), eventID, entrantID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
		case errors.Is(err, service.ErrEntrantNotFound):
			response.RenderErr(ctx, response.ErrNotFound("entrant", "ID", entrantID))
		default:
			err = fmt.Errorf("HandleGetEntrantStatus -> h.svc.EntrantStatus -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, response.NewEntrantStatus(eventID, entrantID, status))
}

// HandleJoinWaitlist godoc
// @Summary      Join the waitlist
// @Description  Adds an entrant to the event's waitlist. A cancelled entrant joining again becomes waitlisted.
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        eventID  path      int                          true  "Event ID"
// @Param        input    body      request.JoinWaitlistRequest  true  "Entrant to add"
// @Success      200
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/{eventID}/waitlist [post]
func (h *EventHandler) HandleJoinWaitlist(ctx *gin.Context) {
	eventID, respErr := pathID(ctx, "eventID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.JoinWaitlistRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	err := h.svc.JoinWaitlist(ctx.Request.Context(), eventID, req.EntrantID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
		case errors.Is(err, service.ErrEntrantNotFound):
			response.RenderErr(ctx, response.ErrNotFound("entrant", "ID", req.EntrantID))
		case errors.Is(err, service.ErrDuplicateEntry):
			response.RenderErr(ctx, response.ErrConflict(err))
		case errors.Is(err, service.ErrWaitlistFull):
			response.RenderErr(ctx, response.ErrConflict(err))
		default:
			err = fmt.Errorf("HandleJoinWaitlist -> h.svc.JoinWaitlist -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "joined waitlist"})
}

// HandleLeaveWaitlist godoc
// @Summary      Leave the waitlist
// @Description  Removes an entrant from the waitlist, dropping any pending invitation mark
// @Tags         events
// @Produce      json
// @Param        eventID    path  int  true  "Event ID"
// @Param        entrantID  path  int  true  "Entrant ID"
// @Success      204
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/{eventID}/waitlist/{entrantID} [delete]
func (h *EventHandler) HandleLeaveWaitlist(ctx *gin.Context) {
	eventID, respErr := pathID(ctx, "eventID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}
	entrantID, respErr := pathID(ctx, "entrantID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	err := h.svc.LeaveWaitlist(ctx.Request.Context(), eventID, entrantID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
		case errors.Is(err, service.ErrNotInWaitlist):
			response.RenderErr(ctx, response.ErrNotFound("waitlist entry", "entrantID", entrantID))
		default:
			err = fmt.Errorf("HandleLeaveWaitlist -> h.svc.LeaveWaitlist -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleDoLottery godoc
// @Summary      Run the lottery
// @Description  Draws winners from the waitlist for the remaining seats, invites them and notifies everyone else
// @Tags         events,lottery
// @Produce      json
// @Param        eventID  path  int  true  "Event ID"
// @Success      200
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/{eventID}/lottery [post]
func (h *EventHandler) HandleDoLottery(ctx *gin.Context) {
	h.runLottery(ctx, false)
}

// HandleDoReplacementLottery godoc
// @Summary      Run a replacement lottery
// @Description  Backfills seats freed by declines and cancellations from the remaining eligible waitlist
// @Tags         events,lottery
// @Produce      json
// @Param        eventID  path  int  true  "Event ID"
// @Success      200
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/{eventID}/lottery/replacement [post]
func (h *EventHandler) HandleDoReplacementLottery(ctx *gin.Context) {
	h.runLottery(ctx, true)
}

func (h *EventHandler) runLottery(ctx *gin.Context, replacement bool) {
	eventID, respErr := pathID(ctx, "eventID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var err error
	if replacement {
		err = h.svc.DoReplacementLottery(ctx.Request.Context(), eventID)
	} else {
		err = h.svc.DoLottery(ctx.Request.Context(), eventID)
	}
	if err != nil {
		var batchErr *domain.PartialBatchError

		switch {
		case errors.Is(err, service.ErrEventNotFound):
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
		case errors.Is(err, service.ErrEventFull):
			response.RenderErr(ctx, response.ErrConflict(err))
		case errors.Is(err, service.ErrEmptyWaitlist), errors.Is(err, service.ErrNoEligibleEntrants):
			response.RenderErr(ctx, response.ErrConflict(err))
		case errors.As(err, &batchErr):
			ctx.AbortWithStatusJSON(http.StatusMultiStatus, gin.H{
				"error":    batchErr.Error(),
				"outcomes": renderOutcomes(batchErr.Outcomes),
			})
		default:
			err = fmt.Errorf("runLottery -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "lottery drawn"})
}

// HandleCancelEntrants godoc
// @Summary      Cancel invited entrants
// @Description  Moves invited entrants who have not responded into the cancelled set, freeing their seats for a replacement draw
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        eventID  path  int                            true  "Event ID"
// @Param        input    body  request.CancelEntrantsRequest  true  "Entrant ids to cancel"
// @Success      200
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/{eventID}/cancellations [post]
func (h *EventHandler) HandleCancelEntrants(ctx *gin.Context) {
	eventID, respErr := pathID(ctx, "eventID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.CancelEntrantsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	err := h.svc.CancelEntrants(ctx.Request.Context(), eventID, req.EntrantIDs)
	if err != nil {
		var batchErr *domain.PartialBatchError

		switch {
		case errors.Is(err, service.ErrEventNotFound):
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
		case errors.As(err, &batchErr):
			ctx.AbortWithStatusJSON(http.StatusMultiStatus, gin.H{
				"error":    batchErr.Error(),
				"outcomes": renderOutcomes(batchErr.Outcomes),
			})
		default:
			err = fmt.Errorf("HandleCancelEntrants -> h.svc.CancelEntrants -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "entrants cancelled"})
}

// HandleReAdmitEntrant godoc
// @Summary      Re-admit a cancelled entrant
// @Description  Puts a cancelled entrant back on the waitlist
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        eventID  path  int                            true  "Event ID"
// @Param        input    body  request.ReAdmitEntrantRequest  true  "Entrant to re-admit"
// @Success      200
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/{eventID}/readmissions [post]
func (h *EventHandler) HandleReAdmitEntrant(ctx *gin.Context) {
	eventID, respErr := pathID(ctx, "eventID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.ReAdmitEntrantRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	err := h.svc.ReAdmitEntrant(ctx.Request.Context(), eventID, req.EntrantID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
		case errors.Is(err, service.ErrEntrantNotFound):
			response.RenderErr(ctx, response.ErrNotFound("entrant", "ID", req.EntrantID))
		case errors.Is(err, service.ErrNotCancelled):
			response.RenderErr(ctx, response.ErrConflict(err))
		case errors.Is(err, service.ErrWaitlistFull):
			response.RenderErr(ctx, response.ErrConflict(err))
		default:
			err = fmt.Errorf("HandleReAdmitEntrant -> h.svc.ReAdmitEntrant -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "entrant re-admitted"})
}

func renderOutcomes(outcomes []domain.BatchOutcome) []gin.H {
	result := make([]gin.H, len(outcomes))
	for i, o := range outcomes {
		entry := gin.H{"entrant_id": o.EntrantID}
		if o.Err != nil {
			entry["error"] = o.Err.Error()
		}
		result[i] = entry
	}

	return result
}
