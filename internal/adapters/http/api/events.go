package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	service "github.com/okian/ballbyball/internal/app"
	"github.com/okian/ballbyball/internal/domain/model"
)

// IdempotencyKeyHeader names a submission; it takes precedence over body ids.
const IdempotencyKeyHeader = "Idempotency-Key"

const (
	maxEventBody  = 1 << 20
	maxEventBatch = 64
)

// EventDependencies defines the ball event operations.
type EventDependencies interface {
	AppendEvents(ctx context.Context, userID, matchID string, in []service.EventInput) (service.AppendResult, error)
	UndoLastEvent(ctx context.Context, userID, matchID string) (model.BallEvent, model.Match, error)
	ListEvents(ctx context.Context, userID, matchID string) ([]model.BallEvent, error)
}

// EventsHandler handles event requests.
type EventsHandler struct {
	deps     EventDependencies
	validate *validator.Validate
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps EventDependencies, v *validator.Validate) *EventsHandler {
	return &EventsHandler{deps: deps, validate: v}
}

type undoResponse struct {
	Event model.BallEvent `json:"event"`
	Match model.Match     `json:"match"`
}

// HandleList handles GET /api/matches/{id}/events.
func (h *EventsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	events, err := h.deps.ListEvents(r.Context(), userOf(r), r.PathValue("id"))
	if err != nil {
		fail(w, r, Wrap("api.list_events", err))
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// HandleAppend handles POST /api/matches/{id}/events. The body is one event
// or an array of events.
func (h *EventsHandler) HandleAppend(w http.ResponseWriter, r *http.Request) {
	const op = "api.append_events"
	reqs, err := h.decodeEvents(r)
	if err != nil {
		fail(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}

	key := r.Header.Get(IdempotencyKeyHeader)
	in := make([]service.EventInput, len(reqs))
	for i, req := range reqs {
		in[i] = req.input()
		switch {
		case key != "" && len(reqs) == 1:
			in[i].ID = key
		case key != "":
			in[i].ID = key + ":" + strconv.Itoa(i)
		}
	}

	res, err := h.deps.AppendEvents(r.Context(), userOf(r), r.PathValue("id"), in)
	if err != nil {
		fail(w, r, Wrap(op, err))
		return
	}
	status := http.StatusCreated
	if res.Duplicate {
		status = http.StatusOK
	}
	writeJSON(w, status, res)
}

func (h *EventsHandler) decodeEvents(r *http.Request) ([]eventRequest, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxEventBody))
	if err != nil {
		return nil, err
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, errors.New("empty body")
	}

	var reqs []eventRequest
	if body[0] == '[' {
		if err := json.Unmarshal(body, &reqs); err != nil {
			return nil, err
		}
	} else {
		var one eventRequest
		if err := json.Unmarshal(body, &one); err != nil {
			return nil, err
		}
		reqs = []eventRequest{one}
	}
	if len(reqs) == 0 || len(reqs) > maxEventBatch {
		return nil, errors.New("submit between 1 and " + strconv.Itoa(maxEventBatch) + " events")
	}
	for i := range reqs {
		if err := h.validate.Struct(reqs[i]); err != nil {
			return nil, err
		}
	}
	return reqs, nil
}

// HandleUndo handles DELETE /api/matches/{id}/events/last.
func (h *EventsHandler) HandleUndo(w http.ResponseWriter, r *http.Request) {
	e, m, err := h.deps.UndoLastEvent(r.Context(), userOf(r), r.PathValue("id"))
	if err != nil {
		fail(w, r, Wrap("api.undo_event", err))
		return
	}
	writeJSON(w, http.StatusOK, undoResponse{Event: e, Match: m})
}
