package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/stagehand-hq/stagehand/pkg/domain/model"
	"github.com/stagehand-hq/stagehand/pkg/domain/types"
	"github.com/stagehand-hq/stagehand/pkg/usecase"
	"github.com/stagehand-hq/stagehand/pkg/utils/errutil"
)

// principalHeader identifies the calling user. The API trusts the fronting
// proxy to have authenticated the user and to set this header.
const principalHeader = "X-Stagehand-User"

type principalKey struct{}

// principalMiddleware extracts the calling user from the request header
func principalMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := types.UserID(r.Header.Get(principalHeader))
		if err := user.Validate(); err != nil {
			http.Error(w, "missing "+principalHeader+" header", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), principalKey{}, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func principalFrom(ctx context.Context) types.UserID {
	user, _ := ctx.Value(principalKey{}).(types.UserID)
	return user
}

// actionResponse is the JSON shape of a pending action. Args are not
// echoed back; the preview is the reviewable representation.
type actionResponse struct {
	ID        string    `json:"id"`
	Operation string    `json:"operation"`
	Risk      string    `json:"risk"`
	Status    string    `json:"status"`
	Preview   string    `json:"preview,omitempty"`
	Result    string    `json:"result,omitempty"`
	Error     string    `json:"error,omitempty"`
	SessionID string    `json:"session_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func toActionResponse(a *model.PendingAction) actionResponse {
	return actionResponse{
		ID:        a.ID.String(),
		Operation: a.Operation,
		Risk:      a.Risk.String(),
		Status:    a.Status.String(),
		Preview:   a.Preview,
		Result:    a.Result,
		Error:     a.Error,
		SessionID: a.SessionID.String(),
		CreatedAt: a.CreatedAt,
		ExpiresAt: a.ExpiresAt,
	}
}

func writeJSON(ctx context.Context, w http.ResponseWriter, statusCode int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(data) //nolint:errcheck // header already committed
}

// statusOf maps the ledger error taxonomy onto HTTP status codes
func statusOf(err error) int {
	switch {
	case errors.Is(err, usecase.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, usecase.ErrNotFoundOrExpired):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrAlreadyProcessed):
		return http.StatusConflict
	case errors.Is(err, usecase.ErrExecutorFailure):
		return http.StatusBadGateway
	case errors.Is(err, usecase.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

type prepareRequest struct {
	Operation string         `json:"operation"`
	Args      map[string]any `json:"args"`
	Risk      string         `json:"risk"`
	SessionID string         `json:"session_id"`
}

func (s *Server) handlePrepare(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req prepareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to decode request body"), http.StatusBadRequest)
		return
	}

	action, err := s.uc.Prepare(ctx, usecase.PrepareInput{
		Operation: req.Operation,
		Args:      req.Args,
		Risk:      types.RiskLevel(req.Risk),
		UserID:    principalFrom(ctx),
		SessionID: types.SessionID(req.SessionID),
	})
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, statusOf(err))
		return
	}

	writeJSON(ctx, w, http.StatusCreated, toActionResponse(action))
}

func (s *Server) handleListPending(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session := types.SessionID(r.URL.Query().Get("session"))

	actions, err := s.uc.ListPending(ctx, principalFrom(ctx), session)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, statusOf(err))
		return
	}

	resp := struct {
		Actions []actionResponse `json:"actions"`
	}{
		Actions: make([]actionResponse, len(actions)),
	}
	for i, action := range actions {
		resp.Actions[i] = toActionResponse(action)
	}

	writeJSON(ctx, w, http.StatusOK, resp)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := types.ActionID(chi.URLParam(r, "actionID"))

	action, err := s.uc.Get(ctx, principalFrom(ctx), id)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, statusOf(err))
		return
	}

	writeJSON(ctx, w, http.StatusOK, toActionResponse(action))
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := types.ActionID(chi.URLParam(r, "actionID"))

	action, err := s.uc.Confirm(ctx, principalFrom(ctx), id)
	if err != nil {
		// Executor failures still settled the action; return its record
		// alongside the error status
		if action != nil && errors.Is(err, usecase.ErrExecutorFailure) {
			writeJSON(ctx, w, http.StatusBadGateway, toActionResponse(action))
			return
		}
		errutil.HandleHTTP(ctx, w, err, statusOf(err))
		return
	}

	writeJSON(ctx, w, http.StatusOK, toActionResponse(action))
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := types.ActionID(chi.URLParam(r, "actionID"))

	cancelled, err := s.uc.Cancel(ctx, principalFrom(ctx), id)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, statusOf(err))
		return
	}

	writeJSON(ctx, w, http.StatusOK, struct {
		Cancelled bool `json:"cancelled"`
	}{Cancelled: cancelled})
}
