package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"dsa_arena/internal/api/middleware"
	"dsa_arena/internal/app/service"
	"dsa_arena/internal/common"
	"dsa_arena/internal/domain/model"
	"dsa_arena/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

type ExplainHandler struct {
	explainService *service.ExplainService
	identity       identityVerifier
	log            *logger.Logger
}

func NewExplainHandler(es *service.ExplainService, identity identityVerifier, log *logger.Logger) *ExplainHandler {
	return &ExplainHandler{explainService: es, identity: identity, log: log.With("handler", "ExplainHandler")}
}

// RegisterRoutes mounts the streaming route. It must not sit behind a request timeout.
func (h *ExplainHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(authRouter chi.Router) {
		authRouter.Use(middleware.Authenticator)
		authRouter.Post("/ai-explain", h.explain)
	})
}

func (h *ExplainHandler) explain(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var req service.ExplainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	if err := h.identity.VerifyIdentity(r.Context(), userID, req.Email, req.Username); err != nil {
		common.RespondWithErr(w, err)
		return
	}

	exp, err := h.explainService.Prepare(r.Context(), req)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}

	rc := http.NewResponseController(w)
	// Generation can outlive the server's WriteTimeout.
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		h.log.Warn("failed to clear write deadline", "error", err)
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	_ = rc.Flush()

	emit := func(env model.StreamEnvelope) error {
		payload, err := json.Marshal(env)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
			return err
		}
		return rc.Flush()
	}

	err = h.explainService.Stream(r.Context(), exp, emit)
	if err != nil && !errors.Is(err, context.Canceled) {
		h.log.Warn("explanation relay ended with error", "user_id", userID, "error", err)
	}
}
