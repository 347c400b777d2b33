package handler

import (
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-buddy-progression/pkg/analytics"
	"github.com/AccelByte/extend-buddy-progression/pkg/common"
	"github.com/AccelByte/extend-buddy-progression/pkg/engine"
	"github.com/AccelByte/extend-buddy-progression/pkg/pipeline"
	"github.com/AccelByte/extend-buddy-progression/pkg/service"
)

// Buddy serves the per-user buddy endpoints
type Buddy struct {
	pipelineManager *pipeline.Manager
	intents         *engine.Registry
}

// NewBuddy creates the buddy handler. A nil registry uses every built-in intent.
func NewBuddy(pipelineManager *pipeline.Manager, intents *engine.Registry) *Buddy {
	if intents == nil {
		intents = engine.DefaultRegistry()
	}
	return &Buddy{
		pipelineManager: pipelineManager,
		intents:         intents,
	}
}

// NotificationsResponse lists a user's notifications, newest first
type NotificationsResponse struct {
	Notifications []service.Notification `json:"notifications"`
}

// AnalyticsResponse is the analytics summary with its one-line digest
type AnalyticsResponse struct {
	*analytics.Summary
	Insight     string             `json:"insight"`
	TopCategory analytics.Category `json:"topCategory,omitempty"`
}

// Onboard handles POST /v1/users/{userID}/onboarding
func (b *Buddy) Onboard(w http.ResponseWriter, r *http.Request) {
	scope := common.GetScopeFromContext(r.Context(), "Buddy.Onboard")
	defer scope.Finish()

	id, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var in engine.Onboarding
	if err := decodeBody(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	out, err := b.pipelineManager.Onboard(scope.Ctx, id, in)
	if err != nil {
		scope.TraceError(err)
		writeError(w, err)
		return
	}

	logrus.Infof("onboarded buddy %q for user %s", in.Profile.BuddyName, id)
	writeJSON(w, http.StatusCreated, out)
}

// Intent handles POST /v1/users/{userID}/intents
func (b *Buddy) Intent(w http.ResponseWriter, r *http.Request) {
	scope := common.GetScopeFromContext(r.Context(), "Buddy.Intent")
	defer scope.Finish()

	id, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var env engine.Envelope
	if err := decodeBody(w, r, &env); err != nil {
		writeError(w, err)
		return
	}
	scope.AddBaggage("intent.type", env.Type)

	intent, err := b.intents.Decode(env)
	if err != nil {
		writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	out, err := b.pipelineManager.Apply(scope.Ctx, id, intent)
	if err != nil {
		scope.TraceError(err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

// Open handles POST /v1/users/{userID}/open
func (b *Buddy) Open(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	out, err := b.pipelineManager.Open(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

// State handles GET /v1/users/{userID}/state
func (b *Buddy) State(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	s, err := b.pipelineManager.State(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, s)
}

// Notifications handles GET /v1/users/{userID}/notifications
func (b *Buddy) Notifications(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	list, err := b.pipelineManager.Notifications(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, NotificationsResponse{Notifications: list})
}

// DismissNotification handles DELETE /v1/users/{userID}/notifications/{notificationID}
func (b *Buddy) DismissNotification(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	notificationID := r.PathValue(ParamNotificationID)

	found, err := b.pipelineManager.DismissNotification(r.Context(), id, notificationID)
	if err != nil {
		writeError(w, err)
		return
	}
	if !found {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "notification not found"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Reset handles DELETE /v1/users/{userID}
func (b *Buddy) Reset(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := b.pipelineManager.Reset(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Analytics handles GET /v1/users/{userID}/analytics
func (b *Buddy) Analytics(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	summary, err := b.pipelineManager.Analytics(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := AnalyticsResponse{Summary: summary, Insight: summary.Insight()}
	if top, ok := summary.TopCategory(); ok {
		resp.TopCategory = top
	}
	writeJSON(w, http.StatusOK, resp)
}

// Register adds the buddy routes to mux
func (b *Buddy) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/users/{userID}/onboarding", b.Onboard)
	mux.HandleFunc("POST /v1/users/{userID}/intents", b.Intent)
	mux.HandleFunc("POST /v1/users/{userID}/open", b.Open)
	mux.HandleFunc("GET /v1/users/{userID}/state", b.State)
	mux.HandleFunc("GET /v1/users/{userID}/notifications", b.Notifications)
	mux.HandleFunc("DELETE /v1/users/{userID}/notifications/{notificationID}", b.DismissNotification)
	mux.HandleFunc("GET /v1/users/{userID}/analytics", b.Analytics)
	mux.HandleFunc("DELETE /v1/users/{userID}", b.Reset)
}
