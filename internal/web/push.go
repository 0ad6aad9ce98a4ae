package web

import (
	"net/http"
	"time"

	"github.com/jthomisee/changing-500/internal/store"
)

type pushSubscriptionRequest struct {
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

// handleSubscribePush saves a browser push subscription for the current user.
func (s *Server) handleSubscribePush(w http.ResponseWriter, r *http.Request) {
	user := s.mustUser(w, r)
	if user == nil {
		return
	}

	var req pushSubscriptionRequest
	if err := readJSON(r, &req); err != nil || req.Endpoint == "" {
		errorJSON(w, http.StatusBadRequest, "invalid subscription")
		return
	}

	sub := &store.PushSubscription{
		UserID:    user.ID,
		Endpoint:  req.Endpoint,
		P256dh:    req.Keys.P256dh,
		Auth:      req.Keys.Auth,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.SavePushSubscription(r.Context(), sub); err != nil {
		serverError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "subscribed"})
}

// handleUnsubscribePush removes a push subscription by endpoint.
func (s *Server) handleUnsubscribePush(w http.ResponseWriter, r *http.Request) {
	user := s.mustUser(w, r)
	if user == nil {
		return
	}

	var req struct {
		Endpoint string `json:"endpoint"`
	}
	if err := readJSON(r, &req); err != nil || req.Endpoint == "" {
		errorJSON(w, http.StatusBadRequest, "invalid request")
		return
	}

	if err := s.store.DeletePushSubscription(r.Context(), req.Endpoint); err != nil {
		serverError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "unsubscribed"})
}

// handleGetVAPIDPublicKey returns the VAPID public key for the frontend.
func (s *Server) handleGetVAPIDPublicKey(w http.ResponseWriter, r *http.Request) {
	if s.pushService == nil {
		errorJSON(w, http.StatusServiceUnavailable, "push notifications not configured")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"publicKey": s.pushService.GetPublicKey()})
}
