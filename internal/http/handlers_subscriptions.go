package http

import (
	"net/http"

	"fintrack/internal/aggregate"
)

func (s *Server) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := s.subscriptions.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]subscriptionDTO, 0, len(subs))
	for _, sub := range subs {
		out = append(out, toSubscriptionDTO(sub))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateSubscription(w http.ResponseWriter, r *http.Request) {
	var dto subscriptionDTO
	if !decodeBody(w, r, &dto) {
		return
	}
	sub, err := dto.toDomain()
	if err != nil {
		respondError(w, r, err)
		return
	}
	sub.IsActive = true

	created, err := s.subscriptions.Create(r.Context(), sub)
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateAggregates()
	respondJSON(w, http.StatusCreated, toSubscriptionDTO(created))
}

func (s *Server) handleGetSubscription(w http.ResponseWriter, r *http.Request) {
	sub, err := s.subscriptions.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toSubscriptionDTO(sub))
}

func (s *Server) handleUpdateSubscription(w http.ResponseWriter, r *http.Request) {
	var dto subscriptionDTO
	if !decodeBody(w, r, &dto) {
		return
	}
	sub, err := dto.toDomain()
	if err != nil {
		respondError(w, r, err)
		return
	}
	sub.ID = r.PathValue("id")

	updated, err := s.subscriptions.Update(r.Context(), sub)
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateAggregates()
	respondJSON(w, http.StatusOK, toSubscriptionDTO(updated))
}

func (s *Server) handleDeleteSubscription(w http.ResponseWriter, r *http.Request) {
	if err := s.subscriptions.Delete(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateAggregates()
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleSubscriptionsMonthlyTotal(w http.ResponseWriter, r *http.Request) {
	subs, err := s.subscriptions.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	total := aggregate.SubscriptionsMonthlyTotal(subs)
	respondJSON(w, http.StatusOK, struct {
		MonthlyTotalCents int64 `json:"monthly_total_cents"`
	}{MonthlyTotalCents: total.Cents})
}
