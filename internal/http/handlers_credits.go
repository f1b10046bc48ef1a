package http

import (
	"net/http"
)

func (s *Server) handleListCredits(w http.ResponseWriter, r *http.Request) {
	credits, err := s.credits.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]creditDTO, 0, len(credits))
	for _, c := range credits {
		out = append(out, toCreditDTO(c))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateCredit(w http.ResponseWriter, r *http.Request) {
	var dto creditDTO
	if !decodeBody(w, r, &dto) {
		return
	}
	created, err := s.credits.Create(r.Context(), dto.toDomain())
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateAggregates()
	respondJSON(w, http.StatusCreated, toCreditDTO(created))
}

func (s *Server) handleGetCredit(w http.ResponseWriter, r *http.Request) {
	credit, err := s.credits.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCreditDTO(credit))
}

func (s *Server) handleUpdateCredit(w http.ResponseWriter, r *http.Request) {
	var dto creditDTO
	if !decodeBody(w, r, &dto) {
		return
	}
	credit := dto.toDomain()
	credit.ID = r.PathValue("id")

	updated, err := s.credits.Update(r.Context(), credit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateAggregates()
	respondJSON(w, http.StatusOK, toCreditDTO(updated))
}

func (s *Server) handleDeleteCredit(w http.ResponseWriter, r *http.Request) {
	if err := s.credits.Delete(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateAggregates()
	respondJSON(w, http.StatusNoContent, nil)
}
