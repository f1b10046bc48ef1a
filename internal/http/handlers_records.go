package http

import (
	"fmt"
	"net/http"

	"fintrack/internal/core"
)

// Categories and cards are plain records: validation plus repository calls.
// Card balances are not writable here; they only move through the ledger.

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.repo.ListCategories(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]categoryDTO, 0, len(cats))
	for _, c := range cats {
		out = append(out, toCategoryDTO(c))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var dto categoryDTO
	if !decodeBody(w, r, &dto) {
		return
	}
	cat := dto.toDomain()
	if err := cat.Validate(); err != nil {
		respondError(w, r, fmt.Errorf("%w: %w", core.ErrValidation, err))
		return
	}
	created, err := s.repo.CreateCategory(r.Context(), cat)
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateAggregates()
	respondJSON(w, http.StatusCreated, toCategoryDTO(created))
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	cat, err := s.repo.GetCategory(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCategoryDTO(cat))
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var dto categoryDTO
	if !decodeBody(w, r, &dto) {
		return
	}
	cat := dto.toDomain()
	cat.ID = r.PathValue("id")
	if err := cat.Validate(); err != nil {
		respondError(w, r, fmt.Errorf("%w: %w", core.ErrValidation, err))
		return
	}
	if err := s.repo.UpdateCategory(r.Context(), cat); err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateAggregates()
	respondJSON(w, http.StatusOK, toCategoryDTO(cat))
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.DeleteCategory(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateAggregates()
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleListCreditCards(w http.ResponseWriter, r *http.Request) {
	cards, err := s.repo.ListCreditCards(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]creditCardDTO, 0, len(cards))
	for _, c := range cards {
		out = append(out, toCreditCardDTO(c))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateCreditCard(w http.ResponseWriter, r *http.Request) {
	var dto creditCardDTO
	if !decodeBody(w, r, &dto) {
		return
	}
	card := dto.toDomain()
	card.IsActive = true
	if err := card.Validate(); err != nil {
		respondError(w, r, fmt.Errorf("%w: %w", core.ErrValidation, err))
		return
	}
	created, err := s.repo.CreateCreditCard(r.Context(), card)
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateAggregates()
	respondJSON(w, http.StatusCreated, toCreditCardDTO(created))
}

func (s *Server) handleGetCreditCard(w http.ResponseWriter, r *http.Request) {
	card, err := s.repo.GetCreditCard(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCreditCardDTO(card))
}

func (s *Server) handleUpdateCreditCard(w http.ResponseWriter, r *http.Request) {
	var dto creditCardDTO
	if !decodeBody(w, r, &dto) {
		return
	}
	card := dto.toDomain()
	card.ID = r.PathValue("id")
	if err := card.Validate(); err != nil {
		respondError(w, r, fmt.Errorf("%w: %w", core.ErrValidation, err))
		return
	}
	if err := s.repo.UpdateCreditCard(r.Context(), card); err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateAggregates()
	updated, err := s.repo.GetCreditCard(r.Context(), card.ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCreditCardDTO(updated))
}

func (s *Server) handleDeleteCreditCard(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.DeleteCreditCard(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateAggregates()
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleListDebitCards(w http.ResponseWriter, r *http.Request) {
	cards, err := s.repo.ListDebitCards(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]debitCardDTO, 0, len(cards))
	for _, c := range cards {
		out = append(out, toDebitCardDTO(c))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateDebitCard(w http.ResponseWriter, r *http.Request) {
	var dto debitCardDTO
	if !decodeBody(w, r, &dto) {
		return
	}
	card := dto.toDomain()
	card.IsActive = true
	if err := card.Validate(); err != nil {
		respondError(w, r, fmt.Errorf("%w: %w", core.ErrValidation, err))
		return
	}
	created, err := s.repo.CreateDebitCard(r.Context(), card)
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateAggregates()
	respondJSON(w, http.StatusCreated, toDebitCardDTO(created))
}

func (s *Server) handleGetDebitCard(w http.ResponseWriter, r *http.Request) {
	card, err := s.repo.GetDebitCard(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toDebitCardDTO(card))
}

func (s *Server) handleUpdateDebitCard(w http.ResponseWriter, r *http.Request) {
	var dto debitCardDTO
	if !decodeBody(w, r, &dto) {
		return
	}
	card := dto.toDomain()
	card.ID = r.PathValue("id")
	if err := card.Validate(); err != nil {
		respondError(w, r, fmt.Errorf("%w: %w", core.ErrValidation, err))
		return
	}
	if err := s.repo.UpdateDebitCard(r.Context(), card); err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateAggregates()
	updated, err := s.repo.GetDebitCard(r.Context(), card.ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toDebitCardDTO(updated))
}

func (s *Server) handleDeleteDebitCard(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.DeleteDebitCard(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateAggregates()
	respondJSON(w, http.StatusNoContent, nil)
}
