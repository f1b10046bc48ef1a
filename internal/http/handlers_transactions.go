package http

import (
	"net/http"
	"strconv"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	var filter storage.TransactionFilter
	q := r.URL.Query()
	if y := q.Get("year"); y != "" {
		year, err := strconv.Atoi(y)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid year"})
			return
		}
		month, err := strconv.Atoi(q.Get("month"))
		if err != nil || month < 1 || month > 12 {
			respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid month"})
			return
		}
		filter.Year = year
		filter.Month = time.Month(month)
	}
	filter.CategoryID = q.Get("category_id")
	filter.CreditID = q.Get("credit_id")

	txs, err := s.transactions.List(r.Context(), filter)
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]transactionDTO, 0, len(txs))
	for _, t := range txs {
		out = append(out, toTransactionDTO(t))
	}
	respondJSON(w, http.StatusOK, out)
}

// handleCreateTransaction accepts an intent, not a raw type: clients say
// income, expense or credit_payment and the service derives the stored form.
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var dto transactionDTO
	if !decodeBody(w, r, &dto) {
		return
	}
	tx, err := dto.toDomain()
	if err != nil {
		respondError(w, r, err)
		return
	}

	created, err := s.transactions.Create(r.Context(), core.Intent(dto.Intent), tx)
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateAggregates()
	respondJSON(w, http.StatusCreated, toTransactionDTO(created))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := s.transactions.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toTransactionDTO(tx))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var dto transactionDTO
	if !decodeBody(w, r, &dto) {
		return
	}
	tx, err := dto.toDomain()
	if err != nil {
		respondError(w, r, err)
		return
	}
	tx.ID = r.PathValue("id")
	intent := core.Intent(dto.Intent)
	if dto.Intent == "" && tx.Type != "" {
		intent = core.IntentOf(tx)
	}

	updated, err := s.transactions.Update(r.Context(), intent, tx)
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateAggregates()
	respondJSON(w, http.StatusOK, toTransactionDTO(updated))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.transactions.Delete(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateAggregates()
	respondJSON(w, http.StatusNoContent, nil)
}
