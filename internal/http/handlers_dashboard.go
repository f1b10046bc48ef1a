package http

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"fintrack/internal/aggregate"
	"fintrack/internal/core"
	"fintrack/internal/recurrence"
	"fintrack/internal/storage"
)

type dashboardSummary struct {
	Year  int `json:"year"`
	Month int `json:"month"`

	IncomeCents   int64 `json:"income_cents"`
	ExpensesCents int64 `json:"expenses_cents"`
	BalanceCents  int64 `json:"balance_cents"`

	DebitTotalCents         int64 `json:"debit_total_cents"`
	MonthlyCommitmentsCents int64 `json:"monthly_commitments_cents"`

	CardTotals cardTotalsDTO        `json:"card_totals"`
	Cards      []cardUsageDTO       `json:"cards"`
	Categories []categoryExpenseDTO `json:"categories"`
}

type cardTotalsDTO struct {
	TotalLimitCents     int64   `json:"total_limit_cents"`
	TotalUsedCents      int64   `json:"total_used_cents"`
	TotalAvailableCents int64   `json:"total_available_cents"`
	UsagePercentage     float64 `json:"usage_percentage"`
}

type cardUsageDTO struct {
	CardID         string  `json:"card_id"`
	Name           string  `json:"name"`
	UsedCents      int64   `json:"used_cents"`
	AvailableCents int64   `json:"available_cents"`
	Utilization    float64 `json:"utilization_percent"`
}

type categoryExpenseDTO struct {
	CategoryID  string `json:"category_id,omitempty"`
	Name        string `json:"name"`
	Color       string `json:"color,omitempty"`
	AmountCents int64  `json:"amount_cents"`
	Percent     int    `json:"percent"`
}

type paymentDTO struct {
	Kind        string `json:"kind"`
	ID          string `json:"id"`
	Name        string `json:"name"`
	AmountCents int64  `json:"amount_cents"`
	DueDate     string `json:"due_date"`
}

func toPaymentDTO(p aggregate.Payment) paymentDTO {
	return paymentDTO{
		Kind: string(p.Kind), ID: p.ID, Name: p.Name,
		AmountCents: p.Amount.Cents, DueDate: p.DueDate.Format(dateLayout),
	}
}

type calendarMonth struct {
	Year  int              `json:"year"`
	Month int              `json:"month"`
	Days  []calendarDayDTO `json:"days"`
}

type calendarDayDTO struct {
	Date       string       `json:"date"`
	Payments   []paymentDTO `json:"payments"`
	TotalCents int64        `json:"total_cents"`
}

func yearMonthParams(r *http.Request) (int, time.Month, error) {
	q := r.URL.Query()
	now := time.Now()
	year, month := now.Year(), now.Month()
	if y := q.Get("year"); y != "" {
		v, err := strconv.Atoi(y)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid year: %w", core.ErrValidation)
		}
		year = v
	}
	if m := q.Get("month"); m != "" {
		v, err := strconv.Atoi(m)
		if err != nil || v < 1 || v > 12 {
			return 0, 0, fmt.Errorf("invalid month: %w", core.ErrValidation)
		}
		month = time.Month(v)
	}
	return year, month, nil
}

func (s *Server) handleDashboardSummary(w http.ResponseWriter, r *http.Request) {
	year, month, err := yearMonthParams(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	key := fmt.Sprintf("%04d-%02d", year, month)
	if cached, ok := s.summaryCache.Get(key); ok {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	ctx := r.Context()
	txs, err := s.repo.ListTransactions(ctx, storage.TransactionFilter{Year: year, Month: month})
	if err != nil {
		respondError(w, r, err)
		return
	}
	cats, err := s.repo.ListCategories(ctx)
	if err != nil {
		respondError(w, r, err)
		return
	}
	creditCards, err := s.repo.ListCreditCards(ctx)
	if err != nil {
		respondError(w, r, err)
		return
	}
	debitCards, err := s.repo.ListDebitCards(ctx)
	if err != nil {
		respondError(w, r, err)
		return
	}
	credits, err := s.repo.ListCredits(ctx)
	if err != nil {
		respondError(w, r, err)
		return
	}
	subs, err := s.repo.ListSubscriptions(ctx)
	if err != nil {
		respondError(w, r, err)
		return
	}

	balance := aggregate.MonthlyBalance(txs, year, month)
	summary := dashboardSummary{
		Year:                    year,
		Month:                   int(month),
		IncomeCents:             balance.Income.Cents,
		ExpensesCents:           balance.Expenses.Cents,
		BalanceCents:            balance.Balance,
		DebitTotalCents:         aggregate.DebitTotal(debitCards).Cents,
		MonthlyCommitmentsCents: aggregate.MonthlyCommitments(credits, subs, year, month).Cents,
	}
	totals := aggregate.CardsOverview(creditCards)
	summary.CardTotals = cardTotalsDTO{
		TotalLimitCents:     totals.TotalLimit.Cents,
		TotalUsedCents:      totals.TotalUsed.Cents,
		TotalAvailableCents: totals.TotalAvailable.Cents,
		UsagePercentage:     totals.UsagePercentage,
	}
	for _, u := range aggregate.CardUtilization(creditCards) {
		summary.Cards = append(summary.Cards, cardUsageDTO{
			CardID: u.CardID, Name: u.Name,
			UsedCents: u.Used.Cents, AvailableCents: u.Available.Cents,
			Utilization: u.Utilization,
		})
	}
	for _, c := range aggregate.ExpensesByCategory(txs, cats, year, month) {
		summary.Categories = append(summary.Categories, categoryExpenseDTO{
			CategoryID: c.CategoryID, Name: c.Name, Color: c.Color,
			AmountCents: c.Amount.Cents, Percent: c.Percent,
		})
	}

	s.summaryCache.Set(key, summary)
	respondJSON(w, http.StatusOK, summary)
}

func (s *Server) handleDashboardUpcoming(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	credits, err := s.repo.ListCredits(ctx)
	if err != nil {
		respondError(w, r, err)
		return
	}
	subs, err := s.repo.ListSubscriptions(ctx)
	if err != nil {
		respondError(w, r, err)
		return
	}

	today := core.DateOf(time.Now())
	payments := aggregate.UpcomingPayments(credits, subs, today, s.horizonDays)
	out := make([]paymentDTO, 0, len(payments))
	for _, p := range payments {
		out = append(out, toPaymentDTO(p))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleCalendarMonth(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.PathValue("year"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid year"})
		return
	}
	monthNum, err := strconv.Atoi(r.PathValue("month"))
	if err != nil || monthNum < 1 || monthNum > 12 {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid month"})
		return
	}
	month := time.Month(monthNum)

	key := fmt.Sprintf("%04d-%02d", year, month)
	if cached, ok := s.monthCache.Get(key); ok {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	ctx := r.Context()
	credits, err := s.repo.ListCredits(ctx)
	if err != nil {
		respondError(w, r, err)
		return
	}
	subs, err := s.repo.ListSubscriptions(ctx)
	if err != nil {
		respondError(w, r, err)
		return
	}

	out := calendarMonth{Year: year, Month: int(month)}
	lastDay := recurrence.ClampDayToMonth(year, month, 31)
	for day := 1; day <= lastDay; day++ {
		schedule := aggregate.CalendarDayPayments(credits, subs, core.NewDate(year, month, day))
		if len(schedule.Payments) == 0 {
			continue
		}
		dayDTO := calendarDayDTO{
			Date:       schedule.Date.Format(dateLayout),
			TotalCents: schedule.Total.Cents,
		}
		for _, p := range schedule.Payments {
			dayDTO.Payments = append(dayDTO.Payments, toPaymentDTO(p))
		}
		out.Days = append(out.Days, dayDTO)
	}

	s.monthCache.Set(key, out)
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleCalendarDay(w http.ResponseWriter, r *http.Request) {
	date, err := parseDateParam(r.URL.Query().Get("date"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	ctx := r.Context()
	credits, err := s.repo.ListCredits(ctx)
	if err != nil {
		respondError(w, r, err)
		return
	}
	subs, err := s.repo.ListSubscriptions(ctx)
	if err != nil {
		respondError(w, r, err)
		return
	}

	schedule := aggregate.CalendarDayPayments(credits, subs, date)
	out := calendarDayDTO{
		Date:       schedule.Date.Format(dateLayout),
		TotalCents: schedule.Total.Cents,
		Payments:   make([]paymentDTO, 0, len(schedule.Payments)),
	}
	for _, p := range schedule.Payments {
		out.Payments = append(out.Payments, toPaymentDTO(p))
	}
	respondJSON(w, http.StatusOK, out)
}

type historyEntryDTO struct {
	ID           int64  `json:"id"`
	EventType    string `json:"event_type"`
	EntityKind   string `json:"entity_kind"`
	EntityID     string `json:"entity_id"`
	BalanceCents int64  `json:"balance_cents"`
	OccurredAt   string `json:"occurred_at"`
}

func (s *Server) handleBalanceHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		v, err := strconv.Atoi(l)
		if err != nil || v < 1 {
			respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid limit"})
			return
		}
		limit = v
	}

	entries, err := s.repo.ListBalanceHistory(r.Context(), r.PathValue("kind"), r.PathValue("id"), limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]historyEntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, historyEntryDTO{
			ID: e.ID, EventType: e.EventType, EntityKind: e.EntityKind, EntityID: e.EntityID,
			BalanceCents: e.Balance.Cents, OccurredAt: e.OccurredAt.Format(time.RFC3339),
		})
	}
	respondJSON(w, http.StatusOK, out)
}
