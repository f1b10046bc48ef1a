// Package storage persists the domain in SQLite. One repository type serves
// every entity; balance writes are conditional updates so concurrent ledger
// operations cannot silently overwrite each other.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"fintrack/internal/core"
)

const dateLayout = "2006-01-02"

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func formatDate(d core.Date) string {
	return d.Format(dateLayout)
}

func parseDate(s string) (core.Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return core.Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return core.DateOf(t), nil
}

// nullable maps the domain's empty-string "no reference" to SQL NULL so the
// foreign keys stay honest.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func orEmpty(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func newID() string {
	return uuid.NewString()
}

// casUpdate runs a conditional single-row update and maps the zero-rows case
// to ErrNotFound or ErrConcurrentModification depending on whether the row
// exists at all.
func (r *SQLiteRepository) casUpdate(ctx context.Context, table, update string, args []any, id string) error {
	res, err := r.db.ExecContext(ctx, update, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}

	var one int
	err = r.db.QueryRowContext(ctx, "SELECT 1 FROM "+table+" WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("check %s existence: %w", table, err)
	}
	return core.ErrConcurrentModification
}

func (r *SQLiteRepository) deleteRow(ctx context.Context, table, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// --- categories ---

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if c.ID == "" {
		c.ID = newID()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (id, name, type, icon, color) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Name, string(c.Type), c.Icon, c.Color)
	if err != nil {
		return core.Category{}, fmt.Errorf("insert category: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id string) (core.Category, error) {
	var c core.Category
	var typ string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, type, icon, color FROM categories WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &typ, &c.Icon, &c.Color)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, core.ErrNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("select category: %w", err)
	}
	c.Type = core.TransactionType(typ)
	return c, nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, type, icon, color FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var cats []core.Category
	for rows.Next() {
		var c core.Category
		var typ string
		if err := rows.Scan(&c.ID, &c.Name, &typ, &c.Icon, &c.Color); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Type = core.TransactionType(typ)
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, c core.Category) error {
	return r.casUpdate(ctx, "categories",
		`UPDATE categories SET name = ?, type = ?, icon = ?, color = ? WHERE id = ?`,
		[]any{c.Name, string(c.Type), c.Icon, c.Color, c.ID}, c.ID)
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id string) error {
	return r.deleteRow(ctx, "categories", id)
}

// --- credit cards ---

func (r *SQLiteRepository) CreateCreditCard(ctx context.Context, c core.CreditCard) (core.CreditCard, error) {
	if c.ID == "" {
		c.ID = newID()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO credit_cards (id, name, bank, credit_limit_cents, current_balance_cents, cut_off_day, payment_due_day, is_active)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Bank, c.CreditLimit.Cents, c.CurrentBalance.Cents, c.CutOffDay, c.PaymentDueDay, c.IsActive)
	if err != nil {
		return core.CreditCard{}, fmt.Errorf("insert credit card: %w", err)
	}
	return c, nil
}

func scanCreditCard(row interface{ Scan(...any) error }) (core.CreditCard, error) {
	var c core.CreditCard
	err := row.Scan(&c.ID, &c.Name, &c.Bank, &c.CreditLimit.Cents, &c.CurrentBalance.Cents,
		&c.CutOffDay, &c.PaymentDueDay, &c.IsActive)
	return c, err
}

const creditCardCols = `id, name, bank, credit_limit_cents, current_balance_cents, cut_off_day, payment_due_day, is_active`

func (r *SQLiteRepository) GetCreditCard(ctx context.Context, id string) (core.CreditCard, error) {
	c, err := scanCreditCard(r.db.QueryRowContext(ctx,
		`SELECT `+creditCardCols+` FROM credit_cards WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.CreditCard{}, core.ErrNotFound
	}
	if err != nil {
		return core.CreditCard{}, fmt.Errorf("select credit card: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) ListCreditCards(ctx context.Context) ([]core.CreditCard, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+creditCardCols+` FROM credit_cards ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list credit cards: %w", err)
	}
	defer rows.Close()

	var cards []core.CreditCard
	for rows.Next() {
		c, err := scanCreditCard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan credit card: %w", err)
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// UpdateCreditCard writes everything except the balance; balances only move
// through SwapCreditCardBalance.
func (r *SQLiteRepository) UpdateCreditCard(ctx context.Context, c core.CreditCard) error {
	return r.casUpdate(ctx, "credit_cards",
		`UPDATE credit_cards SET name = ?, bank = ?, credit_limit_cents = ?, cut_off_day = ?, payment_due_day = ?, is_active = ? WHERE id = ?`,
		[]any{c.Name, c.Bank, c.CreditLimit.Cents, c.CutOffDay, c.PaymentDueDay, c.IsActive, c.ID}, c.ID)
}

func (r *SQLiteRepository) DeleteCreditCard(ctx context.Context, id string) error {
	return r.deleteRow(ctx, "credit_cards", id)
}

func (r *SQLiteRepository) SwapCreditCardBalance(ctx context.Context, id string, expected, next core.Money) error {
	return r.casUpdate(ctx, "credit_cards",
		`UPDATE credit_cards SET current_balance_cents = ? WHERE id = ? AND current_balance_cents = ?`,
		[]any{next.Cents, id, expected.Cents}, id)
}

// --- debit cards ---

func (r *SQLiteRepository) CreateDebitCard(ctx context.Context, c core.DebitCard) (core.DebitCard, error) {
	if c.ID == "" {
		c.ID = newID()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO debit_cards (id, name, bank, current_balance_cents, is_active) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Bank, c.CurrentBalance.Cents, c.IsActive)
	if err != nil {
		return core.DebitCard{}, fmt.Errorf("insert debit card: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) GetDebitCard(ctx context.Context, id string) (core.DebitCard, error) {
	var c core.DebitCard
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, bank, current_balance_cents, is_active FROM debit_cards WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.Bank, &c.CurrentBalance.Cents, &c.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return core.DebitCard{}, core.ErrNotFound
	}
	if err != nil {
		return core.DebitCard{}, fmt.Errorf("select debit card: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) ListDebitCards(ctx context.Context) ([]core.DebitCard, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, bank, current_balance_cents, is_active FROM debit_cards ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list debit cards: %w", err)
	}
	defer rows.Close()

	var cards []core.DebitCard
	for rows.Next() {
		var c core.DebitCard
		if err := rows.Scan(&c.ID, &c.Name, &c.Bank, &c.CurrentBalance.Cents, &c.IsActive); err != nil {
			return nil, fmt.Errorf("scan debit card: %w", err)
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

func (r *SQLiteRepository) UpdateDebitCard(ctx context.Context, c core.DebitCard) error {
	return r.casUpdate(ctx, "debit_cards",
		`UPDATE debit_cards SET name = ?, bank = ?, is_active = ? WHERE id = ?`,
		[]any{c.Name, c.Bank, c.IsActive, c.ID}, c.ID)
}

func (r *SQLiteRepository) DeleteDebitCard(ctx context.Context, id string) error {
	return r.deleteRow(ctx, "debit_cards", id)
}

func (r *SQLiteRepository) SwapDebitCardBalance(ctx context.Context, id string, expected, next core.Money) error {
	return r.casUpdate(ctx, "debit_cards",
		`UPDATE debit_cards SET current_balance_cents = ? WHERE id = ? AND current_balance_cents = ?`,
		[]any{next.Cents, id, expected.Cents}, id)
}

// --- credits ---

const creditCols = `id, name, institution, original_amount_cents, current_balance_cents, monthly_payment_cents, payment_day, credit_card_id, is_active`

func (r *SQLiteRepository) CreateCredit(ctx context.Context, c core.Credit) (core.Credit, error) {
	if c.ID == "" {
		c.ID = newID()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO credits (`+creditCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Institution, c.OriginalAmount.Cents, c.CurrentBalance.Cents,
		c.MonthlyPayment.Cents, c.PaymentDay, nullable(c.CreditCardID), c.IsActive)
	if err != nil {
		return core.Credit{}, fmt.Errorf("insert credit: %w", err)
	}
	return c, nil
}

func scanCredit(row interface{ Scan(...any) error }) (core.Credit, error) {
	var c core.Credit
	var cardID sql.NullString
	err := row.Scan(&c.ID, &c.Name, &c.Institution, &c.OriginalAmount.Cents, &c.CurrentBalance.Cents,
		&c.MonthlyPayment.Cents, &c.PaymentDay, &cardID, &c.IsActive)
	c.CreditCardID = orEmpty(cardID)
	return c, err
}

func (r *SQLiteRepository) GetCredit(ctx context.Context, id string) (core.Credit, error) {
	c, err := scanCredit(r.db.QueryRowContext(ctx,
		`SELECT `+creditCols+` FROM credits WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Credit{}, core.ErrNotFound
	}
	if err != nil {
		return core.Credit{}, fmt.Errorf("select credit: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) ListCredits(ctx context.Context) ([]core.Credit, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+creditCols+` FROM credits ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list credits: %w", err)
	}
	defer rows.Close()

	var credits []core.Credit
	for rows.Next() {
		c, err := scanCredit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan credit: %w", err)
		}
		credits = append(credits, c)
	}
	return credits, rows.Err()
}

// UpdateCredit writes descriptive fields and the card link; balance and
// active flag only move through SwapCreditState.
func (r *SQLiteRepository) UpdateCredit(ctx context.Context, c core.Credit) error {
	return r.casUpdate(ctx, "credits",
		`UPDATE credits SET name = ?, institution = ?, original_amount_cents = ?, monthly_payment_cents = ?, payment_day = ?, credit_card_id = ? WHERE id = ?`,
		[]any{c.Name, c.Institution, c.OriginalAmount.Cents, c.MonthlyPayment.Cents, c.PaymentDay, nullable(c.CreditCardID), c.ID}, c.ID)
}

func (r *SQLiteRepository) DeleteCredit(ctx context.Context, id string) error {
	return r.deleteRow(ctx, "credits", id)
}

func (r *SQLiteRepository) SwapCreditState(ctx context.Context, id string, expected, next core.Money, active bool) error {
	return r.casUpdate(ctx, "credits",
		`UPDATE credits SET current_balance_cents = ?, is_active = ? WHERE id = ? AND current_balance_cents = ?`,
		[]any{next.Cents, active, id, expected.Cents}, id)
}

// --- subscriptions ---

const subscriptionCols = `id, name, amount_cents, billing_cycle, billing_day, next_billing_date, category_id, credit_card_id, debit_card_id, is_active`

func (r *SQLiteRepository) CreateSubscription(ctx context.Context, s core.Subscription) (core.Subscription, error) {
	if s.ID == "" {
		s.ID = newID()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO subscriptions (`+subscriptionCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.Name, s.Amount.Cents, string(s.BillingCycle), s.BillingDay, formatDate(s.NextBillingDate),
		nullable(s.CategoryID), nullable(s.CreditCardID), nullable(s.DebitCardID), s.IsActive)
	if err != nil {
		return core.Subscription{}, fmt.Errorf("insert subscription: %w", err)
	}
	return s, nil
}

func scanSubscription(row interface{ Scan(...any) error }) (core.Subscription, error) {
	var s core.Subscription
	var cycle, billingDate string
	var categoryID, creditCardID, debitCardID sql.NullString
	err := row.Scan(&s.ID, &s.Name, &s.Amount.Cents, &cycle, &s.BillingDay, &billingDate,
		&categoryID, &creditCardID, &debitCardID, &s.IsActive)
	if err != nil {
		return s, err
	}
	s.BillingCycle = core.BillingCycle(cycle)
	s.CategoryID = orEmpty(categoryID)
	s.CreditCardID = orEmpty(creditCardID)
	s.DebitCardID = orEmpty(debitCardID)
	s.NextBillingDate, err = parseDate(billingDate)
	return s, err
}

func (r *SQLiteRepository) GetSubscription(ctx context.Context, id string) (core.Subscription, error) {
	s, err := scanSubscription(r.db.QueryRowContext(ctx,
		`SELECT `+subscriptionCols+` FROM subscriptions WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Subscription{}, core.ErrNotFound
	}
	if err != nil {
		return core.Subscription{}, fmt.Errorf("select subscription: %w", err)
	}
	return s, nil
}

func (r *SQLiteRepository) ListSubscriptions(ctx context.Context) ([]core.Subscription, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+subscriptionCols+` FROM subscriptions ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []core.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

func (r *SQLiteRepository) UpdateSubscription(ctx context.Context, s core.Subscription) error {
	return r.casUpdate(ctx, "subscriptions",
		`UPDATE subscriptions SET name = ?, amount_cents = ?, billing_cycle = ?, billing_day = ?, next_billing_date = ?, category_id = ?, credit_card_id = ?, debit_card_id = ?, is_active = ? WHERE id = ?`,
		[]any{s.Name, s.Amount.Cents, string(s.BillingCycle), s.BillingDay, formatDate(s.NextBillingDate),
			nullable(s.CategoryID), nullable(s.CreditCardID), nullable(s.DebitCardID), s.IsActive, s.ID}, s.ID)
}

func (r *SQLiteRepository) DeleteSubscription(ctx context.Context, id string) error {
	return r.deleteRow(ctx, "subscriptions", id)
}

// --- transactions ---

const transactionCols = `id, type, amount_cents, date, description, category_id, credit_card_id, debit_card_id, credit_id, is_recurring`

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if t.ID == "" {
		t.ID = newID()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (`+transactionCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, string(t.Type), t.Amount.Cents, formatDate(t.Date), t.Description,
		nullable(t.CategoryID), nullable(t.CreditCardID), nullable(t.DebitCardID), nullable(t.CreditID), t.IsRecurring)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	return t, nil
}

func scanTransaction(row interface{ Scan(...any) error }) (core.Transaction, error) {
	var t core.Transaction
	var typ, dateStr string
	var categoryID, creditCardID, debitCardID, creditID sql.NullString
	err := row.Scan(&t.ID, &typ, &t.Amount.Cents, &dateStr, &t.Description,
		&categoryID, &creditCardID, &debitCardID, &creditID, &t.IsRecurring)
	if err != nil {
		return t, err
	}
	t.Type = core.TransactionType(typ)
	t.CategoryID = orEmpty(categoryID)
	t.CreditCardID = orEmpty(creditCardID)
	t.DebitCardID = orEmpty(debitCardID)
	t.CreditID = orEmpty(creditID)
	t.Date, err = parseDate(dateStr)
	return t, err
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	t, err := scanTransaction(r.db.QueryRowContext(ctx,
		`SELECT `+transactionCols+` FROM transactions WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("select transaction: %w", err)
	}
	return t, nil
}

// TransactionFilter narrows ListTransactions. Zero values mean "no filter".
type TransactionFilter struct {
	Year       int
	Month      time.Month
	CategoryID string
	CreditID   string
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, f TransactionFilter) ([]core.Transaction, error) {
	var where []string
	var args []any
	if f.Year != 0 && f.Month != 0 {
		first := core.NewDate(f.Year, f.Month, 1)
		last := core.DateOf(first.AddDate(0, 1, -1))
		where = append(where, "date >= ? AND date <= ?")
		args = append(args, formatDate(first), formatDate(last))
	}
	if f.CategoryID != "" {
		where = append(where, "category_id = ?")
		args = append(args, f.CategoryID)
	}
	if f.CreditID != "" {
		where = append(where, "credit_id = ?")
		args = append(args, f.CreditID)
	}

	query := `SELECT ` + transactionCols + ` FROM transactions`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date DESC, id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	return r.casUpdate(ctx, "transactions",
		`UPDATE transactions SET type = ?, amount_cents = ?, date = ?, description = ?, category_id = ?, credit_card_id = ?, debit_card_id = ?, credit_id = ?, is_recurring = ? WHERE id = ?`,
		[]any{string(t.Type), t.Amount.Cents, formatDate(t.Date), t.Description,
			nullable(t.CategoryID), nullable(t.CreditCardID), nullable(t.DebitCardID), nullable(t.CreditID), t.IsRecurring, t.ID}, t.ID)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	return r.deleteRow(ctx, "transactions", id)
}

// --- balance history ---

// HistoryEntry is one row of the append-only balance audit trail the worker
// builds from ledger events.
type HistoryEntry struct {
	ID         int64
	EventType  string
	EntityKind string
	EntityID   string
	Balance    core.Money
	OccurredAt time.Time
}

func (r *SQLiteRepository) AppendBalanceHistory(ctx context.Context, e HistoryEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO balance_history (event_type, entity_kind, entity_id, balance_cents, occurred_at) VALUES (?, ?, ?, ?, ?)`,
		e.EventType, e.EntityKind, e.EntityID, e.Balance.Cents, e.OccurredAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert balance history: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListBalanceHistory(ctx context.Context, entityKind, entityID string, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, event_type, entity_kind, entity_id, balance_cents, occurred_at
		 FROM balance_history WHERE entity_kind = ? AND entity_id = ?
		 ORDER BY id DESC LIMIT ?`,
		entityKind, entityID, limit)
	if err != nil {
		return nil, fmt.Errorf("list balance history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var occurred string
		if err := rows.Scan(&e.ID, &e.EventType, &e.EntityKind, &e.EntityID, &e.Balance.Cents, &occurred); err != nil {
			return nil, fmt.Errorf("scan balance history: %w", err)
		}
		if e.OccurredAt, err = time.Parse(time.RFC3339, occurred); err != nil {
			return nil, fmt.Errorf("parse occurred_at: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
