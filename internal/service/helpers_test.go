package service

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/finance-tracker/internal/domain"
	"github.com/spec-kit/finance-tracker/internal/events"
	"github.com/spec-kit/finance-tracker/internal/session"
)

// In-memory doubles shared across the service tests.

type memUsers struct {
	byEmail map[string]*domain.User
	nextID  int
}

func newMemUsers() *memUsers {
	return &memUsers{byEmail: make(map[string]*domain.User)}
}

func (m *memUsers) Create(ctx context.Context, user *domain.User) error {
	m.nextID++
	user.ID = fmt.Sprintf("u-%d", m.nextID)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	m.byEmail[user.Email] = user
	return nil
}

func (m *memUsers) Update(ctx context.Context, user *domain.User) error {
	m.byEmail[user.Email] = user
	return nil
}

func (m *memUsers) GetByID(ctx context.Context, id string) (*domain.User, error) {
	for _, u := range m.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return u, nil
}

func (m *memUsers) SetOTP(ctx context.Context, userID string, slot domain.OTPSlot, code *string) error {
	u, err := m.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if slot == domain.OTPSlotRegister {
		u.OTPRegister = code
	} else {
		u.OTPLogin = code
	}
	return nil
}

func (m *memUsers) MarkEmailVerified(ctx context.Context, userID string) error {
	u, err := m.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	now := time.Now()
	u.EmailVerifiedAt = &now
	u.OTPRegister = nil
	return nil
}

func (m *memUsers) ReplacePassword(ctx context.Context, userID, passwordHash, rememberToken string) error {
	u, err := m.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	u.PasswordHash = passwordHash
	u.RememberToken = &rememberToken
	return nil
}

type memTickets struct {
	data map[string]map[session.Namespace]session.Ticket
}

func newMemTickets() *memTickets {
	return &memTickets{data: make(map[string]map[session.Namespace]session.Ticket)}
}

func (m *memTickets) PutTicket(ctx context.Context, sessionID string, ns session.Namespace, ticket session.Ticket) error {
	if m.data[sessionID] == nil {
		m.data[sessionID] = make(map[session.Namespace]session.Ticket)
	}
	m.data[sessionID][ns] = ticket
	return nil
}

func (m *memTickets) GetTicket(ctx context.Context, sessionID string, ns session.Namespace) (*session.Ticket, error) {
	ticket, ok := m.data[sessionID][ns]
	if !ok {
		return nil, nil
	}
	return &ticket, nil
}

func (m *memTickets) ClearTickets(ctx context.Context, sessionID string, namespaces ...session.Namespace) error {
	for _, ns := range namespaces {
		delete(m.data[sessionID], ns)
	}
	return nil
}

type memDispatcher struct {
	published []events.Event
}

func (m *memDispatcher) Publish(ctx context.Context, event events.Event) error {
	m.published = append(m.published, event)
	return nil
}

func (m *memDispatcher) Subscribe(eventType events.EventType, handler events.EventHandler) {}

// lastOTP returns the most recently dispatched code for a flow kind.
func (m *memDispatcher) lastOTP(t *testing.T, kind events.OTPKind) string {
	t.Helper()
	for i := len(m.published) - 1; i >= 0; i-- {
		if m.published[i].Type != events.EventOTPIssued {
			continue
		}
		payload, ok := m.published[i].Payload.(events.OTPIssuedPayload)
		require.True(t, ok)
		if payload.Kind == kind {
			return payload.Code
		}
	}
	t.Fatalf("no %s otp dispatched", kind)
	return ""
}

func (m *memDispatcher) countOf(eventType events.EventType) int {
	count := 0
	for _, event := range m.published {
		if event.Type == eventType {
			count++
		}
	}
	return count
}

type memCategories struct {
	byID   map[string]*domain.Category
	nextID int
}

func newMemCategories() *memCategories {
	return &memCategories{byID: make(map[string]*domain.Category)}
}

func (m *memCategories) Create(ctx context.Context, category *domain.Category) error {
	m.nextID++
	category.ID = fmt.Sprintf("c-%d", m.nextID)
	category.CreatedAt = time.Now()
	category.UpdatedAt = category.CreatedAt
	stored := *category
	m.byID[category.ID] = &stored
	return nil
}

func (m *memCategories) Update(ctx context.Context, category *domain.Category) error {
	existing, ok := m.byID[category.ID]
	if !ok || existing.UserID != category.UserID {
		return pgx.ErrNoRows
	}
	stored := *category
	m.byID[category.ID] = &stored
	return nil
}

func (m *memCategories) Delete(ctx context.Context, userID, id string) error {
	existing, ok := m.byID[id]
	if !ok || existing.UserID != userID {
		return pgx.ErrNoRows
	}
	delete(m.byID, id)
	return nil
}

func (m *memCategories) GetByID(ctx context.Context, userID, id string) (*domain.Category, error) {
	existing, ok := m.byID[id]
	if !ok || existing.UserID != userID {
		return nil, pgx.ErrNoRows
	}
	copied := *existing
	return &copied, nil
}

func (m *memCategories) ListByUser(ctx context.Context, userID string, activeOnly bool) ([]domain.Category, error) {
	out := make([]domain.Category, 0)
	for _, c := range m.byID {
		if c.UserID != userID {
			continue
		}
		if activeOnly && !c.IsActive {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memTransactions struct {
	byID       map[string]*domain.Transaction
	categories *memCategories
	nextID     int

	// sumCalls records the ranges passed to SumBetween, for the dashboard
	// period-boundary assertions.
	sumCalls [][2]time.Time
}

func newMemTransactions(categories *memCategories) *memTransactions {
	return &memTransactions{byID: make(map[string]*domain.Transaction), categories: categories}
}

func (m *memTransactions) Create(ctx context.Context, tx *domain.Transaction) error {
	m.nextID++
	tx.ID = fmt.Sprintf("t-%d", m.nextID)
	tx.CreatedAt = time.Now()
	tx.UpdatedAt = tx.CreatedAt
	stored := *tx
	m.byID[tx.ID] = &stored
	return nil
}

func (m *memTransactions) Update(ctx context.Context, tx *domain.Transaction) error {
	existing, ok := m.byID[tx.ID]
	if !ok || existing.UserID != tx.UserID {
		return pgx.ErrNoRows
	}
	stored := *tx
	if tx.PhotoKey == nil {
		stored.PhotoKey = existing.PhotoKey
	}
	m.byID[tx.ID] = &stored
	return nil
}

func (m *memTransactions) Delete(ctx context.Context, userID, id string) error {
	existing, ok := m.byID[id]
	if !ok || existing.UserID != userID {
		return pgx.ErrNoRows
	}
	delete(m.byID, id)
	return nil
}

func (m *memTransactions) GetByID(ctx context.Context, userID, id string) (*domain.Transaction, error) {
	existing, ok := m.byID[id]
	if !ok || existing.UserID != userID {
		return nil, pgx.ErrNoRows
	}
	copied := *existing
	if m.categories != nil {
		if cat, err := m.categories.GetByID(ctx, userID, copied.CategoryID); err == nil {
			copied.Category = cat
		}
	}
	return &copied, nil
}

func (m *memTransactions) ListByUser(ctx context.Context, userID string) ([]domain.Transaction, error) {
	out := make([]domain.Transaction, 0)
	for _, tx := range m.byID {
		if tx.UserID == userID {
			out = append(out, *tx)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memTransactions) SumBetween(ctx context.Context, userID string, from, to time.Time) (float64, error) {
	m.sumCalls = append(m.sumCalls, [2]time.Time{from, to})
	total := 0.0
	for _, tx := range m.byID {
		if tx.UserID != userID {
			continue
		}
		day := tx.Date
		if day.Before(from) || day.After(to) {
			continue
		}
		total += tx.Amount
	}
	return total, nil
}

func (m *memTransactions) CategoryTotals(ctx context.Context, userID string, limit int) ([]domain.CategorySpend, error) {
	byCategory := make(map[string]*domain.CategorySpend)
	for _, tx := range m.byID {
		if tx.UserID != userID {
			continue
		}
		spend, ok := byCategory[tx.CategoryID]
		if !ok {
			spend = &domain.CategorySpend{CategoryID: tx.CategoryID}
			if cat, err := m.categories.GetByID(ctx, userID, tx.CategoryID); err == nil {
				spend.CategoryName = cat.Name
			}
			byCategory[tx.CategoryID] = spend
		}
		spend.TotalAmount += tx.Amount
		spend.Count++
	}

	out := make([]domain.CategorySpend, 0, len(byCategory))
	for _, spend := range byCategory {
		out = append(out, *spend)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TotalAmount > out[j].TotalAmount })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
