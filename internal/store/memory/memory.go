package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oceanz0604/gamecafe/internal/model"
	"github.com/oceanz0604/gamecafe/internal/store"
)

// Store — встроенное хранилище на картах под одним RWMutex. Используется в
// тестах и в дев-режиме без Postgres. Записи копируются на входе и выходе,
// чтобы вызывающий код не мутировал внутреннее состояние мимо Update.
type Store struct {
	mu           sync.RWMutex
	members      map[string]*model.Member
	terminals    map[string]*model.Terminal
	sessions     map[string]*model.Session
	transactions map[string]*model.Transaction
	txnOrder     []string // порядок вставки журнала
	bookings     map[string]*model.Booking
}

func New() *Store {
	return &Store{
		members:      make(map[string]*model.Member),
		terminals:    make(map[string]*model.Terminal),
		sessions:     make(map[string]*model.Session),
		transactions: make(map[string]*model.Transaction),
		bookings:     make(map[string]*model.Booking),
	}
}

func (s *Store) Members() store.MemberRepo           { return &memberRepo{s: s} }
func (s *Store) Terminals() store.TerminalRepo       { return &terminalRepo{s: s} }
func (s *Store) Sessions() store.SessionRepo         { return &sessionRepo{s: s} }
func (s *Store) Transactions() store.TransactionRepo { return &transactionRepo{s: s} }
func (s *Store) Bookings() store.BookingRepo         { return &bookingRepo{s: s} }
func (s *Store) Close()                              {}

func cloneMember(m *model.Member) *model.Member {
	if m == nil {
		return nil
	}
	c := *m
	return &c
}

func cloneTerminal(t *model.Terminal) *model.Terminal {
	if t == nil {
		return nil
	}
	c := *t
	if t.CurrentSessionID != nil {
		v := *t.CurrentSessionID
		c.CurrentSessionID = &v
	}
	if t.OccupantLabel != nil {
		v := *t.OccupantLabel
		c.OccupantLabel = &v
	}
	if t.LastActivity != nil {
		v := *t.LastActivity
		c.LastActivity = &v
	}
	return &c
}

func cloneSession(sess *model.Session) *model.Session {
	if sess == nil {
		return nil
	}
	c := *sess
	if sess.MemberID != nil {
		v := *sess.MemberID
		c.MemberID = &v
	}
	if sess.GuestLabel != nil {
		v := *sess.GuestLabel
		c.GuestLabel = &v
	}
	if sess.EndTime != nil {
		v := *sess.EndTime
		c.EndTime = &v
	}
	return &c
}

func cloneTransaction(t *model.Transaction) *model.Transaction {
	if t == nil {
		return nil
	}
	c := *t
	if t.RelatedSessionID != nil {
		v := *t.RelatedSessionID
		c.RelatedSessionID = &v
	}
	return &c
}

func cloneBooking(b *model.Booking) *model.Booking {
	if b == nil {
		return nil
	}
	c := *b
	if b.MemberID != nil {
		v := *b.MemberID
		c.MemberID = &v
	}
	if b.GuestLabel != nil {
		v := *b.GuestLabel
		c.GuestLabel = &v
	}
	return &c
}

type memberRepo struct{ s *Store }

func (r *memberRepo) Create(_ context.Context, member *model.Member) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.members[member.ID] = cloneMember(member)
	return nil
}

func (r *memberRepo) GetByID(_ context.Context, id string) (*model.Member, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return cloneMember(r.s.members[id]), nil
}

func (r *memberRepo) GetByUsername(_ context.Context, username string) (*model.Member, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, m := range r.s.members {
		if strings.EqualFold(m.Username, username) {
			return cloneMember(m), nil
		}
	}
	return nil, nil
}

func (r *memberRepo) Update(_ context.Context, member *model.Member) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.members[member.ID] = cloneMember(member)
	return nil
}

func (r *memberRepo) List(_ context.Context) ([]*model.Member, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*model.Member, 0, len(r.s.members))
	for _, m := range r.s.members {
		out = append(out, cloneMember(m))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type terminalRepo struct{ s *Store }

func (r *terminalRepo) Create(_ context.Context, terminal *model.Terminal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.terminals[terminal.ID] = cloneTerminal(terminal)
	return nil
}

func (r *terminalRepo) GetByID(_ context.Context, id string) (*model.Terminal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return cloneTerminal(r.s.terminals[id]), nil
}

func (r *terminalRepo) GetByName(_ context.Context, name string) (*model.Terminal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, t := range r.s.terminals {
		if strings.EqualFold(t.Name, name) {
			return cloneTerminal(t), nil
		}
	}
	return nil, nil
}

func (r *terminalRepo) Update(_ context.Context, terminal *model.Terminal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.terminals[terminal.ID] = cloneTerminal(terminal)
	return nil
}

func (r *terminalRepo) List(_ context.Context) ([]*model.Terminal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*model.Terminal, 0, len(r.s.terminals))
	for _, t := range r.s.terminals {
		out = append(out, cloneTerminal(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type sessionRepo struct{ s *Store }

func (r *sessionRepo) Create(_ context.Context, session *model.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.sessions[session.ID] = cloneSession(session)
	return nil
}

func (r *sessionRepo) GetByID(_ context.Context, id string) (*model.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return cloneSession(r.s.sessions[id]), nil
}

func (r *sessionRepo) GetActiveByMemberID(_ context.Context, memberID string) (*model.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, sess := range r.s.sessions {
		if sess.Status == model.SessionStatusActive && sess.MemberID != nil && *sess.MemberID == memberID {
			return cloneSession(sess), nil
		}
	}
	return nil, nil
}

func (r *sessionRepo) GetActiveByTerminalID(_ context.Context, terminalID string) (*model.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, sess := range r.s.sessions {
		if sess.Status == model.SessionStatusActive && sess.TerminalID == terminalID {
			return cloneSession(sess), nil
		}
	}
	return nil, nil
}

func (r *sessionRepo) Update(_ context.Context, session *model.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.sessions[session.ID] = cloneSession(session)
	return nil
}

func (r *sessionRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.sessions, id)
	return nil
}

func (r *sessionRepo) List(_ context.Context, status *model.SessionStatus) ([]*model.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*model.Session, 0, len(r.s.sessions))
	for _, sess := range r.s.sessions {
		if status != nil && sess.Status != *status {
			continue
		}
		out = append(out, cloneSession(sess))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

type transactionRepo struct{ s *Store }

func (r *transactionRepo) Append(_ context.Context, txn *model.Transaction, member *model.Member) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.transactions[txn.ID] = cloneTransaction(txn)
	r.s.txnOrder = append(r.s.txnOrder, txn.ID)
	r.s.members[member.ID] = cloneMember(member)
	return nil
}

func (r *transactionRepo) ListByMemberID(_ context.Context, memberID string) ([]*model.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*model.Transaction
	for _, id := range r.s.txnOrder {
		txn := r.s.transactions[id]
		if txn.MemberID == memberID {
			out = append(out, cloneTransaction(txn))
		}
	}
	return out, nil
}

type bookingRepo struct{ s *Store }

func (r *bookingRepo) Create(_ context.Context, booking *model.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.bookings[booking.ID] = cloneBooking(booking)
	return nil
}

func (r *bookingRepo) GetByID(_ context.Context, id string) (*model.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return cloneBooking(r.s.bookings[id]), nil
}

func (r *bookingRepo) Update(_ context.Context, booking *model.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.bookings[booking.ID] = cloneBooking(booking)
	return nil
}

func (r *bookingRepo) ListByTerminal(_ context.Context, terminalID string, status *model.BookingStatus) ([]*model.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*model.Booking
	for _, b := range r.s.bookings {
		if b.TerminalID != terminalID {
			continue
		}
		if status != nil && b.Status != *status {
			continue
		}
		out = append(out, cloneBooking(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (r *bookingRepo) ListExpired(_ context.Context, before time.Time) ([]*model.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*model.Booking
	for _, b := range r.s.bookings {
		if b.Status == model.BookingStatusConfirmed && !b.EndTime.After(before) {
			out = append(out, cloneBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EndTime.Before(out[j].EndTime) })
	return out, nil
}
