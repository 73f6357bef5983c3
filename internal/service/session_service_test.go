package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/oceanz0604/gamecafe/internal/errs"
	"github.com/oceanz0604/gamecafe/internal/events"
	"github.com/oceanz0604/gamecafe/internal/model"
	"github.com/oceanz0604/gamecafe/internal/rates"
	"github.com/oceanz0604/gamecafe/internal/store/memory"
)

// recordBus копит события для проверок.
type recordBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordBus) Emit(name string, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, events.Event{Name: name, Payload: payload})
}

func (b *recordBus) names() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.events))
	for i, e := range b.events {
		out[i] = e.Name
	}
	return out
}

func (b *recordBus) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

type testEnv struct {
	store     *memory.Store
	bus       *recordBus
	clock     *fakeClock
	members   *MemberService
	terminals *TerminalService
	billing   *BillingService
	sessions  *SessionService
	bookings  *BookingService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st := memory.New()
	logger := zap.NewNop()
	gate := NewGate()
	bus := &recordBus{}
	clock := &fakeClock{t: time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)}
	table := rates.Default()

	terminals := NewTerminalService(gate, st.Terminals(), bus, logger)
	billing := NewBillingService(gate, st.Members(), st.Transactions(), bus, logger)
	members := NewMemberService(gate, st.Members(), st.Sessions(), bus, logger)
	sessions := NewSessionService(gate, st.Members(), st.Sessions(), terminals, billing, table, bus, logger, StartPolicy{})
	bookings := NewBookingService(gate, st.Members(), st.Terminals(), st.Bookings(), table, bus, logger)

	billing.now = clock.Now
	sessions.now = clock.Now
	bookings.now = clock.Now

	return &testEnv{
		store:     st,
		bus:       bus,
		clock:     clock,
		members:   members,
		terminals: terminals,
		billing:   billing,
		sessions:  sessions,
		bookings:  bookings,
	}
}

func (e *testEnv) member(t *testing.T, username string, tier model.MemberTier, balance float64) *model.Member {
	t.Helper()
	member, err := e.members.Register(context.Background(), username, tier)
	require.NoError(t, err)
	if balance > 0 {
		member, _, err = e.billing.Recharge(context.Background(), member.ID, balance, "cash", "")
		require.NoError(t, err)
	}
	return member
}

func (e *testEnv) terminal(t *testing.T, name string, category model.TerminalCategory) *model.Terminal {
	t.Helper()
	terminal, err := e.terminals.Provision(context.Background(), name, category)
	require.NoError(t, err)
	return terminal
}

func TestStartEndSessionBilling(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	m1 := env.member(t, "m1", model.TierRegular, 100)
	t1 := env.terminal(t, "T1", model.CategoryPC)

	env.clock.Set(time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC))
	session, err := env.sessions.StartSession(ctx, &m1.ID, "", t1.ID)
	require.NoError(t, err)
	require.Equal(t, model.SessionStatusActive, session.Status)
	require.Equal(t, 40.0, session.HourlyRate) // PC / regular

	occupied, err := env.terminals.Get(ctx, t1.ID)
	require.NoError(t, err)
	require.Equal(t, model.TerminalStatusOccupied, occupied.Status)
	require.NotNil(t, occupied.CurrentSessionID)
	require.Equal(t, session.ID, *occupied.CurrentSessionID)

	// 31 минута 10 секунд — тарифицируется как 32 полных минуты
	env.clock.Set(time.Date(2025, 3, 10, 10, 31, 10, 0, time.UTC))
	ended, err := env.sessions.EndSession(ctx, session.ID)
	require.NoError(t, err)

	require.Equal(t, model.SessionStatusEnded, ended.Status)
	require.Equal(t, 32, ended.DurationMinutes)
	require.Equal(t, 21.33, ended.Cost)

	member, err := env.members.Get(ctx, m1.ID)
	require.NoError(t, err)
	require.Equal(t, 78.67, member.Balance)
	require.Equal(t, 32, member.TotalMinutes)
	require.Equal(t, 21.33, member.TotalSpent)
	require.Equal(t, 1, member.SessionsCount)

	released, err := env.terminals.Get(ctx, t1.ID)
	require.NoError(t, err)
	require.Equal(t, model.TerminalStatusAvailable, released.Status)
	require.Nil(t, released.CurrentSessionID)
	require.Nil(t, released.OccupantLabel)

	txns, err := env.billing.Transactions(ctx, m1.ID)
	require.NoError(t, err)
	require.Len(t, txns, 2) // пополнение + списание
	charge := txns[1]
	require.Equal(t, model.TransactionSessionCharge, charge.Type)
	require.Equal(t, -21.33, charge.Amount)
	require.Equal(t, 78.67, charge.BalanceAfter)
	require.NotNil(t, charge.RelatedSessionID)
	require.Equal(t, session.ID, *charge.RelatedSessionID)

	require.Contains(t, env.bus.names(), events.SessionStarted)
	require.Contains(t, env.bus.names(), events.SessionEnded)
}

func TestStartSessionOccupiedTerminal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	m1 := env.member(t, "m1", model.TierRegular, 0)
	m2 := env.member(t, "m2", model.TierRegular, 0)
	t1 := env.terminal(t, "T1", model.CategoryPC)

	_, err := env.sessions.StartSession(ctx, &m1.ID, "", t1.ID)
	require.NoError(t, err)

	before := env.bus.count()
	_, err = env.sessions.StartSession(ctx, &m2.ID, "", t1.ID)
	require.ErrorIs(t, err, errs.ErrConflict)

	// ни новой сессии, ни событий
	require.Equal(t, before, env.bus.count())
	active, err := env.sessions.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
}

func TestStartSessionMemberAlreadyInSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	m1 := env.member(t, "m1", model.TierRegular, 0)
	t1 := env.terminal(t, "T1", model.CategoryPC)
	t2 := env.terminal(t, "T2", model.CategoryPC)

	_, err := env.sessions.StartSession(ctx, &m1.ID, "", t1.ID)
	require.NoError(t, err)

	_, err = env.sessions.StartSession(ctx, &m1.ID, "", t2.ID)
	require.ErrorIs(t, err, errs.ErrConflict)

	// второй терминал остался свободным
	available, err := env.terminals.IsAvailable(ctx, t2.ID)
	require.NoError(t, err)
	require.True(t, available)
}

func TestStartSessionUnknownEntities(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t1 := env.terminal(t, "T1", model.CategoryPC)

	_, err := env.sessions.StartSession(ctx, nil, "guest-1", "no-such-terminal")
	require.ErrorIs(t, err, errs.ErrNotFound)

	missing := "no-such-member"
	_, err = env.sessions.StartSession(ctx, &missing, "", t1.ID)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestStartSessionInactiveMember(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	m1 := env.member(t, "m1", model.TierRegular, 0)
	t1 := env.terminal(t, "T1", model.CategoryPC)

	_, err := env.members.Deactivate(ctx, m1.ID)
	require.NoError(t, err)

	_, err = env.sessions.StartSession(ctx, &m1.ID, "", t1.ID)
	require.ErrorIs(t, err, errs.ErrInactiveAccount)
}

func TestGuestSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t1 := env.terminal(t, "T1", model.CategoryPC)

	_, err := env.sessions.StartSession(ctx, nil, "", t1.ID)
	require.ErrorIs(t, err, errs.ErrValidation)

	env.clock.Set(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))
	session, err := env.sessions.StartSession(ctx, nil, "walk-in 7", t1.ID)
	require.NoError(t, err)
	require.Nil(t, session.MemberID)
	require.NotNil(t, session.GuestLabel)
	require.Equal(t, 50.0, session.HourlyRate) // гостевой тариф PC

	env.clock.Set(time.Date(2025, 3, 10, 13, 0, 0, 0, time.UTC))
	ended, err := env.sessions.EndSession(ctx, session.ID)
	require.NoError(t, err)
	require.Equal(t, 60, ended.DurationMinutes)
	require.Equal(t, 50.0, ended.Cost)

	// гостевая сессия не порождает транзакций
	members, err := env.members.List(ctx)
	require.NoError(t, err)
	require.Empty(t, members)
}

func TestEndSessionZeroDuration(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	m1 := env.member(t, "m1", model.TierRegular, 10)
	t1 := env.terminal(t, "T1", model.CategoryPC)

	session, err := env.sessions.StartSession(ctx, &m1.ID, "", t1.ID)
	require.NoError(t, err)

	// часы не двигались: длительность 0, стоимость 0
	ended, err := env.sessions.EndSession(ctx, session.ID)
	require.NoError(t, err)
	require.Equal(t, 0, ended.DurationMinutes)
	require.Equal(t, 0.0, ended.Cost)

	member, err := env.members.Get(ctx, m1.ID)
	require.NoError(t, err)
	require.Equal(t, 10.0, member.Balance)
}

func TestEndSessionMinimumOneMinute(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	m1 := env.member(t, "m1", model.TierRegular, 10)
	t1 := env.terminal(t, "T1", model.CategoryPC)

	env.clock.Set(time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC))
	session, err := env.sessions.StartSession(ctx, &m1.ID, "", t1.ID)
	require.NoError(t, err)

	env.clock.Set(time.Date(2025, 3, 10, 10, 0, 5, 0, time.UTC))
	ended, err := env.sessions.EndSession(ctx, session.ID)
	require.NoError(t, err)
	require.Equal(t, 1, ended.DurationMinutes)
	require.Equal(t, 0.67, ended.Cost) // 40/60, округлённо
}

func TestEndSessionNotFoundAndAlreadyEnded(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	m1 := env.member(t, "m1", model.TierRegular, 100)
	t1 := env.terminal(t, "T1", model.CategoryPC)

	_, err := env.sessions.EndSession(ctx, "no-such-session")
	require.ErrorIs(t, err, errs.ErrNotFound)

	session, err := env.sessions.StartSession(ctx, &m1.ID, "", t1.ID)
	require.NoError(t, err)
	env.clock.Set(env.clock.Now().Add(10 * time.Minute))
	_, err = env.sessions.EndSession(ctx, session.ID)
	require.NoError(t, err)

	memberBefore, err := env.members.Get(ctx, m1.ID)
	require.NoError(t, err)

	_, err = env.sessions.EndSession(ctx, session.ID)
	require.ErrorIs(t, err, errs.ErrConflict)

	// повторное завершение ничего не меняет
	memberAfter, err := env.members.Get(ctx, m1.ID)
	require.NoError(t, err)
	require.Equal(t, memberBefore.Balance, memberAfter.Balance)
	require.Equal(t, memberBefore.SessionsCount, memberAfter.SessionsCount)

	available, err := env.terminals.IsAvailable(ctx, t1.ID)
	require.NoError(t, err)
	require.True(t, available)
}

func TestStartPolicyRequirePositiveBalance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// строгий вариант: на балансе должен быть хотя бы час по тарифу
	strict := NewSessionService(
		NewGate(),
		env.store.Members(),
		env.store.Sessions(),
		env.terminals,
		env.billing,
		rates.Default(),
		&recordBus{},
		zap.NewNop(),
		StartPolicy{RequirePositiveBalance: true},
	)

	m1 := env.member(t, "m1", model.TierRegular, 10)
	t1 := env.terminal(t, "T1", model.CategoryPC)

	_, err := strict.StartSession(ctx, &m1.ID, "", t1.ID)
	require.ErrorIs(t, err, errs.ErrConflict)

	_, _, err = env.billing.Recharge(ctx, m1.ID, 100, "cash", "")
	require.NoError(t, err)

	_, err = strict.StartSession(ctx, &m1.ID, "", t1.ID)
	require.NoError(t, err)
}

func TestNegativeBalanceAllowedByDefault(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	m1 := env.member(t, "m1", model.TierRegular, 0)
	t1 := env.terminal(t, "T1", model.CategoryPC)

	env.clock.Set(time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC))
	session, err := env.sessions.StartSession(ctx, &m1.ID, "", t1.ID)
	require.NoError(t, err)

	env.clock.Set(time.Date(2025, 3, 10, 11, 0, 0, 0, time.UTC))
	_, err = env.sessions.EndSession(ctx, session.ID)
	require.NoError(t, err)

	member, err := env.members.Get(ctx, m1.ID)
	require.NoError(t, err)
	require.Equal(t, -40.0, member.Balance)

	report, err := env.billing.Reconcile(ctx, m1.ID)
	require.NoError(t, err)
	require.True(t, report.Consistent)
}

func TestCeilMinutes(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want int
	}{
		{0, 0},
		{time.Second, 1},
		{time.Minute, 1},
		{time.Minute + time.Second, 2},
		{31*time.Minute + 10*time.Second, 32},
		{2 * time.Hour, 120},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, ceilMinutes(tc.d), "duration %s", tc.d)
	}
}
