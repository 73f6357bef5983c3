package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oceanz0604/gamecafe/internal/model"
)

func TestMemberRepo(t *testing.T) {
	st := New()
	ctx := context.Background()

	member, err := model.NewMember("Alice", model.TierRegular)
	require.NoError(t, err)
	require.NoError(t, st.Members().Create(ctx, member))

	got, err := st.Members().GetByUsername(ctx, "aLiCe")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, member.ID, got.ID)

	missing, err := st.Members().GetByID(ctx, "nope")
	require.NoError(t, err)
	require.Nil(t, missing)
}

// Репозиторий отдаёт копии: мутация результата не меняет хранилище.
func TestCloneIsolation(t *testing.T) {
	st := New()
	ctx := context.Background()

	member, err := model.NewMember("bob", model.TierGuest)
	require.NoError(t, err)
	require.NoError(t, st.Members().Create(ctx, member))

	got, err := st.Members().GetByID(ctx, member.ID)
	require.NoError(t, err)
	got.Balance = 9999

	again, err := st.Members().GetByID(ctx, member.ID)
	require.NoError(t, err)
	require.Equal(t, 0.0, again.Balance)
}

func TestSessionActiveLookups(t *testing.T) {
	st := New()
	ctx := context.Background()

	memberID := "m-1"
	active := &model.Session{
		ID:         "s-1",
		MemberID:   &memberID,
		TerminalID: "t-1",
		Status:     model.SessionStatusActive,
		StartTime:  time.Now().UTC(),
	}
	ended := &model.Session{
		ID:         "s-2",
		MemberID:   &memberID,
		TerminalID: "t-1",
		Status:     model.SessionStatusEnded,
		StartTime:  time.Now().UTC().Add(-time.Hour),
	}
	require.NoError(t, st.Sessions().Create(ctx, active))
	require.NoError(t, st.Sessions().Create(ctx, ended))

	got, err := st.Sessions().GetActiveByMemberID(ctx, memberID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "s-1", got.ID)

	got, err = st.Sessions().GetActiveByTerminalID(ctx, "t-1")
	require.NoError(t, err)
	require.Equal(t, "s-1", got.ID)

	require.NoError(t, st.Sessions().Delete(ctx, "s-1"))
	got, err = st.Sessions().GetActiveByMemberID(ctx, memberID)
	require.NoError(t, err)
	require.Nil(t, got)

	status := model.SessionStatusEnded
	list, err := st.Sessions().List(ctx, &status)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestTransactionAppendOrder(t *testing.T) {
	st := New()
	ctx := context.Background()

	member, err := model.NewMember("carol", model.TierVIP)
	require.NoError(t, err)
	require.NoError(t, st.Members().Create(ctx, member))

	for i, amount := range []float64{100, -40, 25} {
		member.Balance += amount
		txn := &model.Transaction{
			ID:           string(rune('a' + i)),
			MemberID:     member.ID,
			Amount:       amount,
			BalanceAfter: member.Balance,
			CreatedAt:    time.Now().UTC(),
		}
		require.NoError(t, st.Transactions().Append(ctx, txn, member))
	}

	txns, err := st.Transactions().ListByMemberID(ctx, member.ID)
	require.NoError(t, err)
	require.Len(t, txns, 3)
	require.Equal(t, 100.0, txns[0].Amount)
	require.Equal(t, 25.0, txns[2].Amount)

	// Append сохранил и новое состояние участника
	got, err := st.Members().GetByID(ctx, member.ID)
	require.NoError(t, err)
	require.Equal(t, 85.0, got.Balance)
}

func TestBookingExpiredScan(t *testing.T) {
	st := New()
	ctx := context.Background()

	base := time.Date(2025, 3, 11, 14, 0, 0, 0, time.UTC)
	mk := func(id string, start, end time.Time, status model.BookingStatus) {
		require.NoError(t, st.Bookings().Create(ctx, &model.Booking{
			ID: id, TerminalID: "t-1", StartTime: start, EndTime: end, Status: status,
		}))
	}
	mk("b-1", base, base.Add(time.Hour), model.BookingStatusConfirmed)
	mk("b-2", base.Add(2*time.Hour), base.Add(3*time.Hour), model.BookingStatusConfirmed)
	mk("b-3", base, base.Add(time.Hour), model.BookingStatusCancelled)

	expired, err := st.Bookings().ListExpired(ctx, base.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, expired, 1)
	require.Equal(t, "b-1", expired[0].ID)

	confirmed := model.BookingStatusConfirmed
	list, err := st.Bookings().ListByTerminal(ctx, "t-1", &confirmed)
	require.NoError(t, err)
	require.Len(t, list, 2)
}
