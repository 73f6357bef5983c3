package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oceanz0604/gamecafe/internal/errs"
	"github.com/oceanz0604/gamecafe/internal/model"
)

func TestProvisionDuplicateName(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.terminals.Provision(ctx, "PC-01", model.CategoryPC)
	require.NoError(t, err)

	_, err = env.terminals.Provision(ctx, "pc-01", model.CategoryPC)
	require.ErrorIs(t, err, errs.ErrConflict)

	_, err = env.terminals.Provision(ctx, "", model.CategoryPC)
	require.ErrorIs(t, err, errs.ErrValidation)

	_, err = env.terminals.Provision(ctx, "PC-02", "ARCADE")
	require.ErrorIs(t, err, errs.ErrValidation)
}

func TestOccupyAndRelease(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t1 := env.terminal(t, "T1", model.CategoryPC)

	occupied, err := env.terminals.Occupy(ctx, t1.ID, "session-1", "m1")
	require.NoError(t, err)
	require.Equal(t, model.TerminalStatusOccupied, occupied.Status)
	require.NotNil(t, occupied.LastActivity)

	// повторное занятие — конфликт
	_, err = env.terminals.Occupy(ctx, t1.ID, "session-2", "m2")
	require.ErrorIs(t, err, errs.ErrConflict)

	_, err = env.terminals.Occupy(ctx, "no-such-terminal", "session-3", "m3")
	require.ErrorIs(t, err, errs.ErrNotFound)

	released, err := env.terminals.Release(ctx, t1.ID)
	require.NoError(t, err)
	require.Equal(t, model.TerminalStatusAvailable, released.Status)
	require.Nil(t, released.CurrentSessionID)

	_, err = env.terminals.Release(ctx, "no-such-terminal")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestMaintenanceToggles(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t1 := env.terminal(t, "T1", model.CategoryXbox)

	maint, err := env.terminals.SetMaintenance(ctx, t1.ID)
	require.NoError(t, err)
	require.Equal(t, model.TerminalStatusMaintenance, maint.Status)

	available, err := env.terminals.IsAvailable(ctx, t1.ID)
	require.NoError(t, err)
	require.False(t, available)

	back, err := env.terminals.SetActive(ctx, t1.ID)
	require.NoError(t, err)
	require.Equal(t, model.TerminalStatusAvailable, back.Status)
	require.True(t, back.IsActive)

	// занятый терминал нельзя увести в обслуживание
	_, err = env.terminals.Occupy(ctx, t1.ID, "session-1", "m1")
	require.NoError(t, err)
	_, err = env.terminals.SetMaintenance(ctx, t1.ID)
	require.ErrorIs(t, err, errs.ErrConflict)
	_, err = env.terminals.Deactivate(ctx, t1.ID)
	require.ErrorIs(t, err, errs.ErrConflict)
}

func TestDeactivateTerminal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t1 := env.terminal(t, "T1", model.CategoryPS)

	off, err := env.terminals.Deactivate(ctx, t1.ID)
	require.NoError(t, err)
	require.Equal(t, model.TerminalStatusOffline, off.Status)
	require.False(t, off.IsActive)

	available, err := env.terminals.IsAvailable(ctx, t1.ID)
	require.NoError(t, err)
	require.False(t, available)
}

// Release терминала в MAINTENANCE чистит данные занятости, но статус не трогает.
func TestReleaseKeepsMaintenanceStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t1 := env.terminal(t, "T1", model.CategoryPC)

	// имитируем рассинхрон: терминал в обслуживании, но с висящей занятостью
	raw, err := env.store.Terminals().GetByID(ctx, t1.ID)
	require.NoError(t, err)
	sessionID := "stale-session"
	label := "stale"
	now := time.Now().UTC()
	raw.Status = model.TerminalStatusMaintenance
	raw.CurrentSessionID = &sessionID
	raw.OccupantLabel = &label
	raw.LastActivity = &now
	require.NoError(t, env.store.Terminals().Update(ctx, raw))

	released, err := env.terminals.Release(ctx, t1.ID)
	require.NoError(t, err)
	require.Equal(t, model.TerminalStatusMaintenance, released.Status)
	require.Nil(t, released.CurrentSessionID)
	require.Nil(t, released.OccupantLabel)
}

func TestIsAvailableUnknownTerminal(t *testing.T) {
	env := newTestEnv(t)

	available, err := env.terminals.IsAvailable(context.Background(), "no-such-terminal")
	require.NoError(t, err)
	require.False(t, available)
}
