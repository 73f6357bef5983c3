package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oceanz0604/gamecafe/internal/errs"
	"github.com/oceanz0604/gamecafe/internal/model"
)

func TestRegisterMember(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	member, err := env.members.Register(ctx, "  Alice  ", model.TierStudent)
	require.NoError(t, err)
	require.Equal(t, "Alice", member.Username)
	require.Equal(t, 0.0, member.Balance)
	require.Equal(t, model.MemberStatusActive, member.Status)

	// имя уникально без учёта регистра
	_, err = env.members.Register(ctx, "ALICE", model.TierRegular)
	require.ErrorIs(t, err, errs.ErrConflict)

	_, err = env.members.Register(ctx, "", model.TierRegular)
	require.ErrorIs(t, err, errs.ErrValidation)

	_, err = env.members.Register(ctx, "bob", "platinum")
	require.ErrorIs(t, err, errs.ErrValidation)
}

func TestDeactivateMemberWithActiveSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	m1 := env.member(t, "m1", model.TierRegular, 0)
	t1 := env.terminal(t, "T1", model.CategoryPC)

	_, err := env.sessions.StartSession(ctx, &m1.ID, "", t1.ID)
	require.NoError(t, err)

	_, err = env.members.Deactivate(ctx, m1.ID)
	require.ErrorIs(t, err, errs.ErrConflict)
}

func TestActivateDeactivateCycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	m1 := env.member(t, "m1", model.TierRegular, 0)

	member, err := env.members.Deactivate(ctx, m1.ID)
	require.NoError(t, err)
	require.Equal(t, model.MemberStatusInactive, member.Status)

	member, err = env.members.Activate(ctx, m1.ID)
	require.NoError(t, err)
	require.Equal(t, model.MemberStatusActive, member.Status)

	_, err = env.members.Deactivate(ctx, "no-such-member")
	require.ErrorIs(t, err, errs.ErrNotFound)
}
