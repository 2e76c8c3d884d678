package session

import (
	"context"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"

	"github.com/and161185/o1chat/internal/errs"
	"github.com/and161185/o1chat/internal/failover"
	"github.com/and161185/o1chat/internal/transport/transporttest"
)

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	c := failover.New(failover.ServerSet{"http://s1"}, transporttest.New(), nil)
	_, err := New("  ", c)
	require.ErrorIs(t, err, errs.ErrEmptyUsername)

	_, err = New("alice", nil)
	require.Error(t, err)
}

func TestNew_Fields(t *testing.T) {
	t.Parallel()

	fake := transporttest.New()
	c := failover.New(failover.ServerSet{"http://s1", "http://s2"}, fake, nil)
	s, err := New(" alice ", c)
	require.NoError(t, err)
	require.Equal(t, "alice", s.Identity())
	require.NotEqual(t, uuid.Nil, s.ID())
	require.False(t, s.StartedAt().IsZero())
	require.Same(t, c, s.Client())
	require.Equal(t, "", s.HomeServer())

	fake.SetDown("http://s1", true)
	_, err = c.ListUsers(context.Background())
	require.NoError(t, err)
	require.Equal(t, "http://s2", s.HomeServer())

	other, err := New("alice", c)
	require.NoError(t, err)
	require.NotEqual(t, s.ID(), other.ID())
}
