package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_CreateGetUpdateDelete(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore(0)

	s, err := st.Create(ctx, "12345")
	require.NoError(t, err)
	require.NotEmpty(t, s.ID)
	assert.Equal(t, "12345", s.RecipientID)
	assert.True(t, s.Cart.IsEmpty())

	_, err = st.Update(ctx, s.ID, func(s *Session) error {
		s.Cart.Add(1, "Щітка", decimal.NewFromInt(176), "")
		return nil
	})
	require.NoError(t, err)

	got, err := st.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Cart.TotalItemCount())

	require.NoError(t, st.Delete(ctx, s.ID))
	_, err = st.Get(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, st.Delete(ctx, s.ID), ErrNotFound)
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore(0)
	s, _ := st.Create(ctx, "r")

	got, err := st.Get(ctx, s.ID)
	require.NoError(t, err)
	got.Cart.Add(7, "x", decimal.NewFromInt(1), "")

	again, err := st.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, again.Cart.IsEmpty())
}

func TestMemoryStore_UpdateErrorKeepsState(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore(0)
	s, _ := st.Create(ctx, "r")

	boom := errors.New("boom")
	_, err := st.Update(ctx, s.ID, func(s *Session) error {
		s.Cart.Add(1, "x", decimal.NewFromInt(5), "")
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, _ := st.Get(ctx, s.ID)
	assert.True(t, got.Cart.IsEmpty())
}

func TestMemoryStore_ConcurrentUpdatesAreSerialised(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore(0)
	s, _ := st.Create(ctx, "r")

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := st.Update(ctx, s.ID, func(s *Session) error {
				s.Cart.Add(1, "x", decimal.NewFromInt(1), "")
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, _ := st.Get(ctx, s.ID)
	assert.Equal(t, n, got.Cart.TotalItemCount())
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore(time.Minute)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return now }

	s, _ := st.Create(ctx, "r")
	now = now.Add(2 * time.Minute)

	_, err := st.Get(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, st.Sweep())
}

func TestMemoryLocker(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLocker()

	release, err := l.TryLock(ctx, "checkout:a", time.Minute)
	require.NoError(t, err)

	_, err = l.TryLock(ctx, "checkout:a", time.Minute)
	assert.ErrorIs(t, err, ErrLocked)

	// другой ключ не блокируется
	rel2, err := l.TryLock(ctx, "checkout:b", time.Minute)
	require.NoError(t, err)
	rel2()

	release()
	release2, err := l.TryLock(ctx, "checkout:a", time.Minute)
	require.NoError(t, err)

	// повторный release старого владельца не снимает новую блокировку
	release()
	_, err = l.TryLock(ctx, "checkout:a", time.Minute)
	assert.ErrorIs(t, err, ErrLocked)
	release2()
}
