// Package storetest provides the behavior checks shared by every
// database.Store backend.
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/jason-s-yu/d20potz/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises newStore against the Store contract. newStore must return an
// empty store; Run closes it.
func Run(t *testing.T, newStore func(t *testing.T) database.Store) {
	t.Helper()

	t.Run("GetMissing", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()
		_, err := s.Get(context.Background(), []byte("nope"))
		assert.ErrorIs(t, err, database.ErrNotFound)
	})

	t.Run("PutGetOverwrite", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()
		ctx := context.Background()
		require.NoError(t, s.Put(ctx, []byte("player_hp_1_alice"), []byte("10")))
		v, err := s.Get(ctx, []byte("player_hp_1_alice"))
		require.NoError(t, err)
		assert.Equal(t, "10", string(v))

		require.NoError(t, s.Put(ctx, []byte("player_hp_1_alice"), []byte("7")))
		v, err = s.Get(ctx, []byte("player_hp_1_alice"))
		require.NoError(t, err)
		assert.Equal(t, "7", string(v))
	})

	t.Run("Delete", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()
		ctx := context.Background()
		require.NoError(t, s.Put(ctx, []byte("k"), []byte("v")))
		require.NoError(t, s.Delete(ctx, []byte("k")))
		_, err := s.Get(ctx, []byte("k"))
		assert.ErrorIs(t, err, database.ErrNotFound)
		assert.NoError(t, s.Delete(ctx, []byte("k")), "deleting a missing key")
	})

	t.Run("ScanRangeOrdered", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()
		ctx := context.Background()
		for _, k := range []string{"p_c", "p_a", "p_b", "o_z", "q_a", "p_"} {
			require.NoError(t, s.Put(ctx, []byte(k), []byte("v"+k)))
		}
		var got []string
		err := s.Scan(ctx, []byte("p_"), []byte("p_\xff"), func(k, v []byte) error {
			assert.Equal(t, "v"+string(k), string(v))
			got = append(got, string(k))
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"p_", "p_a", "p_b", "p_c"}, got)
	})

	t.Run("ScanStopsOnError", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()
		ctx := context.Background()
		require.NoError(t, s.Put(ctx, []byte("a1"), []byte("1")))
		require.NoError(t, s.Put(ctx, []byte("a2"), []byte("2")))
		stop := errors.New("stop")
		calls := 0
		err := s.Scan(ctx, []byte("a"), []byte("a\xff"), func(k, v []byte) error {
			calls++
			return stop
		})
		assert.ErrorIs(t, err, stop)
		assert.Equal(t, 1, calls)
	})

	t.Run("ScanWritesBack", func(t *testing.T) {
		s := newStore(t)
		defer s.Close()
		ctx := context.Background()
		require.NoError(t, s.Put(ctx, []byte("c_1"), []byte("0")))
		require.NoError(t, s.Put(ctx, []byte("c_2"), []byte("0")))
		err := s.Scan(ctx, []byte("c_"), []byte("c_\xff"), func(k, v []byte) error {
			return s.Put(ctx, k, []byte("1"))
		})
		require.NoError(t, err)
		v, err := s.Get(ctx, []byte("c_2"))
		require.NoError(t, err)
		assert.Equal(t, "1", string(v))
	})
}
