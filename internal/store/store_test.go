package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/slangspace/internal/model"
)

// newTestStore creates an in-memory store whose clock advances one second
// per save.
func newTestStore(t *testing.T, limit int) *SQLiteStore {
	t.Helper()
	s, err := Open(model.StoreConfig{Path: ":memory:", Limit: limit}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return s
}

func term(name string) *model.SlangTerm {
	return &model.SlangTerm{
		Term:           name,
		CurrentMeaning: name + " means something",
		Periods: []model.Period{{
			TimeRange: "2021-2022",
			Meaning:   "early " + name,
			Origin:    "tiktok",
			Comments:  []model.Comment{{User: "u/x", Text: "so " + name, Time: "2021-06-01"}},
		}},
	}
}

func TestSaveAndGet(t *testing.T) {
	s := newTestStore(t, 0)
	ctx := context.Background()

	saved, err := s.Save(ctx, term("Rizz"))
	require.NoError(t, err)
	assert.True(t, saved)

	got, err := s.Get(ctx, " RIZZ ")
	require.NoError(t, err)
	assert.Equal(t, "rizz", got.Term)
	assert.True(t, got.IsCommitted)
	require.Len(t, got.Periods, 1)
	assert.Equal(t, "tiktok", got.Periods[0].Origin)
	assert.Equal(t, 1, got.CommentCount())
}

func TestGetMissing(t *testing.T) {
	s := newTestStore(t, 0)
	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveExisting(t *testing.T) {
	s := newTestStore(t, 0)
	ctx := context.Background()

	_, err := s.Save(ctx, term("rizz"))
	require.NoError(t, err)

	changed := term("rizz")
	changed.CurrentMeaning = "different"
	saved, err := s.Save(ctx, changed)
	require.NoError(t, err)
	assert.False(t, saved)

	got, err := s.Get(ctx, "rizz")
	require.NoError(t, err)
	assert.Equal(t, "rizz means something", got.CurrentMeaning)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSaveEvictsOldestAtLimit(t *testing.T) {
	s := newTestStore(t, 3)
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c", "d"} {
		saved, err := s.Save(ctx, term(name))
		require.NoError(t, err)
		require.True(t, saved)
	}

	list, err := s.List(ctx)
	require.NoError(t, err)
	var names []string
	for _, st := range list {
		names = append(names, st.Term)
	}
	assert.Equal(t, []string{"b", "c", "d"}, names)

	_, err = s.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDefaultLimit(t *testing.T) {
	s := newTestStore(t, 0)
	ctx := context.Background()
	assert.Equal(t, DefaultLimit, s.Limit())

	for i := 0; i < DefaultLimit+5; i++ {
		_, err := s.Save(ctx, term(fmt.Sprintf("t%02d", i)))
		require.NoError(t, err)
	}
	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultLimit, n)

	records, err := s.Records(ctx)
	require.NoError(t, err)
	assert.Equal(t, "t05", records[0].Slang.Term)
	assert.NotEmpty(t, records[0].ID)
	assert.True(t, records[0].CreatedAt.Before(records[1].CreatedAt))
}

func TestSaveRejectsEmpty(t *testing.T) {
	s := newTestStore(t, 0)
	_, err := s.Save(context.Background(), &model.SlangTerm{Term: "  "})
	assert.Error(t, err)
	_, err = s.Save(context.Background(), nil)
	assert.Error(t, err)
}

func TestSaveNilPeriods(t *testing.T) {
	s := newTestStore(t, 0)
	ctx := context.Background()
	_, err := s.Save(ctx, &model.SlangTerm{Term: "mid"})
	require.NoError(t, err)

	got, err := s.Get(ctx, "mid")
	require.NoError(t, err)
	assert.Empty(t, got.Periods)
}

func TestDelete(t *testing.T) {
	s := newTestStore(t, 0)
	ctx := context.Background()
	_, err := s.Save(ctx, term("cap"))
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, "cap"))
	assert.ErrorIs(t, s.Delete(ctx, "cap"), ErrNotFound)
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "slangs.db")
	s, err := Open(model.StoreConfig{Path: path}, nil)
	require.NoError(t, err)
	_, err = s.Save(context.Background(), term("bussin"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := Open(model.StoreConfig{Path: path}, nil)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()
	got, err := reopened.Get(context.Background(), "bussin")
	require.NoError(t, err)
	assert.Equal(t, "bussin", got.Term)
}
