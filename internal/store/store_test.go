package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndreyKorzunin/projectassist/internal/session"
	"github.com/AndreyKorzunin/projectassist/internal/stats"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "docassist.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestStore_KV(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put(ctx, "k", "v1"))
	require.NoError(t, s.Put(ctx, "k", "v2"))

	v, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v2", v)
}

func TestStore_StatsSurviveReopen(t *testing.T) {
	s, path := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, stats.NewStore(s).Save(ctx, stats.Stats{Documents: 2, Queries: 5}))
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	st, err := stats.NewStore(reopened).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, stats.Stats{Documents: 2, Queries: 5}, st)
}

func TestStore_SessionHistory(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	older := &session.Session{ID: "s1", Filename: "a.pdf", DocType: session.DocPDF, StartTime: time.Now().Add(-time.Hour)}
	newer := &session.Session{ID: "s2", Filename: "b.docx", DocType: session.DocWord, StartTime: time.Now()}
	require.NoError(t, s.SaveSession(ctx, older))
	require.NoError(t, s.SaveSession(ctx, newer))

	base := time.Now()
	msgs := []session.Message{
		{ID: "m1", Kind: session.KindUser, Text: "question", Timestamp: base},
		{ID: "m2", Kind: session.KindLoading, Text: "Analyzing...", Timestamp: base.Add(time.Millisecond)},
		{ID: "m3", Kind: session.KindBot, Text: "**answer**", Timestamp: base.Add(2 * time.Millisecond)},
	}
	require.NoError(t, s.SaveMessages(ctx, "s2", msgs))
	// Saving the same transcript again does not duplicate rows.
	require.NoError(t, s.SaveMessages(ctx, "s2", msgs))

	list, err := s.ListSessions(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "s2", list[0].ID)
	assert.Equal(t, session.DocWord, list[0].DocType)
	assert.Equal(t, 2, list[0].MessageCount)
	assert.Equal(t, 0, list[1].MessageCount)

	loaded, err := s.LoadMessages(ctx, "s2")
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "m1", loaded[0].ID)
	assert.Equal(t, session.KindBot, loaded[1].Kind)
	assert.Equal(t, "**answer**", loaded[1].Text)
}
