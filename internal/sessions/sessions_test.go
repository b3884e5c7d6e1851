package sessions

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sadopc/kairu/internal/store"
)

func session(id string, start int64, date string) store.FocusSession {
	return store.FocusSession{
		ID:                    id,
		StartTime:             start,
		EndTime:               start + 60_000,
		ActualDurationSeconds: 60,
		TargetDurationSeconds: 60,
		Status:                store.StatusCompleted,
		Date:                  date,
	}
}

func ids(list []store.FocusSession) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = s.ID
	}
	return out
}

func TestAppendKeepsNewestFirst(t *testing.T) {
	st := New()
	for _, s := range []store.FocusSession{
		session("b", 2000, "2026-10-14"),
		session("c", 3000, "2026-10-15"),
		session("a", 1000, "2026-10-13"),
	} {
		ok, err := st.Append(s)
		require.NoError(t, err)
		require.True(t, ok)
	}
	require.Equal(t, []string{"c", "b", "a"}, ids(st.List()))
}

func TestAppendIgnoresDuplicateID(t *testing.T) {
	st := New()
	_, err := st.Append(session("a", 1000, "2026-10-15"))
	require.NoError(t, err)

	ok, err := st.Append(session("a", 5000, "2026-10-15"))
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, 1, st.Len())
	require.Equal(t, int64(1000), st.List()[0].StartTime)
}

func TestAppendRejectsInvalid(t *testing.T) {
	st := New()
	bad := session("a", 1000, "2026-10-15")
	bad.ActualDurationSeconds = 120
	ok, err := st.Append(bad)
	require.ErrorIs(t, err, store.ErrInvalidSession)
	require.False(t, ok)
	require.Zero(t, st.Len())
}

func TestReplaceAllDedupesAndSorts(t *testing.T) {
	st := New()
	st.Append(session("stale", 9000, "2026-10-15"))

	st.ReplaceAll([]store.FocusSession{
		session("a", 1000, "2026-10-13"),
		session("c", 3000, "2026-10-15"),
		session("a", 4000, "2026-10-15"),
		session("b", 2000, "2026-10-14"),
	})
	require.Equal(t, []string{"c", "b", "a"}, ids(st.List()))

	// ids index is rebuilt, so stale is appendable again and a is not.
	ok, _ := st.Append(session("stale", 9000, "2026-10-15"))
	require.True(t, ok)
	ok, _ = st.Append(session("a", 1000, "2026-10-13"))
	require.False(t, ok)
}

func TestListReturnsCopy(t *testing.T) {
	st := New()
	st.Append(session("a", 1000, "2026-10-15"))
	list := st.List()
	list[0].ID = "mutated"
	require.Equal(t, "a", st.List()[0].ID)
}

func TestOnDate(t *testing.T) {
	st := New()
	st.Append(session("a", 1000, "2026-10-14"))
	st.Append(session("b", 2000, "2026-10-15"))
	st.Append(session("c", 3000, "2026-10-15"))

	require.Equal(t, []string{"c", "b"}, ids(st.OnDate("2026-10-15")))
	require.Empty(t, st.OnDate("2026-01-01"))
}

func TestClear(t *testing.T) {
	st := New()
	st.Append(session("a", 1000, "2026-10-14"))
	st.Clear()
	require.Zero(t, st.Len())
	ok, _ := st.Append(session("a", 1000, "2026-10-14"))
	require.True(t, ok)
}

func TestConcurrentAppend(t *testing.T) {
	st := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			st.Append(session(fmt.Sprintf("s%d", i), int64(i*1000), "2026-10-15"))
		}(i)
	}
	wg.Wait()

	list := st.List()
	require.Len(t, list, 50)
	for i := 1; i < len(list); i++ {
		require.Greater(t, list[i-1].StartTime, list[i].StartTime)
	}
}
