package ordering

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMove(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		want     []string
	}{
		{"first to last", 0, 3, []string{"b", "c", "d", "a"}},
		{"last to first", 3, 0, []string{"d", "a", "b", "c"}},
		{"adjacent down", 1, 2, []string{"a", "c", "b", "d"}},
		{"adjacent up", 2, 1, []string{"a", "c", "b", "d"}},
		{"same index", 2, 2, []string{"a", "b", "c", "d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := []string{"a", "b", "c", "d"}
			got, err := Move(in, tt.from, tt.to)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, []string{"a", "b", "c", "d"}, in, "input must not change")
		})
	}
}

func TestMove_OutOfRange(t *testing.T) {
	items := []int{1, 2, 3}
	for _, idx := range [][2]int{{-1, 0}, {3, 0}, {0, 3}, {0, -1}} {
		_, err := Move(items, idx[0], idx[1])
		assert.ErrorIs(t, err, ErrIndexOutOfRange, "from=%d to=%d", idx[0], idx[1])
	}

	_, err := Move([]int{}, 0, 0)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

// Moving any element anywhere and back again restores the original order.
func TestMove_RoundTrip(t *testing.T) {
	items := []int{0, 1, 2, 3, 4, 5}
	for from := range items {
		for to := range items {
			moved, err := Move(items, from, to)
			require.NoError(t, err)
			assert.Equal(t, items[from], moved[to])

			back, err := Move(moved, to, from)
			require.NoError(t, err)
			assert.Equal(t, items, back)
		}
	}
}

type summary struct {
	ID    string
	Title string
}

func summaryID(s summary) string { return s.ID }

type recordingReconciler struct {
	calls [][]string
	err   error
}

func (r *recordingReconciler) Reorder(ctx context.Context, ids []string) (int64, error) {
	r.calls = append(r.calls, ids)
	if r.err != nil {
		return 0, r.err
	}
	return int64(len(ids)), nil
}

func newList() *DragList[summary] {
	return New([]summary{{"1", "A"}, {"2", "B"}, {"3", "C"}, {"4", "D"}}, summaryID)
}

func TestDragList_MoveMarksDirty(t *testing.T) {
	l := newList()
	assert.False(t, l.Dirty())

	require.NoError(t, l.Move(1, 1))
	assert.False(t, l.Dirty(), "same-index move is a no-op")

	require.NoError(t, l.Move(0, 3))
	assert.True(t, l.Dirty())
	assert.Equal(t, []string{"2", "3", "4", "1"}, l.IDs())

	assert.ErrorIs(t, l.Move(0, 9), ErrIndexOutOfRange)
	assert.Equal(t, []string{"2", "3", "4", "1"}, l.IDs())
}

func TestDragList_ItemsIsCopy(t *testing.T) {
	l := newList()
	items := l.Items()
	items[0].Title = "changed"
	assert.Equal(t, "A", l.Items()[0].Title)
}

func TestDragList_Commit(t *testing.T) {
	ctx := context.Background()
	l := newList()
	r := &recordingReconciler{}

	n, err := l.Commit(ctx, r)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, r.calls, "clean list does not call the reconciler")

	require.NoError(t, l.Move(3, 0))
	n, err = l.Commit(ctx, r)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.Equal(t, [][]string{{"4", "1", "2", "3"}}, r.calls)
	assert.False(t, l.Dirty())
}

func TestDragList_CommitFailureKeepsDirty(t *testing.T) {
	l := newList()
	r := &recordingReconciler{err: errors.New("unavailable")}

	require.NoError(t, l.Move(0, 1))
	_, err := l.Commit(context.Background(), r)
	require.Error(t, err)
	assert.True(t, l.Dirty())
	assert.Equal(t, []string{"2", "1", "3", "4"}, l.IDs())
}

func TestDragList_Remove(t *testing.T) {
	l := newList()
	assert.True(t, l.Remove("2"))
	assert.False(t, l.Remove("missing"))
	assert.Equal(t, []string{"1", "3", "4"}, l.IDs())
	assert.Equal(t, 3, l.Len())
	assert.False(t, l.Dirty())
}
