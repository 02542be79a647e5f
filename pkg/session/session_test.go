package session_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/arbor/pkg/engine"
	"github.com/Sumatoshi-tech/arbor/pkg/ordtree"
	"github.com/Sumatoshi-tech/arbor/pkg/session"
)

func testOptions() session.Options {
	return session.Options{
		Mode:             ordtree.ModeBST,
		VerifyInvariants: true,
	}
}

func TestSessionCommitCycle(t *testing.T) {
	t.Parallel()

	sess := session.New("alpha", testOptions())
	ctx := context.Background()

	for _, raw := range []string{"10", "5", "15"} {
		outcome, err := sess.Commit(ctx, engine.OpInsert, raw)
		require.NoError(t, err)
		assert.Equal(t, engine.OutcomeInserted, outcome.Kind)
	}

	assert.Equal(t, []int64{5, 10, 15}, sess.Tree().Traverse(ordtree.InOrder))

	outcome, err := sess.Commit(ctx, engine.OpInsert, "nonsense")
	require.NoError(t, err)
	assert.Equal(t, engine.OutcomeValidationError, outcome.Kind)
	assert.Equal(t, 3, sess.Tree().Len(), "invalid input never touches the tree")
}

func TestSessionMaxNodes(t *testing.T) {
	t.Parallel()

	opts := testOptions()
	opts.MaxNodes = 2
	sess := session.New("capped", opts)
	ctx := context.Background()

	_, err := sess.Commit(ctx, engine.OpInsert, "1")
	require.NoError(t, err)
	_, err = sess.Commit(ctx, engine.OpInsert, "2")
	require.NoError(t, err)

	_, err = sess.Commit(ctx, engine.OpInsert, "3")
	require.ErrorIs(t, err, session.ErrSessionFull)

	// Non-insert commits still pass at the cap.
	outcome, err := sess.Commit(ctx, engine.OpSearch, "1")
	require.NoError(t, err)
	assert.Equal(t, engine.OutcomeFound, outcome.Kind)

	// Deleting makes room again.
	_, err = sess.Commit(ctx, engine.OpDelete, "1")
	require.NoError(t, err)
	_, err = sess.Commit(ctx, engine.OpInsert, "3")
	require.NoError(t, err)
}

func TestSessionMaxNodesInvalidInputStillValidated(t *testing.T) {
	t.Parallel()

	opts := testOptions()
	opts.MaxNodes = 1
	sess := session.New("capped", opts)
	ctx := context.Background()

	_, err := sess.Commit(ctx, engine.OpInsert, "1")
	require.NoError(t, err)

	// Invalid input at the cap reports validation feedback, not the cap.
	outcome, err := sess.Commit(ctx, engine.OpInsert, "abc")
	require.NoError(t, err)
	assert.Equal(t, engine.OutcomeValidationError, outcome.Kind)

	outcome, err = sess.Commit(ctx, engine.OpInsert, "")
	require.NoError(t, err)
	assert.Equal(t, engine.OutcomeValidationError, outcome.Kind)

	_, err = sess.Commit(ctx, engine.OpInsert, "2")
	require.ErrorIs(t, err, session.ErrSessionFull)
}

func TestSessionHibernateWakesOnCommit(t *testing.T) {
	t.Parallel()

	sess := session.New("sleepy", testOptions())
	ctx := context.Background()

	for _, raw := range []string{"10", "5", "15"} {
		_, err := sess.Commit(ctx, engine.OpInsert, raw)
		require.NoError(t, err)
	}

	require.True(t, sess.Hibernate())
	require.True(t, sess.Hibernated())

	// The next commit boots the arena transparently.
	outcome, err := sess.Commit(ctx, engine.OpSearch, "5")
	require.NoError(t, err)
	assert.Equal(t, engine.OutcomeFound, outcome.Kind)
	assert.False(t, sess.Hibernated())
	assert.Equal(t, []int64{5, 10, 15}, sess.Tree().Traverse(ordtree.InOrder))
}

func TestSessionWakeBootsArenaForReads(t *testing.T) {
	t.Parallel()

	sess := session.New("dormant", testOptions())
	ctx := context.Background()

	for _, raw := range []string{"10", "5", "15"} {
		_, err := sess.Commit(ctx, engine.OpInsert, raw)
		require.NoError(t, err)
	}

	require.True(t, sess.Hibernate())

	sess.Wake()
	assert.False(t, sess.Hibernated())
	assert.Equal(t, []int64{5, 10, 15}, sess.Tree().Traverse(ordtree.InOrder))

	// Waking a live session is a no-op.
	sess.Wake()
	assert.Equal(t, 3, sess.Tree().Len())
}

func TestSessionHibernateRefusedWhileEditing(t *testing.T) {
	t.Parallel()

	sess := session.New("busy", testOptions())

	require.NoError(t, sess.Controller().Focus())
	assert.False(t, sess.Hibernate(), "editing sessions keep their arena")

	require.NoError(t, sess.Controller().Blur())
	assert.True(t, sess.Hibernate())
}

func TestSessionsAreIsolated(t *testing.T) {
	t.Parallel()

	manager := session.NewManager(0, testOptions())
	ctx := context.Background()

	first, err := manager.Open("one")
	require.NoError(t, err)

	second, err := manager.Open("two")
	require.NoError(t, err)

	_, err = first.Commit(ctx, engine.OpInsert, "10")
	require.NoError(t, err)

	assert.Equal(t, 1, first.Tree().Len())
	assert.Equal(t, 0, second.Tree().Len())
}

func TestManagerOpenIsIdempotent(t *testing.T) {
	t.Parallel()

	manager := session.NewManager(0, testOptions())

	first, err := manager.Open("same")
	require.NoError(t, err)

	again, err := manager.Open("same")
	require.NoError(t, err)
	assert.Same(t, first, again)
	assert.Equal(t, 1, manager.Len())
}

func TestManagerLimit(t *testing.T) {
	t.Parallel()

	manager := session.NewManager(2, testOptions())

	_, err := manager.Open("a")
	require.NoError(t, err)
	_, err = manager.Open("b")
	require.NoError(t, err)

	_, err = manager.Open("c")
	require.ErrorIs(t, err, session.ErrTooManySessions)

	require.NoError(t, manager.Close("a"))

	_, err = manager.Open("c")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, manager.Names())
}

func TestManagerGetAndClose(t *testing.T) {
	t.Parallel()

	manager := session.NewManager(0, testOptions())

	_, err := manager.Get("ghost")
	require.ErrorIs(t, err, session.ErrUnknownSession)

	opened, err := manager.Open("real")
	require.NoError(t, err)

	got, err := manager.Get("real")
	require.NoError(t, err)
	assert.Same(t, opened, got)

	require.NoError(t, manager.Close("real"))
	require.ErrorIs(t, manager.Close("real"), session.ErrUnknownSession)
}

func TestManagerHibernateIdle(t *testing.T) {
	t.Parallel()

	manager := session.NewManager(0, testOptions())
	ctx := context.Background()

	for i := range 4 {
		sess, err := manager.Open(fmt.Sprintf("s%d", i))
		require.NoError(t, err)

		_, err = sess.Commit(ctx, engine.OpInsert, "1")
		require.NoError(t, err)
	}

	// One session is mid-edit and must be skipped.
	editing, err := manager.Get("s0")
	require.NoError(t, err)
	require.NoError(t, editing.Controller().Focus())

	assert.Equal(t, 3, manager.HibernateIdle())
	assert.False(t, editing.Hibernated())
}

func TestConcurrentSessionsNoSharedState(t *testing.T) {
	t.Parallel()

	manager := session.NewManager(0, testOptions())
	ctx := context.Background()

	var wg sync.WaitGroup

	for i := range 8 {
		wg.Add(1)

		go func(id int) {
			defer wg.Done()

			sess, err := manager.Open(fmt.Sprintf("worker-%d", id))
			assert.NoError(t, err)

			for v := range 50 {
				_, err := sess.Commit(ctx, engine.OpInsert, fmt.Sprint(v))
				assert.NoError(t, err)
			}

			assert.Equal(t, 50, sess.Tree().Len())
		}(i)
	}

	wg.Wait()
	assert.Equal(t, 8, manager.Len())
}
