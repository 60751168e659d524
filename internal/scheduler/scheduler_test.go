package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestScheduler_SpawnDrainRunsBody(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := New()
	var ran bool
	s.Spawn(context.Background(), "", func(ctx context.Context, self *Task) error {
		ran = true
		return nil
	})

	s.Drain(context.Background())
	s.Wait()

	assert.True(t, ran)
}

func TestScheduler_YieldGivesOtherTasksATurn(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := New()
	var order []int

	s.Spawn(context.Background(), "", func(ctx context.Context, self *Task) error {
		order = append(order, 1)
		require.NoError(t, s.Yield(self))
		order = append(order, 3)
		return nil
	})
	s.Spawn(context.Background(), "", func(ctx context.Context, self *Task) error {
		order = append(order, 2)
		return nil
	})

	s.Drain(context.Background())
	s.Wait()

	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestScheduler_CancelHostUnwindsCleanly(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := New()
	handle := s.Spawn(context.Background(), "host-a", func(ctx context.Context, self *Task) error {
		for {
			if err := s.Yield(self); err != nil {
				return err
			}
		}
	})
	s.Spawn(context.Background(), "", func(ctx context.Context, self *Task) error {
		s.CancelHost("host-a")
		return nil
	})

	s.Drain(context.Background())
	s.Wait()

	task := TaskOf(handle)
	require.True(t, task.Done())
	assert.Error(t, task.Err())
}
