package handler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitEventsDrainsPendingPublishes(t *testing.T) {
	release := make(chan struct{})
	published := make(chan struct{})
	publishAsync(func(ctx context.Context) error {
		<-release
		close(published)
		return nil
	})

	short, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, WaitEvents(short), context.DeadlineExceeded)

	close(release)
	long, cancel2 := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel2()
	require.NoError(t, WaitEvents(long))
	select {
	case <-published:
	default:
		t.Fatal("WaitEvents returned before the publish finished")
	}
}
