package mock

import (
	"context"
	"sync"

	"github.com/fwojciec/webcite"
)

var _ webcite.Notifier = (*Notifier)(nil)

// Notifier is a mock implementation of webcite.Notifier.
type Notifier struct {
	NotifyFn func(ctx context.Context, n webcite.Notification)
}

func (n *Notifier) Notify(ctx context.Context, notification webcite.Notification) {
	n.NotifyFn(ctx, notification)
}

// RecordingNotifier returns a Notifier that appends every notification to
// the returned slice pointer.
func RecordingNotifier() (*Notifier, *[]webcite.Notification) {
	var mu sync.Mutex
	var got []webcite.Notification
	return &Notifier{
		NotifyFn: func(_ context.Context, n webcite.Notification) {
			mu.Lock()
			defer mu.Unlock()
			got = append(got, n)
		},
	}, &got
}
