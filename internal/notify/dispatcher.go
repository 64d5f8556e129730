package notify

import (
	"context"
	"log"
	"time"

	q "github.com/iliyamo/newswire/internal/queue"
)

// Dispatcher hands a publication event off the request's critical path.
// The preferred route is the message broker (Publish), whose consumer runs
// the fan-out; when the broker is unreachable the dispatcher degrades to
// running the fan-out directly in a fire-and-forget goroutine with its own
// timeout budget. Either way the approving request returns immediately and
// a notification failure can never undo the committed approval.
type Dispatcher struct {
	Publish func(ctx context.Context, ev q.PostApprovedEvent) error // nil disables the broker route
	Fanout  *Fanout
	Timeout time.Duration
}

func NewDispatcher(publish func(context.Context, q.PostApprovedEvent) error, f *Fanout, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Dispatcher{Publish: publish, Fanout: f, Timeout: timeout}
}

// Dispatch fires the event asynchronously. It never blocks and never
// returns an error: the caller has already committed the approval.
func (d *Dispatcher) Dispatch(ev q.PostApprovedEvent) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), d.Timeout)
		defer cancel()

		if d.Publish != nil {
			if err := d.Publish(ctx, ev); err == nil {
				return
			}
			log.Printf("dispatch: broker publish for post %d failed; falling back to direct fan-out", ev.PostID)
		}
		if d.Fanout != nil {
			d.Fanout.PostApproved(ctx, ev)
		}
	}()
}
