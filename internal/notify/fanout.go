package notify

import (
	"context"
	"fmt"
	"log"

	q "github.com/iliyamo/newswire/internal/queue"
)

// SubscriberSource resolves the recipients of a publishing house. It is
// satisfied by repository.SubscriptionRepo.
type SubscriberSource interface {
	PublisherSubscriberEmails(ctx context.Context, publisherID uint64) ([]string, error)
}

// Fanout delivers the notifications for one publication event: one batched
// mail to all subscribers of the post's publisher and exactly one social
// post. Every failure is logged and swallowed here; nothing propagates to
// the approval that triggered the event and nothing is retried.
type Fanout struct {
	Subs   SubscriberSource
	Mail   MailSender
	Social SocialPoster
}

func NewFanout(subs SubscriberSource, mail MailSender, social SocialPoster) *Fanout {
	if subs == nil || mail == nil || social == nil {
		panic("nil collaborator passed to NewFanout")
	}
	return &Fanout{Subs: subs, Mail: mail, Social: social}
}

// PostApproved runs the fan-out for a single event. The mail and the
// social post are independent: a failure in one never suppresses the
// other.
func (f *Fanout) PostApproved(ctx context.Context, ev q.PostApprovedEvent) {
	emails, err := f.Subs.PublisherSubscriberEmails(ctx, ev.PublisherID)
	if err != nil {
		log.Printf("fanout: resolve subscribers for publisher %d failed: %v", ev.PublisherID, err)
	} else if len(emails) > 0 {
		subject := fmt.Sprintf("New %s from %s: %s", ev.Kind, ev.PublisherName, ev.Title)
		body := fmt.Sprintf("%s just published a new %s by %s:\n\n%s\n",
			ev.PublisherName, ev.Kind, ev.JournalistName, ev.Title)
		if err := f.Mail.Send(ctx, subject, body, emails); err != nil {
			log.Printf("fanout: mail send for post %d failed: %v", ev.PostID, err)
		}
	}

	text := fmt.Sprintf("New %s by %s: %s", ev.Kind, ev.JournalistName, ev.Title)
	if err := f.Social.Post(ctx, text); err != nil {
		log.Printf("fanout: social post for post %d failed: %v", ev.PostID, err)
	}
}
