package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	q "github.com/iliyamo/newswire/internal/queue"
)

type fakeSubs struct {
	emails []string
	err    error
	gotID  uint64
}

func (f *fakeSubs) PublisherSubscriberEmails(_ context.Context, publisherID uint64) ([]string, error) {
	f.gotID = publisherID
	return f.emails, f.err
}

type fakeMail struct {
	calls   int
	subject string
	body    string
	to      []string
	err     error
}

func (f *fakeMail) Send(_ context.Context, subject, body string, to []string) error {
	f.calls++
	f.subject, f.body, f.to = subject, body, to
	return f.err
}

type fakeSocial struct {
	calls int
	text  string
	err   error
}

func (f *fakeSocial) Post(_ context.Context, text string) error {
	f.calls++
	f.text = text
	return f.err
}

func event() q.PostApprovedEvent {
	return q.PostApprovedEvent{
		PostID:         7,
		Kind:           "article",
		Title:          "Harbour expansion approved",
		JournalistName: "ada",
		PublisherID:    3,
		PublisherName:  "northern-daily",
	}
}

func TestFanoutBatchesMailAndPostsOnce(t *testing.T) {
	subs := &fakeSubs{emails: []string{"a@example.com", "b@example.com"}}
	mail := &fakeMail{}
	social := &fakeSocial{}

	NewFanout(subs, mail, social).PostApproved(context.Background(), event())

	if subs.gotID != 3 {
		t.Errorf("resolved publisher %d, want 3", subs.gotID)
	}
	if mail.calls != 1 {
		t.Fatalf("mail sent %d times, want 1", mail.calls)
	}
	if len(mail.to) != 2 {
		t.Errorf("mail to %v, want both subscribers on one envelope", mail.to)
	}
	if !strings.Contains(mail.subject, "northern-daily") || !strings.Contains(mail.subject, "Harbour expansion approved") {
		t.Errorf("subject %q missing publisher or title", mail.subject)
	}
	if social.calls != 1 {
		t.Fatalf("social posted %d times, want 1", social.calls)
	}
	if !strings.Contains(social.text, "ada") {
		t.Errorf("social text %q missing journalist name", social.text)
	}
}

func TestFanoutSkipsMailWithoutSubscribers(t *testing.T) {
	subs := &fakeSubs{}
	mail := &fakeMail{}
	social := &fakeSocial{}

	NewFanout(subs, mail, social).PostApproved(context.Background(), event())

	if mail.calls != 0 {
		t.Errorf("mail sent %d times with no subscribers, want 0", mail.calls)
	}
	if social.calls != 1 {
		t.Errorf("social posted %d times, want 1 even with empty follow list", social.calls)
	}
}

func TestFanoutChannelsAreIndependent(t *testing.T) {
	t.Run("mail failure does not suppress social", func(t *testing.T) {
		subs := &fakeSubs{emails: []string{"a@example.com"}}
		mail := &fakeMail{err: errors.New("relay down")}
		social := &fakeSocial{}

		NewFanout(subs, mail, social).PostApproved(context.Background(), event())

		if social.calls != 1 {
			t.Errorf("social posted %d times after mail failure, want 1", social.calls)
		}
	})

	t.Run("subscriber lookup failure does not suppress social", func(t *testing.T) {
		subs := &fakeSubs{err: errors.New("db gone")}
		mail := &fakeMail{}
		social := &fakeSocial{}

		NewFanout(subs, mail, social).PostApproved(context.Background(), event())

		if mail.calls != 0 {
			t.Errorf("mail sent %d times after lookup failure, want 0", mail.calls)
		}
		if social.calls != 1 {
			t.Errorf("social posted %d times, want 1", social.calls)
		}
	})

	t.Run("social failure is swallowed", func(t *testing.T) {
		subs := &fakeSubs{emails: []string{"a@example.com"}}
		mail := &fakeMail{}
		social := &fakeSocial{err: errors.New("webhook 500")}

		NewFanout(subs, mail, social).PostApproved(context.Background(), event())

		if mail.calls != 1 {
			t.Errorf("mail sent %d times, want 1", mail.calls)
		}
	})
}
