package app

import (
	"sync"

	"hardcore-quiz-service/internal/domain"
)

// Feed fans attempt events out to live subscribers, keyed by (user, quiz).
// It is in-process only; a player connected to another instance will not
// see events produced here.
type Feed struct {
	mu          sync.Mutex
	subscribers map[string]map[chan domain.AttemptEvent]struct{}
}

func NewFeed() *Feed {
	return &Feed{subscribers: make(map[string]map[chan domain.AttemptEvent]struct{})}
}

func (f *Feed) Subscribe(userID, quizID string) (<-chan domain.AttemptEvent, func()) {
	key := LockKey(userID, quizID)
	ch := make(chan domain.AttemptEvent, 8)

	f.mu.Lock()
	subs, ok := f.subscribers[key]
	if !ok {
		subs = make(map[chan domain.AttemptEvent]struct{})
		f.subscribers[key] = subs
	}
	subs[ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		subs, ok := f.subscribers[key]
		if !ok {
			return
		}
		if _, ok := subs[ch]; ok {
			delete(subs, ch)
			close(ch)
		}
		if len(subs) == 0 {
			delete(f.subscribers, key)
		}
	}
	return ch, cancel
}

// Publish never blocks: a subscriber with a full buffer loses its oldest event.
func (f *Feed) Publish(event domain.AttemptEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subscribers[LockKey(event.UserID, event.QuizID)] {
		select {
		case ch <- event:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- event
		}
	}
}

// Subscribers reports how many channels listen on (user, quiz).
func (f *Feed) Subscribers(userID, quizID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subscribers[LockKey(userID, quizID)])
}
