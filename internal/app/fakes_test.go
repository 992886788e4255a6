package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"fintrack_notifier/internal/domain/card"
	"fintrack_notifier/internal/domain/notification"
	"fintrack_notifier/internal/domain/push"
	"fintrack_notifier/internal/domain/user"
)

var errFake = errors.New("storage unavailable")

type memLedger struct {
	mu              sync.Mutex
	entries         map[notification.LedgerKey]time.Time
	failNextCommits int
}

func newMemLedger() *memLedger {
	return &memLedger{entries: make(map[notification.LedgerKey]time.Time)}
}

func (l *memLedger) Exists(_ context.Context, key notification.LedgerKey) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.entries[key]
	return ok, nil
}

func (l *memLedger) Commit(_ context.Context, entry *notification.LedgerEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failNextCommits > 0 {
		l.failNextCommits--
		return errFake
	}
	if _, ok := l.entries[entry.LedgerKey]; ok {
		return errors.New("duplicate ledger entry")
	}
	l.entries[entry.LedgerKey] = entry.DispatchedAt
	return nil
}

func (l *memLedger) PruneBefore(_ context.Context, cutoff time.Time) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var n int64
	for k, at := range l.entries {
		if at.Before(cutoff) {
			delete(l.entries, k)
			n++
		}
	}
	return n, nil
}

func (l *memLedger) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

type memLog struct {
	mu              sync.Mutex
	entries         []*notification.LogEntry
	failNextAppends int
}

func (m *memLog) Append(_ context.Context, entry *notification.LogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNextAppends > 0 {
		m.failNextAppends--
		return errFake
	}
	entry.ID = int64(len(m.entries) + 1)
	entry.CreatedAt = time.Now()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memLog) ListByUser(_ context.Context, userID int64) ([]*notification.LogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*notification.LogEntry
	for _, e := range m.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memLog) MarkRead(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.ID == id {
			e.IsRead = true
			return nil
		}
	}
	return errors.New("not found")
}

func (m *memLog) MarkAllRead(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.UserID == userID {
			e.IsRead = true
		}
	}
	return nil
}

func (m *memLog) DeleteByUser(_ context.Context, userID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []*notification.LogEntry
	var n int64
	for _, e := range m.entries {
		if e.UserID == userID {
			n++
			continue
		}
		kept = append(kept, e)
	}
	m.entries = kept
	return n, nil
}

func (m *memLog) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

type memSender struct {
	mu        sync.Mutex
	sent      []push.Message
	failNext  int
	alwaysErr bool
}

func (s *memSender) Send(_ context.Context, msg push.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.alwaysErr {
		return errFake
	}
	if s.failNext > 0 {
		s.failNext--
		return errFake
	}
	s.sent = append(s.sent, msg)
	return nil
}

func (s *memSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

type fakeCardRepo struct {
	cards []*card.Card
	err   error
}

func (r *fakeCardRepo) GetByID(_ context.Context, id int64) (*card.Card, error) {
	for _, c := range r.cards {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *fakeCardRepo) ListActive(_ context.Context) ([]*card.Card, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []*card.Card
	for _, c := range r.cards {
		if !c.Archived {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCardRepo) ListActiveByUser(_ context.Context, userID int64) ([]*card.Card, error) {
	var out []*card.Card
	for _, c := range r.cards {
		if !c.Archived && c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	users []*user.User
	err   error
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (*user.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *fakeUserRepo) ListNotifiable(_ context.Context) ([]*user.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []*user.User
	for _, u := range r.users {
		if u.NotificationsEnabled {
			out = append(out, u)
		}
	}
	return out, nil
}
