package app

import (
	"context"
	"testing"
	"time"

	"fintrack_notifier/internal/domain/card"
	"fintrack_notifier/internal/domain/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type engineFixture struct {
	engine *Engine
	cards  *fakeCardRepo
	users  *fakeUserRepo
	ledger *memLedger
	log    *memLog
	sender *memSender
}

func newEngineFixture(cards []*card.Card, users []*user.User) *engineFixture {
	f := &engineFixture{
		cards:  &fakeCardRepo{cards: cards},
		users:  &fakeUserRepo{users: users},
		ledger: newMemLedger(),
		log:    &memLog{},
		sender: &memSender{},
	}
	dispatcher := NewDispatcher(f.sender, f.log, f.ledger, nil)
	f.engine = NewEngine(f.cards, f.users, f.ledger, dispatcher, nil, 4, 5*time.Second, 90*24*time.Hour)
	return f
}

func enabledUser(id int64) *user.User {
	return &user.User{ID: id, FirstName: "Ana", NotificationsEnabled: true}
}

// Statement day 31, terms 20, no reminder: fires exactly on each month's
// (clamped) last-possible statement day.
func closeDay31Card(id, userID int64, balance float64) *card.Card {
	return &card.Card{
		ID:               id,
		UserID:           userID,
		Issuer:           "BBVA",
		Label:            "Principal",
		CurrentBalance:   balance,
		StatementDay:     31,
		PaymentTermsDays: 20,
		ReminderLeadDays: 0,
	}
}

func TestRunForDayIsIdempotent(t *testing.T) {
	f := newEngineFixture(
		[]*card.Card{closeDay31Card(1, 1, 500)},
		[]*user.User{enabledUser(1)},
	)
	today := date(2024, time.February, 29)

	require.NoError(t, f.engine.RunForDay(context.Background(), today))
	require.Equal(t, 1, f.sender.count())
	require.Equal(t, 1, f.log.size())
	require.Equal(t, 1, f.ledger.size())

	// Same day, same cards: the trigger fired again. Nothing new may happen.
	require.NoError(t, f.engine.RunForDay(context.Background(), today))
	assert.Equal(t, 1, f.sender.count())
	assert.Equal(t, 1, f.log.size())
	assert.Equal(t, 1, f.ledger.size())
}

func TestRunForDayNextCycleIsNotBlocked(t *testing.T) {
	f := newEngineFixture(
		[]*card.Card{closeDay31Card(1, 1, 500)},
		[]*user.User{enabledUser(1)},
	)

	require.NoError(t, f.engine.RunForDay(context.Background(), date(2024, time.February, 29)))
	require.Equal(t, 1, f.ledger.size())

	// One cycle later the close lands on March 31: a new date key, so the
	// February ledger entry must not suppress it.
	require.NoError(t, f.engine.RunForDay(context.Background(), date(2024, time.March, 31)))
	assert.Equal(t, 2, f.sender.count())
	assert.Equal(t, 2, f.ledger.size())
}

func TestRunForDaySkipsZeroBalanceSibling(t *testing.T) {
	f := newEngineFixture(
		[]*card.Card{
			closeDay31Card(1, 1, 0),
			closeDay31Card(2, 1, 300),
		},
		[]*user.User{enabledUser(1)},
	)

	require.NoError(t, f.engine.RunForDay(context.Background(), date(2024, time.February, 29)))
	require.Equal(t, 1, f.sender.count())
	assert.Equal(t, "card.2.STATEMENT_CLOSE", f.sender.sent[0].SlotKey)
	assert.Equal(t, 1, f.ledger.size())
}

func TestRunForDaySkipsDisabledUsers(t *testing.T) {
	disabled := &user.User{ID: 2, FirstName: "Luis", NotificationsEnabled: false}
	f := newEngineFixture(
		[]*card.Card{
			closeDay31Card(1, 1, 500),
			closeDay31Card(2, 2, 500),
		},
		[]*user.User{enabledUser(1), disabled},
	)

	require.NoError(t, f.engine.RunForDay(context.Background(), date(2024, time.February, 29)))
	require.Equal(t, 1, f.sender.count())
	assert.Equal(t, int64(1), f.sender.sent[0].UserID)
}

func TestRunForDayIsolatesBadCard(t *testing.T) {
	bad := closeDay31Card(1, 1, 500)
	bad.StatementDay = 0 // malformed configuration
	f := newEngineFixture(
		[]*card.Card{bad, closeDay31Card(2, 1, 500)},
		[]*user.User{enabledUser(1)},
	)

	require.NoError(t, f.engine.RunForDay(context.Background(), date(2024, time.February, 29)))
	require.Equal(t, 1, f.sender.count())
	assert.Equal(t, "card.2.STATEMENT_CLOSE", f.sender.sent[0].SlotKey)
}

func TestRunForDayCrashRecovery(t *testing.T) {
	f := newEngineFixture(
		[]*card.Card{closeDay31Card(1, 1, 500)},
		[]*user.User{enabledUser(1)},
	)
	today := date(2024, time.February, 29)

	// The push goes out but the ledger commit is interrupted.
	f.ledger.failNextCommits = 1
	require.NoError(t, f.engine.RunForDay(context.Background(), today))
	require.Equal(t, 1, f.sender.count())
	require.Equal(t, 0, f.ledger.size(), "interrupted commit leaves the key un-admitted")

	// Next run re-admits and re-dispatches: one accepted duplicate.
	require.NoError(t, f.engine.RunForDay(context.Background(), today))
	require.Equal(t, 2, f.sender.count())
	require.Equal(t, 1, f.ledger.size())

	// After the successful commit, further runs are silent.
	require.NoError(t, f.engine.RunForDay(context.Background(), today))
	assert.Equal(t, 2, f.sender.count())
	assert.Equal(t, 1, f.ledger.size())
}

func TestRunForDayReturnsBatchError(t *testing.T) {
	f := newEngineFixture(nil, []*user.User{enabledUser(1)})
	f.cards.err = errFake

	err := f.engine.RunForDay(context.Background(), date(2024, time.February, 29))
	require.ErrorIs(t, err, errFake)
}

func TestRunForDaySkipsWhileRunning(t *testing.T) {
	f := newEngineFixture(
		[]*card.Card{closeDay31Card(1, 1, 500)},
		[]*user.User{enabledUser(1)},
	)
	f.engine.running.Store(true)

	require.NoError(t, f.engine.RunForDay(context.Background(), date(2024, time.February, 29)))
	assert.Zero(t, f.sender.count())
}

func TestPruneLedger(t *testing.T) {
	f := newEngineFixture(
		[]*card.Card{closeDay31Card(1, 1, 500)},
		[]*user.User{enabledUser(1)},
	)

	require.NoError(t, f.engine.RunForDay(context.Background(), date(2024, time.February, 29)))
	require.Equal(t, 1, f.ledger.size())

	// Entries just written are inside the retention window.
	require.NoError(t, f.engine.PruneLedger(context.Background()))
	assert.Equal(t, 1, f.ledger.size())

	// Age the entry past the window and prune again.
	f.ledger.mu.Lock()
	for k := range f.ledger.entries {
		f.ledger.entries[k] = time.Now().Add(-91 * 24 * time.Hour)
	}
	f.ledger.mu.Unlock()
	require.NoError(t, f.engine.PruneLedger(context.Background()))
	assert.Zero(t, f.ledger.size())
}
