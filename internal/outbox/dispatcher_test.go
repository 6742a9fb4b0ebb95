package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uglydojo/q63/mail"
	"go.uber.org/goleak"
)

type recordingSender struct {
	mu      sync.Mutex
	sent    []mail.Message
	err     error
	entered chan struct{}
	block   chan struct{}
}

func newBlockingSender() *recordingSender {
	return &recordingSender{
		entered: make(chan struct{}, 16),
		block:   make(chan struct{}),
	}
}

func (s *recordingSender) Send(ctx context.Context, msg mail.Message) error {
	if s.entered != nil {
		s.entered <- struct{}{}
	}
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return s.err
}

func (s *recordingSender) messages() []mail.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]mail.Message(nil), s.sent...)
}

func TestDispatcherDrainsOnClose(t *testing.T) {
	defer goleak.VerifyNone(t)

	sender := &recordingSender{}
	d := NewDispatcher(Config{BufferSize: 8}, sender, nil, nil)

	for i := 0; i < 5; i++ {
		require.True(t, d.Dispatch(context.Background(), mail.Message{To: "a@b.co"}))
	}
	d.Close()

	assert.Len(t, sender.messages(), 5)
	assert.False(t, d.Dispatch(context.Background(), mail.Message{To: "late@b.co"}))
}

func TestDispatcherCloseIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)

	d := NewDispatcher(Config{BufferSize: 1}, &recordingSender{}, nil, nil)
	d.Close()
	d.Close()
}

func TestDispatcherDropIfFull(t *testing.T) {
	defer goleak.VerifyNone(t)

	sender := newBlockingSender()
	d := NewDispatcher(Config{BufferSize: 1, DropIfFull: true}, sender, nil, nil)

	// First message is picked up by the worker and blocks, the second fills
	// the buffer, the rest are dropped.
	require.True(t, d.Dispatch(context.Background(), mail.Message{To: "1@b.co"}))
	<-sender.entered
	require.True(t, d.Dispatch(context.Background(), mail.Message{To: "2@b.co"}))
	assert.False(t, d.Dispatch(context.Background(), mail.Message{To: "3@b.co"}))
	assert.Equal(t, uint64(1), d.Dropped())

	close(sender.block)
	d.Close()
	assert.Len(t, sender.messages(), 2)
}

func TestDispatcherBlockingRespectsContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	sender := newBlockingSender()
	d := NewDispatcher(Config{BufferSize: 1}, sender, nil, nil)

	require.True(t, d.Dispatch(context.Background(), mail.Message{To: "1@b.co"}))
	<-sender.entered
	require.True(t, d.Dispatch(context.Background(), mail.Message{To: "2@b.co"}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.False(t, d.Dispatch(ctx, mail.Message{To: "3@b.co"}))

	close(sender.block)
	d.Close()
}

func TestDispatcherReportsFailures(t *testing.T) {
	defer goleak.VerifyNone(t)

	var mu sync.Mutex
	var results []error
	sender := &recordingSender{err: errors.New("relay down")}
	d := NewDispatcher(Config{BufferSize: 4}, sender, nil, func(err error) {
		mu.Lock()
		defer mu.Unlock()
		results = append(results, err)
	})

	require.True(t, d.Dispatch(context.Background(), mail.Message{To: "a@b.co"}))
	d.Close()

	assert.Equal(t, uint64(1), d.Failed())
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, results, 1)
	assert.EqualError(t, results[0], "relay down")
}
