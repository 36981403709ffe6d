package service

import (
	"context"
	"sync"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	"prodman/internal/modules/tracker/domain"
	apperrors "prodman/internal/platform/errors"
)

// Mailbox is the single-slot command channel between drivers and the
// session worker. A post is visible to the next Take; Wait wakes early on post.
type Mailbox struct {
	mu      sync.Mutex
	pending domain.Command
	full    bool
	wake    chan struct{}
	logger  hclog.Logger
}

func NewMailbox(logger hclog.Logger) *Mailbox {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Mailbox{wake: make(chan struct{}, 1), logger: logger}
}

// Post stores cmd. An occupied slot rejects the post with ErrCommandPending,
// except for finish, which replaces whatever is waiting.
func (m *Mailbox) Post(cmd domain.Command) error {
	m.mu.Lock()
	if m.full {
		if cmd.Kind != domain.CommandFinish {
			pending := m.pending
			m.mu.Unlock()
			m.logger.Warn("command rejected, slot occupied", "command", cmd.String(), "pending", pending.String())
			return apperrors.ErrCommandPending
		}
		m.logger.Info("finish supersedes pending command", "pending", m.pending.String())
	}
	m.pending = cmd
	m.full = true
	m.mu.Unlock()

	select {
	case m.wake <- struct{}{}:
	default:
	}
	return nil
}

// Take consumes the pending command, if any.
func (m *Mailbox) Take() (domain.Command, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	select {
	case <-m.wake:
	default:
	}
	if !m.full {
		return domain.Command{}, false
	}
	cmd := m.pending
	m.pending = domain.Command{}
	m.full = false
	return cmd, true
}

// Wait returns a pending command immediately, or blocks until one is posted,
// the timeout elapses or ctx is done.
func (m *Mailbox) Wait(ctx context.Context, timeout time.Duration) (domain.Command, bool) {
	if cmd, ok := m.Take(); ok {
		return cmd, true
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return domain.Command{}, false
	case <-timer.C:
	case <-m.wake:
	}
	return m.Take()
}

func (m *Mailbox) Clear() {
	m.Take()
}
