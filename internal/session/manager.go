package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/advisor"
	"storefront/internal/catalog"
	"storefront/internal/chat"
	"storefront/internal/checkout"
	"storefront/internal/models"
	"storefront/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultAdviceTimeout = 30 * time.Second
	pendingGrace         = 10 * time.Second
	completeAttempts     = 3
	completeBackoff      = 50 * time.Millisecond
)

// Adviser answers chat questions
type Adviser interface {
	Ask(ctx context.Context, userText string) advisor.Result
}

// EventPublisher receives anonymous storefront analytics events
type EventPublisher interface {
	PublishSessionStarted(ctx context.Context, event *models.SessionStartedEvent) error
	PublishCheckoutStarted(ctx context.Context, event *models.CheckoutStartedEvent) error
	PublishCheckoutCompleted(ctx context.Context, event *models.CheckoutCompletedEvent) error
	PublishAdviceRequested(ctx context.Context, event *models.AdviceRequestedEvent) error
}

// Manager creates sessions and applies every mutation under the session lock
type Manager struct {
	store     Store
	menu      *catalog.Catalog
	adviser   Adviser
	publisher EventPublisher
	logger    *zap.Logger
	now       func() time.Time

	staleAfter time.Duration
}

// NewManager creates a session manager
func NewManager(store Store, menu *catalog.Catalog, adviser Adviser, publisher EventPublisher) *Manager {
	return &Manager{
		store:     store,
		menu:      menu,
		adviser:   adviser,
		publisher: publisher,
		logger:    util.GetLogger(),
		now:       time.Now,

		staleAfter: defaultAdviceTimeout + pendingGrace,
	}
}

// SetAdviceTimeout tells the manager how long an advisory call can run. A
// question still unanswered after that, plus a grace period, no longer
// blocks new ones.
func (m *Manager) SetAdviceTimeout(d time.Duration) {
	if d > 0 {
		m.staleAfter = d + pendingGrace
	}
}

// Catalog returns the menu sessions are created with
func (m *Manager) Catalog() *catalog.Catalog {
	return m.menu
}

// Create starts a new session
func (m *Manager) Create(ctx context.Context) (*State, error) {
	ctx, span := util.StartSpan(ctx, "SessionManager.Create")
	defer span.End()

	state := NewState(uuid.New().String(), m.menu, m.now())
	if err := m.store.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	util.SessionsCreatedTotal.Inc()
	m.logger.Info("Session created", zap.String("session_id", state.ID()))

	m.publish(models.EventTypeSessionStarted, func() error {
		return m.publisher.PublishSessionStarted(ctx, &models.SessionStartedEvent{
			BaseEvent: models.NewBaseEvent(models.EventTypeSessionStarted),
			SessionID: state.ID(),
		})
	})

	return state.Clone(), nil
}

// Get returns a snapshot of the session
func (m *Manager) Get(ctx context.Context, id string) (*State, error) {
	unlock, err := m.store.Lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	state, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return state.Clone(), nil
}

// Update applies fn to a copy of the session and saves it. When fn fails
// nothing changes and the error is returned as is.
func (m *Manager) Update(ctx context.Context, id string, fn func(*State) error) (*State, error) {
	unlock, err := m.store.Lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	stored, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	state := stored.Clone()
	if err := fn(state); err != nil {
		return nil, err
	}

	state.touch(m.now())
	if err := m.store.Save(ctx, state); err != nil {
		return nil, err
	}
	return state.Clone(), nil
}

// Advance runs the checkout primary action, publishing checkout events
func (m *Manager) Advance(ctx context.Context, id string, details *models.OrderDraft) (*State, error) {
	ctx, span := util.StartSpan(ctx, "SessionManager.Advance")
	defer span.End()

	var summary models.CartSummary
	var phase checkout.Phase

	state, err := m.Update(ctx, id, func(s *State) error {
		summary = s.Summary()
		p, err := s.Advance(details)
		if err != nil {
			return err
		}
		phase = p
		return nil
	})
	if err != nil {
		if errors.Is(err, checkout.ErrInvalidTransition) || errors.Is(err, ErrEmptyCart) {
			util.CheckoutRejectedTotal.WithLabelValues("advance").Inc()
		}
		return nil, err
	}

	util.CheckoutTransitionsTotal.WithLabelValues(phase.String()).Inc()
	logger := m.logger.With(zap.String("session_id", id), zap.Stringer("phase", phase))

	switch phase {
	case checkout.DetailsCapture:
		logger.Info("Checkout started", zap.Int("items", summary.ItemCount))
		m.publish(models.EventTypeCheckoutStarted, func() error {
			return m.publisher.PublishCheckoutStarted(ctx, &models.CheckoutStartedEvent{
				BaseEvent: models.NewBaseEvent(models.EventTypeCheckoutStarted),
				SessionID: id,
				Cart:      summary,
			})
		})
	case checkout.Completed:
		util.OrdersPlacedTotal.Inc()
		logger.Info("Order placed",
			zap.Int("items", summary.ItemCount),
			zap.String("subtotal", catalog.FormatPrice(summary.Subtotal)))
		m.publish(models.EventTypeCheckoutCompleted, func() error {
			return m.publisher.PublishCheckoutCompleted(ctx, &models.CheckoutCompletedEvent{
				BaseEvent: models.NewBaseEvent(models.EventTypeCheckoutCompleted),
				SessionID: id,
				Cart:      summary,
			})
		})
	}

	return state, nil
}

// Ask records the question, asks the adviser outside the session lock and
// records the reply. The adviser call is not cancelled when ctx is, so the
// chat is never left waiting on a request nobody completes.
func (m *Manager) Ask(ctx context.Context, id, text string) (*State, error) {
	var question string
	if _, err := m.Update(ctx, id, func(s *State) error {
		now := m.now()
		if s.ExpireAdvice(now, m.staleAfter) {
			m.logger.Warn("Released unanswered advice request", zap.String("session_id", id))
		}
		q, err := s.BeginAdvice(text, now)
		question = q
		return err
	}); err != nil {
		return nil, err
	}

	detached := context.WithoutCancel(ctx)
	res := advisor.Unavailable(advisor.ErrNotConfigured)
	if m.adviser != nil {
		res = m.adviser.Ask(detached, question)
	}

	state, err := m.completeAdvice(detached, id, res.Display())
	if err != nil {
		m.logger.Error("Failed to record advice",
			zap.String("session_id", id),
			zap.Error(err))
		return nil, err
	}

	m.publish(models.EventTypeAdviceRequested, func() error {
		return m.publisher.PublishAdviceRequested(detached, &models.AdviceRequestedEvent{
			BaseEvent: models.NewBaseEvent(models.EventTypeAdviceRequested),
			SessionID: id,
			Outcome:   res.Label(),
		})
	})

	return state, nil
}

// completeAdvice records reply, retrying briefly when the store fails. If it
// still fails the question stays pending until staleAfter releases it.
func (m *Manager) completeAdvice(ctx context.Context, id, reply string) (*State, error) {
	var err error
	for attempt := 1; attempt <= completeAttempts; attempt++ {
		var state *State
		state, err = m.Update(ctx, id, func(s *State) error {
			return s.CompleteAdvice(reply, m.now())
		})
		if err == nil {
			return state, nil
		}
		if errors.Is(err, ErrNotFound) || errors.Is(err, chat.ErrNotPending) {
			return nil, err
		}
		if attempt < completeAttempts {
			m.logger.Warn("Retrying advice record",
				zap.String("session_id", id),
				zap.Int("attempt", attempt),
				zap.Error(err))
			time.Sleep(time.Duration(attempt) * completeBackoff)
		}
	}
	return nil, err
}

// Delete ends a session. It waits for any update in progress, so a deleted
// session is never saved again.
func (m *Manager) Delete(ctx context.Context, id string) error {
	unlock, err := m.store.Lock(ctx, id)
	if err != nil {
		return err
	}
	defer unlock()

	if _, err := m.store.Load(ctx, id); err != nil {
		return err
	}
	if err := m.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	m.logger.Info("Session deleted", zap.String("session_id", id))
	return nil
}

func (m *Manager) publish(eventType string, fn func() error) {
	if m.publisher == nil {
		return
	}
	if err := fn(); err != nil {
		util.EventsPublishFailedTotal.WithLabelValues(eventType).Inc()
		m.logger.Error("Failed to publish event",
			zap.String("event_type", eventType),
			zap.Error(err))
	}
}
