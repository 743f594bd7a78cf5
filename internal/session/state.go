package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/chat"
	"storefront/internal/checkout"
	"storefront/internal/models"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound    = errors.New("session not found")
	ErrUnknownItem = errors.New("unknown catalog item")
	ErrEmptyCart   = errors.New("cart is empty")
)

// State is everything one visitor sees: cart, checkout phase, drawer,
// category filter, pickup details and chat. It is only changed through its
// methods.
type State struct {
	id        string
	menu      *catalog.Catalog
	cart      *cart.Cart
	checkout  *checkout.Machine
	drawer    bool
	category  catalog.Category
	draft     models.OrderDraft
	chat      *chat.Chat
	createdAt time.Time
	updatedAt time.Time
}

// NewState creates a fresh session browsing menu
func NewState(id string, menu *catalog.Catalog, now time.Time) *State {
	c := cart.New()
	return &State{
		id:        id,
		menu:      menu,
		cart:      c,
		checkout:  checkout.NewMachine(c),
		category:  catalog.All,
		chat:      chat.New(now),
		createdAt: now,
		updatedAt: now,
	}
}

func (s *State) ID() string { return s.id }
func (s *State) Catalog() *catalog.Catalog { return s.menu }
func (s *State) Phase() checkout.Phase { return s.checkout.Phase() }
func (s *State) DrawerOpen() bool { return s.drawer }
func (s *State) Category() catalog.Category { return s.category }
func (s *State) Draft() models.OrderDraft { return s.draft }
func (s *State) Lines() []cart.Line { return s.cart.Lines() }
func (s *State) Subtotal() decimal.Decimal { return s.cart.Subtotal() }
func (s *State) ItemCount() int { return s.cart.ItemCount() }
func (s *State) CreatedAt() time.Time { return s.createdAt }
func (s *State) UpdatedAt() time.Time { return s.updatedAt }
func (s *State) Chat() chat.Chat { return s.chatCopy() }
func (s *State) VisibleItems() []catalog.Item { return s.menu.Filter(s.category) }

// Summary describes the cart without item or customer details
func (s *State) Summary() models.CartSummary {
	return models.CartSummary{
		LineCount: s.cart.Len(),
		ItemCount: s.cart.ItemCount(),
		Subtotal:  s.cart.Subtotal(),
	}
}

// Info returns the session's identity and timestamps
func (s *State) Info() models.SessionInfo {
	return models.SessionInfo{ID: s.id, CreatedAt: s.createdAt, UpdatedAt: s.updatedAt}
}

func (s *State) touch(now time.Time) {
	s.updatedAt = now
}

// AddItem puts one more of the catalog item id into the cart. Adding while
// the order confirmation is showing dismisses it first.
func (s *State) AddItem(id string) error {
	item, ok := s.menu.Lookup(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownItem, id)
	}
	if s.checkout.Phase() == checkout.Completed {
		_ = s.checkout.Reset()
	}
	s.cart.AddItem(item)
	return nil
}

// RemoveItem drops the line for id, if any
func (s *State) RemoveItem(id string) {
	s.cart.RemoveItem(id)
}

// UpdateQuantity changes the quantity of id by delta, clamped at 1
func (s *State) UpdateQuantity(id string, delta int) {
	s.cart.UpdateQuantity(id, delta)
}

// OpenCart shows the cart drawer
func (s *State) OpenCart() {
	s.drawer = true
}

// CloseCart hides the drawer and restarts the checkout flow
func (s *State) CloseCart() {
	s.drawer = false
	s.checkout.Dismiss()
}

// Advance runs the drawer's primary action. Details passed while capturing
// them are kept until the order is placed, then discarded with the cart.
// Neither proceeding nor placing an order is possible with an empty cart.
func (s *State) Advance(details *models.OrderDraft) (checkout.Phase, error) {
	switch phase := s.checkout.Phase(); phase {
	case checkout.Browsing, checkout.DetailsCapture:
		if s.cart.IsEmpty() {
			return phase, ErrEmptyCart
		}
		if phase == checkout.DetailsCapture && details != nil {
			s.draft.Merge(*details)
		}
	}

	phase, err := s.checkout.Advance()
	if err != nil {
		return phase, err
	}
	if phase == checkout.Completed {
		s.draft = models.OrderDraft{}
	}
	return phase, nil
}

// CaptureDetails records pickup details without placing the order
func (s *State) CaptureDetails(details models.OrderDraft) error {
	if s.checkout.Phase() != checkout.DetailsCapture {
		return fmt.Errorf("%w: details outside %s", checkout.ErrInvalidTransition, checkout.DetailsCapture)
	}
	s.draft.Merge(details)
	return nil
}

// BackToBrowsing returns from the details panel to the cart
func (s *State) BackToBrowsing() error {
	return s.checkout.BackToBrowsing()
}

// KeepBrowsing dismisses the order confirmation and closes the drawer
func (s *State) KeepBrowsing() error {
	if err := s.checkout.Reset(); err != nil {
		return err
	}
	s.drawer = false
	return nil
}

// SelectCategory changes the catalog filter
func (s *State) SelectCategory(tag catalog.Category) {
	s.category = tag
}

// OpenChat shows the chat widget
func (s *State) OpenChat() {
	s.chat.Open = true
}

// CloseChat hides the chat widget; an in-flight request keeps running
func (s *State) CloseChat() {
	s.chat.Open = false
}

// BeginAdvice records the user's question and blocks further questions
func (s *State) BeginAdvice(text string, now time.Time) (string, error) {
	return s.chat.Begin(text, now)
}

// ExpireAdvice releases a question left unanswered for at least after
func (s *State) ExpireAdvice(now time.Time, after time.Duration) bool {
	return s.chat.Expire(now, after)
}

// CompleteAdvice records the assistant's reply
func (s *State) CompleteAdvice(reply string, now time.Time) error {
	return s.chat.Complete(reply, now)
}

// Clone returns an independent copy of the state
func (s *State) Clone() *State {
	c := s.cart.Clone()
	ch := s.chatCopy()
	return &State{
		id:        s.id,
		menu:      s.menu,
		cart:      c,
		checkout:  checkout.Restore(c, s.checkout.Phase()),
		drawer:    s.drawer,
		category:  s.category,
		draft:     s.draft,
		chat:      &ch,
		createdAt: s.createdAt,
		updatedAt: s.updatedAt,
	}
}

func (s *State) chatCopy() chat.Chat {
	ch := *s.chat
	ch.Messages = make([]chat.Message, len(s.chat.Messages))
	copy(ch.Messages, s.chat.Messages)
	return ch
}

type snapshot struct {
	ID         string            `json:"id"`
	Cart       *cart.Cart        `json:"cart"`
	Phase      checkout.Phase    `json:"phase"`
	DrawerOpen bool              `json:"drawer_open"`
	Category   catalog.Category  `json:"category"`
	Draft      models.OrderDraft `json:"draft"`
	Chat       *chat.Chat        `json:"chat"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// MarshalJSON encodes the state without its catalog
func (s *State) MarshalJSON() ([]byte, error) {
	return json.Marshal(snapshot{
		ID:         s.id,
		Cart:       s.cart,
		Phase:      s.checkout.Phase(),
		DrawerOpen: s.drawer,
		Category:   s.category,
		Draft:      s.draft,
		Chat:       s.chat,
		CreatedAt:  s.createdAt,
		UpdatedAt:  s.updatedAt,
	})
}

// Decode restores a state encoded by MarshalJSON, attaching menu
func Decode(data []byte, menu *catalog.Catalog) (*State, error) {
	snap := snapshot{Cart: cart.New()}
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	if snap.ID == "" {
		return nil, errors.New("failed to decode session: missing id")
	}
	if snap.Cart == nil {
		snap.Cart = cart.New()
	}
	if snap.Chat == nil {
		snap.Chat = chat.New(snap.CreatedAt)
	}
	if snap.Category == "" {
		snap.Category = catalog.All
	}
	if snap.Phase == checkout.Completed && !snap.Cart.IsEmpty() {
		snap.Cart.Clear()
	}

	return &State{
		id:        snap.ID,
		menu:      menu,
		cart:      snap.Cart,
		checkout:  checkout.Restore(snap.Cart, snap.Phase),
		drawer:    snap.DrawerOpen,
		category:  snap.Category,
		draft:     snap.Draft,
		chat:      snap.Chat,
		createdAt: snap.CreatedAt,
		updatedAt: snap.UpdatedAt,
	}, nil
}
