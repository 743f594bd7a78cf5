package checkout

import (
	"errors"
	"fmt"
)

// Phase is the current stage of the purchase flow
type Phase int

const (
	Browsing Phase = iota
	DetailsCapture
	Completed
)

var phaseNames = map[Phase]string{
	Browsing:       "browsing",
	DetailsCapture: "details",
	Completed:      "completed",
}

func (p Phase) String() string {
	if s, ok := phaseNames[p]; ok {
		return s
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// MarshalText encodes the phase by name
func (p Phase) MarshalText() ([]byte, error) {
	if _, ok := phaseNames[p]; !ok {
		return nil, fmt.Errorf("unknown checkout phase %d", int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name
func (p *Phase) UnmarshalText(text []byte) error {
	for phase, name := range phaseNames {
		if name == string(text) {
			*p = phase
			return nil
		}
	}
	return fmt.Errorf("unknown checkout phase %q", text)
}

// Panel names the drawer panel shown for the phase
func (p Phase) Panel() string {
	switch p {
	case DetailsCapture:
		return "details"
	case Completed:
		return "success"
	default:
		return "cart"
	}
}

// PrimaryAction is the label of the drawer's main button for the phase
func (p Phase) PrimaryAction() string {
	switch p {
	case DetailsCapture:
		return "Place Order"
	case Completed:
		return "Keep Browsing"
	default:
		return "Proceed to Details"
	}
}

var ErrInvalidTransition = errors.New("invalid checkout transition")

// Clearer is the part of the cart the machine needs on completion
type Clearer interface {
	Clear()
}

// Machine gates the checkout flow for one session
type Machine struct {
	phase Phase
	cart  Clearer
}

// NewMachine creates a machine in the Browsing phase bound to cart
func NewMachine(cart Clearer) *Machine {
	return &Machine{phase: Browsing, cart: cart}
}

// Restore creates a machine at phase, used when loading a stored session
func Restore(cart Clearer, phase Phase) *Machine {
	if _, ok := phaseNames[phase]; !ok {
		phase = Browsing
	}
	return &Machine{phase: phase, cart: cart}
}

// Phase returns the active phase
func (m *Machine) Phase() Phase {
	return m.phase
}

// Advance moves Browsing to DetailsCapture, and DetailsCapture to Completed
// clearing the cart in the same step. Advance from Completed is rejected and
// leaves the phase unchanged.
func (m *Machine) Advance() (Phase, error) {
	switch m.phase {
	case Browsing:
		m.phase = DetailsCapture
	case DetailsCapture:
		m.cart.Clear()
		m.phase = Completed
	default:
		return m.phase, m.reject("advance")
	}
	return m.phase, nil
}

// BackToBrowsing returns from DetailsCapture without side effects
func (m *Machine) BackToBrowsing() error {
	if m.phase != DetailsCapture {
		return m.reject("back")
	}
	m.phase = Browsing
	return nil
}

// Reset dismisses the confirmation, Completed back to Browsing
func (m *Machine) Reset() error {
	if m.phase != Completed {
		return m.reject("reset")
	}
	m.phase = Browsing
	return nil
}

// Dismiss is called when the cart view closes; the flow always restarts
func (m *Machine) Dismiss() {
	m.phase = Browsing
}

func (m *Machine) reject(action string) error {
	return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, action, m.phase)
}
