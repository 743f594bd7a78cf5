package view

import (
	"time"

	"storefront/internal/catalog"
	"storefront/internal/chat"
	"storefront/internal/checkout"
	"storefront/internal/session"
)

const (
	EmptyCartMessage    = "Your box is currently empty..."
	ConfirmationTitle   = "Order Confirmed!"
	ConfirmationMessage = "We're preheating the oven. You'll receive a confirmation email shortly."
)

// View is the JSON document a client renders for one session
type View struct {
	SessionID  string         `json:"session_id"`
	Products   []Product      `json:"products"`
	Categories []CategoryChip `json:"categories"`
	CartCount  int            `json:"cart_count"`
	Drawer     Drawer         `json:"drawer"`
	Chat       Chat           `json:"chat"`
}

type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Category    string `json:"category"`
	Image       string `json:"image"`
}

type CategoryChip struct {
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// Drawer is the cart side panel. Panel is one of cart, details or success.
type Drawer struct {
	Open          bool    `json:"open"`
	Phase         string  `json:"phase"`
	Panel         string  `json:"panel"`
	Lines         []Line  `json:"lines"`
	Subtotal      string  `json:"subtotal"`
	Total         string  `json:"total"`
	PrimaryAction string  `json:"primary_action,omitempty"`
	CanGoBack     bool    `json:"can_go_back"`
	Title         string  `json:"title,omitempty"`
	Message       string  `json:"message,omitempty"`
	Details       Details `json:"details"`
}

type Line struct {
	ItemID    string `json:"item_id"`
	Name      string `json:"name"`
	Image     string `json:"image"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	LineTotal string `json:"line_total"`
}

// Details echoes the pickup form while it is being filled in
type Details struct {
	Name       string `json:"name,omitempty"`
	Email      string `json:"email,omitempty"`
	PickupDate string `json:"pickup_date,omitempty"`
}

type Chat struct {
	Open     bool      `json:"open"`
	Pending  bool      `json:"pending"`
	Messages []Message `json:"messages"`
}

type Message struct {
	Role string    `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Project renders the state. It reads the state only.
func Project(s *session.State) View {
	return View{
		SessionID:  s.ID(),
		Products:   Products(s.VisibleItems()),
		Categories: chips(s.Category()),
		CartCount:  s.ItemCount(),
		Drawer:     drawer(s),
		Chat:       chatView(s.Chat()),
	}
}

// Products formats catalog items for display
func Products(items []catalog.Item) []Product {
	out := make([]Product, 0, len(items))
	for _, it := range items {
		out = append(out, Product{
			ID:          it.ID,
			Name:        it.Name,
			Description: it.Description,
			Price:       catalog.FormatPrice(it.Price),
			Category:    string(it.Category),
			Image:       it.Image,
		})
	}
	return out
}

func chips(selected catalog.Category) []CategoryChip {
	all := catalog.Categories()
	out := make([]CategoryChip, 0, len(all))
	for _, c := range all {
		out = append(out, CategoryChip{Name: string(c), Active: c == selected})
	}
	return out
}

func drawer(s *session.State) Drawer {
	phase := s.Phase()
	subtotal := catalog.FormatPrice(s.Subtotal())

	d := Drawer{
		Open:     s.DrawerOpen(),
		Phase:    phase.String(),
		Panel:    phase.Panel(),
		Lines:    make([]Line, 0, len(s.Lines())),
		Subtotal: subtotal,
		Total:    subtotal,
	}
	for _, l := range s.Lines() {
		d.Lines = append(d.Lines, Line{
			ItemID:    l.Item.ID,
			Name:      l.Item.Name,
			Image:     l.Item.Image,
			UnitPrice: catalog.FormatPrice(l.Item.Price),
			Quantity:  l.Quantity,
			LineTotal: catalog.FormatPrice(l.Total()),
		})
	}

	switch phase {
	case checkout.Browsing:
		if len(d.Lines) == 0 {
			d.Message = EmptyCartMessage
		} else {
			d.PrimaryAction = phase.PrimaryAction()
		}
	case checkout.DetailsCapture:
		if len(d.Lines) == 0 {
			d.Message = EmptyCartMessage
		} else {
			d.PrimaryAction = phase.PrimaryAction()
		}
		d.CanGoBack = true
		draft := s.Draft()
		d.Details = Details{Name: draft.CustomerName, Email: draft.CustomerEmail, PickupDate: draft.PickupDate}
	case checkout.Completed:
		d.PrimaryAction = phase.PrimaryAction()
		d.Title = ConfirmationTitle
		d.Message = ConfirmationMessage
	}
	return d
}

func chatView(c chat.Chat) Chat {
	out := Chat{Open: c.Open, Pending: c.Pending, Messages: make([]Message, 0, len(c.Messages))}
	for _, m := range c.Messages {
		out.Messages = append(out.Messages, Message{Role: string(m.Role), Text: m.Text, At: m.At})
	}
	return out
}
