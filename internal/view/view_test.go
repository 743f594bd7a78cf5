package view

import (
	"encoding/json"
	"testing"
	"time"

	"storefront/internal/catalog"
	"storefront/internal/models"
	"storefront/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newState() *session.State {
	return session.NewState("s-1", catalog.Default(), time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
}

func TestProjectFreshSession(t *testing.T) {
	v := Project(newState())

	assert.Equal(t, "s-1", v.SessionID)
	assert.Len(t, v.Products, 6)
	assert.Equal(t, 0, v.CartCount)
	require.Len(t, v.Categories, 5)
	assert.Equal(t, CategoryChip{Name: "All", Active: true}, v.Categories[0])

	assert.False(t, v.Drawer.Open)
	assert.Equal(t, "cart", v.Drawer.Panel)
	assert.Equal(t, EmptyCartMessage, v.Drawer.Message)
	assert.Empty(t, v.Drawer.PrimaryAction)
	assert.Equal(t, "R0.00", v.Drawer.Total)

	require.Len(t, v.Chat.Messages, 1)
	assert.Equal(t, "assistant", v.Chat.Messages[0].Role)
}

func TestProjectCartLines(t *testing.T) {
	s := newState()
	require.NoError(t, s.AddItem("2"))
	require.NoError(t, s.AddItem("2"))
	require.NoError(t, s.AddItem("3"))
	s.OpenCart()

	v := Project(s)
	assert.Equal(t, 3, v.CartCount)
	assert.True(t, v.Drawer.Open)
	assert.Equal(t, "Proceed to Details", v.Drawer.PrimaryAction)
	assert.Empty(t, v.Drawer.Message)
	require.Len(t, v.Drawer.Lines, 2)
	assert.Equal(t, Line{
		ItemID:    "2",
		Name:      "Rosewater Macarons",
		Image:     "https://picsum.photos/seed/macaron/600/600",
		UnitPrice: "R18.00",
		Quantity:  2,
		LineTotal: "R36.00",
	}, v.Drawer.Lines[0])
	assert.Equal(t, "R81.00", v.Drawer.Subtotal)
	assert.Equal(t, "R81.00", v.Drawer.Total)
}

func TestProjectCheckoutPanels(t *testing.T) {
	s := newState()
	require.NoError(t, s.AddItem("1"))
	s.OpenCart()

	_, err := s.Advance(nil)
	require.NoError(t, err)
	require.NoError(t, s.CaptureDetails(models.OrderDraft{CustomerName: "Lerato", PickupDate: "2026-03-04"}))

	v := Project(s)
	assert.Equal(t, "details", v.Drawer.Panel)
	assert.Equal(t, "Place Order", v.Drawer.PrimaryAction)
	assert.True(t, v.Drawer.CanGoBack)
	assert.Equal(t, Details{Name: "Lerato", PickupDate: "2026-03-04"}, v.Drawer.Details)
	assert.Equal(t, "R4.50", v.Drawer.Total)

	_, err = s.Advance(nil)
	require.NoError(t, err)

	v = Project(s)
	assert.Equal(t, "success", v.Drawer.Panel)
	assert.Equal(t, "Keep Browsing", v.Drawer.PrimaryAction)
	assert.Equal(t, ConfirmationTitle, v.Drawer.Title)
	assert.Equal(t, 0, v.CartCount)
	assert.Empty(t, v.Drawer.Lines)
	assert.Equal(t, Details{}, v.Drawer.Details)
}

func TestProjectDetailsWithEmptyCart(t *testing.T) {
	s := newState()
	require.NoError(t, s.AddItem("1"))
	_, err := s.Advance(nil)
	require.NoError(t, err)
	s.RemoveItem("1")

	v := Project(s)
	assert.Equal(t, "details", v.Drawer.Panel)
	assert.Empty(t, v.Drawer.PrimaryAction)
	assert.Equal(t, EmptyCartMessage, v.Drawer.Message)
	assert.True(t, v.Drawer.CanGoBack)
}

func TestProjectCategoryFilter(t *testing.T) {
	s := newState()
	s.SelectCategory(catalog.Cookies)

	v := Project(s)
	require.Len(t, v.Products, 2)
	for _, p := range v.Products {
		assert.Equal(t, "Cookies", p.Category)
	}
	for _, c := range v.Categories {
		assert.Equal(t, c.Name == "Cookies", c.Active, c.Name)
	}
	assert.Equal(t, "R18.00", v.Products[0].Price)
}

func TestProjectDoesNotMutate(t *testing.T) {
	s := newState()
	require.NoError(t, s.AddItem("5"))

	before, err := json.Marshal(s)
	require.NoError(t, err)
	first := Project(s)
	second := Project(s)
	after, err := json.Marshal(s)
	require.NoError(t, err)

	assert.JSONEq(t, string(before), string(after))
	assert.Equal(t, first, second)
}

func TestViewJSONShape(t *testing.T) {
	data, err := json.Marshal(Project(newState()))
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	for _, key := range []string{"session_id", "products", "categories", "cart_count", "drawer", "chat"} {
		assert.Contains(t, doc, key)
	}
	drawer := doc["drawer"].(map[string]any)
	assert.Equal(t, []any{}, drawer["lines"])
}
