package catalog

import "github.com/shopspring/decimal"

// Default returns the Rosé & Crumb menu
func Default() *Catalog {
	return MustNew([]Item{
		{
			ID:          "1",
			Name:        "Blush Velvet Cupcake",
			Price:       decimal.RequireFromString("4.50"),
			Description: "Light cocoa sponge with a silky cream cheese frosting and edible gold leaf.",
			Category:    Pastries,
			Image:       "https://picsum.photos/seed/cupcake1/600/600",
		},
		{
			ID:          "2",
			Name:        "Rosewater Macarons",
			Price:       decimal.RequireFromString("18.00"),
			Description: "A dozen delicate macarons infused with organic rose petals and honey.",
			Category:    Cookies,
			Image:       "https://picsum.photos/seed/macaron/600/600",
		},
		{
			ID:          "3",
			Name:        "Champagne Strawberry Cake",
			Price:       decimal.RequireFromString("45.00"),
			Description: "Triple-layered vanilla cake soaked in champagne syrup with fresh local strawberries.",
			Category:    Cakes,
			Image:       "https://picsum.photos/seed/cake1/600/600",
		},
		{
			ID:          "4",
			Name:        "Glazed Raspberry Croissants",
			Price:       decimal.RequireFromString("5.50"),
			Description: "Flaky, buttery layers filled with tart house-made raspberry jam.",
			Category:    Pastries,
			Image:       "https://picsum.photos/seed/croissant/600/600",
		},
		{
			ID:          "5",
			Name:        "Signature Pink Cookies",
			Price:       decimal.RequireFromString("3.50"),
			Description: "Soft-baked sugar cookies with a hint of almond and our signature pink icing.",
			Category:    Cookies,
			Image:       "https://picsum.photos/seed/cookie1/600/600",
		},
		{
			ID:          "6",
			Name:        "Custom Celebration Cake",
			Price:       decimal.RequireFromString("85.00"),
			Description: "Bespoke designs tailored to your special event. Talk to our AI assistant to design yours!",
			Category:    Custom,
			Image:       "https://picsum.photos/seed/customcake/600/600",
		},
	})
}
