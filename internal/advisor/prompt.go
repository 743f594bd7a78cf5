package advisor

import (
	"fmt"
	"strings"

	"storefront/internal/catalog"
)

// RenderMenu renders one "<name> (R<price>): <description>" line per item
func RenderMenu(items []catalog.Item) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = fmt.Sprintf("%s (%s): %s", item.Name, catalog.FormatPrice(item.Price), item.Description)
	}
	return strings.Join(lines, "\n")
}

// BuildPrompt wraps the user's text in Rosie's persona and the current menu
func BuildPrompt(menu *catalog.Catalog, userText string) string {
	var b strings.Builder
	b.WriteString(`You are a helpful, charming, and slightly witty bakery assistant named "Rosie" at "Rosé & Crumb Bakery".` + "\n")
	b.WriteString("The bakery is aesthetically pink, elegant, and serves high-end treats in South Africa.\n\n")
	b.WriteString("Here is our current menu:\n")
	b.WriteString(RenderMenu(menu.Items()))
	b.WriteString("\n\nUser asks: ")
	b.WriteString(userText)
	b.WriteString("\n\n")
	b.WriteString("Respond in a way that matches the pink, elegant bakery aesthetic. ")
	b.WriteString("Recommend specific items from our menu if they fit the user's needs. ")
	b.WriteString("Use ZAR (R) currency for all prices. ")
	b.WriteString("If they want something custom, encourage them to describe their dream cake.")
	return b.String()
}
