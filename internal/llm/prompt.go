package llm

import (
	"fmt"
	"strings"

	"github.com/sposusu/eat-aware-scheduler/internal/catalog"
	"github.com/sposusu/eat-aware-scheduler/internal/valuation"
)

const replyInstruction = `Analyze the image. Return JSON only: {"items":[{"name":string,"price":number,"calories":number,"count":number}],"comment":string}`

// BuildPrompt lists the catalog with market prices so the model can name
// dishes the way the buffet does.
func BuildPrompt(entries []catalog.MenuEntry) string {
	var b strings.Builder

	b.WriteString("You are looking at a plate from an all-you-can-eat buffet.\n")
	b.WriteString("Identify every dish, count the pieces, and estimate each dish's value.\n\n")
	b.WriteString("Menu:\n")
	for _, e := range entries {
		if strings.TrimSpace(e.Name) == "" {
			continue
		}
		fmt.Fprintf(&b, "- %s: ~$%s\n", e.Name, formatPrice(valuation.UnitPrice(e, valuation.ModeMarket)))
	}

	b.WriteString("\nRules:\n")
	b.WriteString("1. Use the menu names above when a dish matches one.\n")
	b.WriteString("2. Count pieces (for example 3 slices of salmon is count 3). Default count is 1.\n")
	b.WriteString("3. Add a short, friendly comment about the plate.\n")

	return b.String()
}

func formatPrice(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
