package reports

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/jmregala/tindahan-pos/internal/models"
)

// Formato legible para logs y digests de operación.

func pesos(cents int64) string {
	return humanize.FormatFloat("#,###.##", float64(cents)/100)
}

func FormatSummary(s models.Summary) string {
	return fmt.Sprintf("%s orders, %s items sold, P%s revenue, P%s avg order",
		humanize.Comma(s.Orders), humanize.Comma(s.ItemsSold),
		pesos(s.RevenueCents), pesos(s.AvgOrderCents))
}

func FormatLowStock(items []models.LowStockItem) string {
	if len(items) == 0 {
		return "no low-stock items"
	}
	out := fmt.Sprintf("%s items need restocking:\n", humanize.Comma(int64(len(items))))
	for _, it := range items {
		out += fmt.Sprintf("  [%s] %s: stock %d, min %d\n", it.Status, it.Name, it.Qty, it.MinStock)
	}
	return out
}
