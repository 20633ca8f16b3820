package reports

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jmregala/tindahan-pos/internal/models"
)

func TestFormatSummary(t *testing.T) {
	s := models.Summary{
		Orders:        1250,
		ItemsSold:     4310,
		RevenueCents:  12345600,
		AvgOrderCents: 9876,
	}
	got := FormatSummary(s)
	assert.Contains(t, got, "1,250 orders")
	assert.Contains(t, got, "4,310 items sold")
	assert.Contains(t, got, "123,456.00 revenue")
	assert.Contains(t, got, "98.76 avg order")
}

func TestFormatLowStock(t *testing.T) {
	assert.Equal(t, "no low-stock items", FormatLowStock(nil))

	got := FormatLowStock([]models.LowStockItem{
		{Name: "Soap", Qty: 0, MinStock: 5, Status: models.StockOut},
		{Name: "Coffee", Qty: 3, MinStock: 10, Status: models.StockLow},
	})
	assert.Contains(t, got, "[OUT] Soap: stock 0, min 5")
	assert.Contains(t, got, "[LOW] Coffee: stock 3, min 10")
}
