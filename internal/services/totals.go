package services

import (
	"garage_backend/internal/models"
	"garage_backend/pkg/utils"

	"github.com/shopspring/decimal"
)

// LineTotal is quantity times unit price rounded to cents.
func LineTotal(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return utils.RoundMoney(quantity.Mul(unitPrice))
}

// CalculateTotals derives a job card's money fields from its children. PART
// lines feed the parts subtotal; LABOR and FEE lines share the labor subtotal.
// Tax is rounded half away from zero to cents, so total due always equals the
// two subtotals plus the tax exactly.
func CalculateTotals(lines []models.LineItem, payments []models.Payment, taxRate decimal.Decimal) models.Totals {
	parts := decimal.Zero
	labor := decimal.Zero
	for _, li := range lines {
		lineTotal := LineTotal(li.Quantity, li.UnitPrice)
		if li.ItemType == models.LineItemPart {
			parts = parts.Add(lineTotal)
		} else {
			labor = labor.Add(lineTotal)
		}
	}

	paid := decimal.Zero
	for _, p := range payments {
		paid = paid.Add(p.Amount)
	}

	subtotal := parts.Add(labor)
	tax := utils.RoundMoney(subtotal.Mul(taxRate))
	return models.Totals{
		PartsSubtotal: parts,
		LaborSubtotal: labor,
		TaxAmount:     tax,
		TotalDue:      subtotal.Add(tax),
		TotalPaid:     paid,
	}
}
