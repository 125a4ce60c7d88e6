// Package receipt renders orders and final bills as plain text.
package receipt

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/xenking/tablebill/internal/domain/bill"
	"github.com/xenking/tablebill/internal/domain/order"
)

// DefaultWidth is the banner width used when none is configured.
const DefaultWidth = 40

// FinalFilename is the download name of the final bill.
const FinalFilename = "final_bill.txt"

// OrderFilename returns the download name of a single order receipt.
func OrderFilename(name string) string {
	return "receipt_" + name + ".txt"
}

// Formatter renders receipts. The zero value is usable and produces
// DefaultWidth banners with no currency prefix.
type Formatter struct {
	Width    int
	Currency string
}

// NewFormatter creates a Formatter. Non-positive widths fall back to DefaultWidth.
func NewFormatter(width int, currency string) *Formatter {
	if width <= 0 {
		width = DefaultWidth
	}
	return &Formatter{Width: width, Currency: currency}
}

// FormatOrder renders a single order receipt.
func (f *Formatter) FormatOrder(o order.Order) string {
	var b strings.Builder
	f.banner(&b, '=')
	f.writeOrder(&b, o)
	f.banner(&b, '=')
	return b.String()
}

// FormatFinal renders the final bill: every order followed by the aggregate
// block. Tax, tip, and grand total are printed with two decimal places.
func (f *Formatter) FormatFinal(orders []order.Order, s bill.Summary, settings bill.Settings) string {
	var b strings.Builder
	f.banner(&b, '=')
	b.WriteString("FINAL BILL\n")
	f.banner(&b, '=')

	for _, o := range orders {
		f.writeOrder(&b, o)
		f.banner(&b, '=')
	}

	b.WriteString("Subtotal: " + f.money(s.Subtotal) + "\n")
	b.WriteString("Tax (" + strconv.Itoa(settings.TaxRatePercent) + "%): " + f.fixed(s.TaxAmount) + "\n")
	b.WriteString("Tip (" + strconv.Itoa(settings.TipRatePercent) + "%): " + f.fixed(s.TipAmount) + "\n")
	f.banner(&b, '-')
	b.WriteString("Grand Total: " + f.fixed(s.GrandTotal) + "\n")
	f.banner(&b, '=')
	return b.String()
}

func (f *Formatter) writeOrder(b *strings.Builder, o order.Order) {
	b.WriteString("Customer: " + o.Name + "\n")
	for _, li := range o.Items {
		b.WriteString(li.Item + " x" + strconv.Itoa(li.Quantity) + " = " + f.money(li.LineTotal) + "\n")
	}
	f.banner(b, '-')
	b.WriteString("Subtotal: " + f.money(o.Subtotal) + "\n")
}

func (f *Formatter) banner(b *strings.Builder, c byte) {
	w := f.Width
	if w <= 0 {
		w = DefaultWidth
	}
	for range w {
		b.WriteByte(c)
	}
	b.WriteByte('\n')
}

func (f *Formatter) money(d decimal.Decimal) string {
	return f.Currency + d.String()
}

func (f *Formatter) fixed(d decimal.Decimal) string {
	return f.Currency + d.StringFixed(2)
}
