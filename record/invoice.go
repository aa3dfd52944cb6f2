package record

import (
	"time"

	"github.com/lvillar/docsmith"
)

// DefaultCurrency is used when an invoice does not name one.
const DefaultCurrency = "USD"

// Item is a single invoice line.
type Item struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
}

// Amount returns quantity times unit price.
func (it Item) Amount() float64 { return it.Quantity * it.Price }

// Invoice is a bill sent to a client.
type Invoice struct {
	InvoiceNumber  string    `json:"invoiceNumber"`
	Date           time.Time `json:"date"`
	ClientName     string    `json:"clientName"`
	ClientEmail    string    `json:"clientEmail"`
	ClientAddress  string    `json:"clientAddress"`
	Items          []Item    `json:"items"`
	TaxRate        float64   `json:"taxRate"` // percent
	Notes          string    `json:"notes"`
	CompanyLogo    string    `json:"companyLogo,omitempty"`
	CompanyName    string    `json:"companyName"`
	CompanyEmail   string    `json:"companyEmail"`
	CompanyAddress string    `json:"companyAddress"`
	Currency       string    `json:"currency"`
}

func (inv *Invoice) Kind() docsmith.Kind { return docsmith.KindInvoice }
func (inv *Invoice) Identifier() string  { return inv.InvoiceNumber }

func (inv *Invoice) Clone() Record {
	c := inv.clone()
	return &c
}

func (inv *Invoice) clone() Invoice {
	c := *inv
	c.Items = append([]Item(nil), inv.Items...)
	return c
}

// Totals holds the computed money amounts of an invoice.
type Totals struct {
	Subtotal float64
	Tax      float64
	Total    float64
}

// Totals computes subtotal, tax and total. Amounts are not rounded; rounding
// to the currency's minor unit happens only when they are formatted.
func (inv *Invoice) Totals() Totals {
	var t Totals
	for _, it := range inv.Items {
		t.Subtotal += it.Amount()
	}
	t.Tax = t.Subtotal * (inv.TaxRate / 100)
	t.Total = t.Subtotal + t.Tax
	return t
}

// CurrencyCode returns the ISO 4217 code, defaulting to USD.
func (inv *Invoice) CurrencyCode() string {
	if inv.Currency == "" {
		return DefaultCurrency
	}
	return inv.Currency
}

// Quotation is a priced offer with an expiry date. It shares the invoice
// field set and adds its own number and validity.
type Quotation struct {
	Invoice
	QuotationNumber string    `json:"quotationNumber"`
	ValidUntil      time.Time `json:"validUntil"`
}

func (q *Quotation) Kind() docsmith.Kind { return docsmith.KindQuotation }
func (q *Quotation) Identifier() string  { return q.QuotationNumber }

func (q *Quotation) Clone() Record {
	c := *q
	c.Invoice = q.Invoice.clone()
	return &c
}
