// Package invoice turns a recorded sale into a printable HTML invoice.
package invoice

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"api_tractors/internal/inventory"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

//go:embed templates/invoice.html
var templatesFS embed.FS

const displayDate = "02/01/2006"

// Dealership is the seller block printed at the top of every invoice.
type Dealership struct {
	Name           string
	Address        string
	CurrencySymbol string
}

var DefaultDealership = Dealership{
	Name:           "Kunal Tractors",
	Address:        "123 Tractor Lane, Punjab, India",
	CurrencySymbol: "₹",
}

type Line struct {
	Name   string
	Detail string
	Price  string
}

type Invoice struct {
	Seller   Dealership
	Number   string
	Date     string
	Customer inventory.Customer
	Lines    []Line
	Subtotal string
	Total    string
}

// Build lays out tx for printing. A single line carries the tractor; subtotal
// and total equal the sale price.
func Build(tx inventory.Transaction, seller Dealership) Invoice {
	price := FormatMoney(seller.CurrencySymbol, tx.SalePrice)
	return Invoice{
		Seller:   seller,
		Number:   tx.ID,
		Date:     FormatDate(tx.Date),
		Customer: tx.Customer,
		Lines: []Line{{
			Name:   tx.Tractor.Name,
			Detail: fmt.Sprintf("%s - %d", tx.Tractor.Model, tx.Tractor.Year),
			Price:  price,
		}},
		Subtotal: price,
		Total:    price,
	}
}

// FormatMoney renders v with thousands separators and two decimals.
func FormatMoney(symbol string, v decimal.Decimal) string {
	sign := ""
	if v.IsNegative() {
		sign = "-"
		v = v.Abs()
	}
	return sign + symbol + humanize.FormatFloat("#,###.##", v.Round(2).InexactFloat64())
}

// FormatDate turns a ledger date into day/month/year. Dates that do not parse
// are returned unchanged.
func FormatDate(date string) string {
	t, err := time.Parse(inventory.DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format(displayDate)
}

type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/invoice.html")
	if err != nil {
		return nil, fmt.Errorf("parsing invoice template: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

func (r *Renderer) Render(w io.Writer, inv Invoice) error {
	if err := r.tmpl.ExecuteTemplate(w, "invoice.html", inv); err != nil {
		return fmt.Errorf("rendering invoice %s: %w", inv.Number, err)
	}
	return nil
}
