package inventory

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format stored on transactions.
const DateLayout = "2006-01-02"

// TractorStatus is the sale state of a tractor in the yard.
type TractorStatus string

// Tractor statuses. The only transition is Available -> Sold.
const (
	StatusAvailable TractorStatus = "Available"
	StatusSold      TractorStatus = "Sold"
)

// Valid reports whether s is a known status.
func (s TractorStatus) Valid() bool {
	return s == StatusAvailable || s == StatusSold
}

// Tractor is a unit of inventory.
type Tractor struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Model         string          `json:"model"`
	Year          int             `json:"year"`
	PurchasePrice decimal.Decimal `json:"purchasePrice"`
	ListingPrice  decimal.Decimal `json:"listingPrice"`
	Status        TractorStatus   `json:"status"`
	ImageURL      string          `json:"imageUrl"`
	Description   string          `json:"description"`
}

// TractorDraft carries the editable fields of a tractor. The ledger assigns
// id, status and image reference.
type TractorDraft struct {
	Name          string          `json:"name"`
	Model         string          `json:"model"`
	Year          int             `json:"year"`
	PurchasePrice decimal.Decimal `json:"purchasePrice"`
	ListingPrice  decimal.Decimal `json:"listingPrice"`
	Description   string          `json:"description"`
}

// Validate checks the draft the way the inventory form does. The ledger itself
// does not call it.
func (d TractorDraft) Validate() error {
	if strings.TrimSpace(d.Name) == "" || strings.TrimSpace(d.Model) == "" {
		return fmt.Errorf("%w: name and model are required", ErrValidation)
	}
	if d.Year <= 0 {
		return fmt.Errorf("%w: year must be positive", ErrValidation)
	}
	if d.PurchasePrice.IsNegative() || d.ListingPrice.IsNegative() {
		return fmt.Errorf("%w: prices must not be negative", ErrValidation)
	}
	return nil
}

// Apply copies the draft's editable fields onto t, keeping identity fields.
func (d TractorDraft) Apply(t Tractor) Tractor {
	t.Name = d.Name
	t.Model = d.Model
	t.Year = d.Year
	t.PurchasePrice = d.PurchasePrice
	t.ListingPrice = d.ListingPrice
	t.Description = d.Description
	return t
}

// Customer is the buyer recorded on a transaction.
type Customer struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

// CustomerDraft is a customer before the ledger assigns an id.
type CustomerDraft struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

// Validate requires every contact field to be non-empty.
func (d CustomerDraft) Validate() error {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"name", d.Name},
		{"address", d.Address},
		{"phone", d.Phone},
		{"email", d.Email},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: customer %s required", ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}

// Transaction records one sale. Tractor is a copy taken at the moment of sale.
type Transaction struct {
	ID        string          `json:"id"`
	Tractor   Tractor         `json:"tractor"`
	Customer  Customer        `json:"customer"`
	SalePrice decimal.Decimal `json:"salePrice"`
	Date      string          `json:"date"`
}

// Snapshot is a point-in-time copy of both ledger collections, newest first.
type Snapshot struct {
	Tractors     []Tractor     `json:"tractors"`
	Transactions []Transaction `json:"transactions"`
}
