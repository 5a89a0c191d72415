package inventory

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var seedTractors = []TractorDraft{
	{
		Name:          "John Deere 5075E",
		Model:         "5 Series",
		Year:          2022,
		PurchasePrice: decimal.NewFromInt(45000),
		ListingPrice:  decimal.NewFromInt(55000),
		Description:   "A reliable and powerful utility tractor, perfect for a variety of tasks on the farm.",
	},
	{
		Name:          "Case IH Farmall 100A",
		Model:         "Farmall A Series",
		Year:          2021,
		PurchasePrice: decimal.NewFromInt(58000),
		ListingPrice:  decimal.NewFromInt(69000),
		Description:   "Experience superior comfort and performance with this versatile and efficient tractor.",
	},
	{
		Name:          "New Holland T4",
		Model:         "T4 Series",
		Year:          2020,
		PurchasePrice: decimal.NewFromInt(38000),
		ListingPrice:  decimal.NewFromInt(46000),
		Description:   "Compact yet powerful, this tractor is ideal for smaller farms and tight spaces.",
	},
	{
		Name:          "Kubota M7",
		Model:         "M7 Series",
		Year:          2023,
		PurchasePrice: decimal.NewFromInt(95000),
		ListingPrice:  decimal.NewFromInt(110000),
		Description:   "Top-of-the-line performance and technology for demanding agricultural operations.",
	},
}

// Seed loads the demo yard: four tractors, the third one already sold.
// It goes through the public operations so counters and invariants hold.
func Seed(s *Service) error {
	added := make([]Tractor, 0, len(seedTractors))
	for _, d := range seedTractors {
		t, err := s.AddTractor(d)
		if err != nil {
			return fmt.Errorf("seed tractor %q: %w", d.Name, err)
		}
		added = append(added, t)
	}

	_, err := s.RecordSaleOn(added[2], CustomerDraft{
		Name:    "Rajesh Kumar",
		Address: "123 Farmingdale Rd, Punjab",
		Phone:   "9876543210",
		Email:   "rajesh.k@example.com",
	}, decimal.NewFromInt(45500), time.Date(2023, time.August, 15, 0, 0, 0, 0, time.UTC))
	if err != nil {
		return fmt.Errorf("seed sale: %w", err)
	}
	return nil
}
