// Package analytics derives read-only views from a ledger snapshot. Every
// function is pure: same snapshot in, same result out.
package analytics

import (
	"time"

	"api_tractors/internal/inventory"

	"github.com/shopspring/decimal"
)

// MonthBucket is one bar of the monthly sales chart.
type MonthBucket struct {
	Month string          `json:"name"`
	Sales decimal.Decimal `json:"sales"`
}

// DashboardView holds the headline numbers of the dashboard page.
type DashboardView struct {
	AvailableTractors  int                     `json:"availableTractors"`
	InventoryValue     decimal.Decimal         `json:"inventoryValue"`
	MonthlySales       decimal.Decimal         `json:"monthlySales"`
	RecentTransactions []inventory.Transaction `json:"recentTransactions"`
}

// YearSummary is the local counterpart of the AI yearly summary.
type YearSummary struct {
	Revenue         decimal.Decimal `json:"revenue"`
	Profit          decimal.Decimal `json:"profit"`
	UnitsSold       int             `json:"unitsSold"`
	BestModel       string          `json:"bestModel,omitempty"`
	BestModelProfit decimal.Decimal `json:"bestModelProfit"`
}

// DefaultRecent is how many transactions the dashboard lists.
const DefaultRecent = 5

// Partition splits tractors by status, keeping their order.
func Partition(tractors []inventory.Tractor) (available, sold []inventory.Tractor) {
	available = []inventory.Tractor{}
	sold = []inventory.Tractor{}
	for _, t := range tractors {
		switch t.Status {
		case inventory.StatusAvailable:
			available = append(available, t)
		case inventory.StatusSold:
			sold = append(sold, t)
		}
	}
	return available, sold
}

// InventoryValue sums listing prices of Available tractors.
func InventoryValue(tractors []inventory.Tractor) decimal.Decimal {
	total := decimal.Zero
	for _, t := range tractors {
		if t.Status == inventory.StatusAvailable {
			total = total.Add(t.ListingPrice)
		}
	}
	return total
}

// MonthlySales sums sale prices of transactions dated in now's calendar month.
func MonthlySales(txs []inventory.Transaction, now time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		d, ok := saleDate(tx)
		if !ok {
			continue
		}
		if d.Year() == now.Year() && d.Month() == now.Month() {
			total = total.Add(tx.SalePrice)
		}
	}
	return total
}

// MonthlySeries buckets sale prices by month of year, ignoring the year.
// Transactions with an unparsable date are skipped.
func MonthlySeries(txs []inventory.Transaction) [12]MonthBucket {
	var out [12]MonthBucket
	for i := range out {
		out[i] = MonthBucket{Month: time.Month(i + 1).String()[:3], Sales: decimal.Zero}
	}
	for _, tx := range txs {
		d, ok := saleDate(tx)
		if !ok {
			continue
		}
		i := int(d.Month()) - 1
		out[i].Sales = out[i].Sales.Add(tx.SalePrice)
	}
	return out
}

// Recent returns at most n transactions from the front of the newest-first
// collection.
func Recent(txs []inventory.Transaction, n int) []inventory.Transaction {
	if n < 0 {
		n = 0
	}
	if n > len(txs) {
		n = len(txs)
	}
	out := make([]inventory.Transaction, n)
	copy(out, txs[:n])
	return out
}

// Dashboard builds the dashboard view.
func Dashboard(snap inventory.Snapshot, now time.Time, recent int) DashboardView {
	available, _ := Partition(snap.Tractors)
	return DashboardView{
		AvailableTractors:  len(available),
		InventoryValue:     InventoryValue(snap.Tractors),
		MonthlySales:       MonthlySales(snap.Transactions, now),
		RecentTransactions: Recent(snap.Transactions, recent),
	}
}

// YearStats totals revenue and profit and picks the model with the highest
// total profit. Ties go to the model that sold first in the slice.
func YearStats(txs []inventory.Transaction) YearSummary {
	out := YearSummary{Revenue: decimal.Zero, Profit: decimal.Zero, BestModelProfit: decimal.Zero}
	byModel := map[string]decimal.Decimal{}
	var order []string

	for _, tx := range txs {
		profit := tx.SalePrice.Sub(tx.Tractor.PurchasePrice)
		out.Revenue = out.Revenue.Add(tx.SalePrice)
		out.Profit = out.Profit.Add(profit)
		out.UnitsSold++

		name := tx.Tractor.Name
		if _, ok := byModel[name]; !ok {
			order = append(order, name)
		}
		byModel[name] = byModel[name].Add(profit)
	}

	for _, name := range order {
		if out.BestModel == "" || byModel[name].GreaterThan(out.BestModelProfit) {
			out.BestModel = name
			out.BestModelProfit = byModel[name]
		}
	}
	return out
}

func saleDate(tx inventory.Transaction) (time.Time, bool) {
	d, err := time.Parse(inventory.DateLayout, tx.Date)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}
