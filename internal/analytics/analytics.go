// Package analytics computes aggregate views over cleaned transactions.
// Every function is pure: the input slice is never modified and results
// are returned as ordered slices so output is deterministic.
package analytics

import (
	"sort"

	"sales-analytics-service/internal/models"

	"github.com/shopspring/decimal"
)

const (
	// DefaultTopProducts is the product ranking size when none is given.
	DefaultTopProducts = 5

	// DefaultLowQuantityThreshold flags products below this total quantity.
	DefaultLowQuantityThreshold = 10
)

// RegionSales holds a region's total revenue, its transaction count and
// its share of the dataset's revenue. Monetary values are rounded to two
// decimal places.
type RegionSales struct {
	Region           string          `json:"region"`
	Total            decimal.Decimal `json:"total"`
	TransactionCount int             `json:"transaction_count"`
	Percentage       decimal.Decimal `json:"percentage"`
}

// ProductSales ranks a product by the total quantity sold. Revenue is
// carried for reporting and rounded to two decimal places.
type ProductSales struct {
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// CustomerStats summarizes one customer's purchasing behavior.
type CustomerStats struct {
	CustomerID       string          `json:"customer_id"`
	TotalSpent       decimal.Decimal `json:"total_spent"`
	TransactionCount int             `json:"transaction_count"`
	AverageOrder     decimal.Decimal `json:"average_order"`
	Products         []string        `json:"products"`
}

// DailySales holds one day's revenue, transaction count and distinct
// customer count.
type DailySales struct {
	Date             string          `json:"date"`
	Revenue          decimal.Decimal `json:"revenue"`
	TransactionCount int             `json:"transaction_count"`
	UniqueCustomers  int             `json:"unique_customers"`
}

// SalesMetrics is the overall dataset summary.
type SalesMetrics struct {
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	TotalQuantity     int64           `json:"total_quantity"`
	TransactionCount  int             `json:"transaction_count"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	FirstDate         string          `json:"first_date"`
	LastDate          string          `json:"last_date"`
}

// TotalRevenue sums the amounts of all transactions at full precision.
func TotalRevenue(transactions []*models.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range transactions {
		total = total.Add(tx.Amount())
	}
	return total
}

// ComputeMetrics derives the overall summary. Monetary values are rounded
// to two decimal places. The date range relies on the ISO date format
// sorting lexicographically.
func ComputeMetrics(transactions []*models.Transaction) *SalesMetrics {
	metrics := &SalesMetrics{TransactionCount: len(transactions)}
	if len(transactions) == 0 {
		metrics.TotalRevenue = decimal.Zero
		metrics.AverageOrderValue = decimal.Zero
		return metrics
	}

	total := TotalRevenue(transactions)
	metrics.TotalRevenue = total.Round(2)
	metrics.AverageOrderValue = total.Div(decimal.NewFromInt(int64(len(transactions)))).Round(2)
	for _, tx := range transactions {
		metrics.TotalQuantity += tx.Quantity
	}

	metrics.FirstDate = transactions[0].Date
	metrics.LastDate = transactions[0].Date
	for _, tx := range transactions[1:] {
		if tx.Date < metrics.FirstDate {
			metrics.FirstDate = tx.Date
		}
		if tx.Date > metrics.LastDate {
			metrics.LastDate = tx.Date
		}
	}
	return metrics
}

// RegionWiseSales totals revenue per region and expresses each as a
// percentage of the input's own revenue. Sorted by total descending;
// regions with equal totals keep their first-seen order.
func RegionWiseSales(transactions []*models.Transaction) []RegionSales {
	totals := make(map[string]decimal.Decimal)
	counts := make(map[string]int)
	var order []string
	for _, tx := range transactions {
		if _, ok := totals[tx.Region]; !ok {
			order = append(order, tx.Region)
		}
		totals[tx.Region] = totals[tx.Region].Add(tx.Amount())
		counts[tx.Region]++
	}

	grandTotal := TotalRevenue(transactions)

	result := make([]RegionSales, 0, len(order))
	for _, region := range order {
		total := totals[region]
		pct := decimal.Zero
		if !grandTotal.IsZero() {
			pct = total.Mul(decimal.NewFromInt(100)).Div(grandTotal).Round(2)
		}
		result = append(result, RegionSales{
			Region:           region,
			Total:            total.Round(2),
			TransactionCount: counts[region],
			Percentage:       pct,
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Total.GreaterThan(result[j].Total)
	})
	return result
}

// TopSellingProducts ranks products by total quantity sold, descending,
// returning at most n entries. Products with equal quantities keep their
// first-seen order. n <= 0 uses DefaultTopProducts; n larger than the
// number of distinct products returns them all.
func TopSellingProducts(transactions []*models.Transaction, n int) []ProductSales {
	if n <= 0 {
		n = DefaultTopProducts
	}

	result := productTotals(transactions)
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Quantity > result[j].Quantity
	})

	if n < len(result) {
		result = result[:n]
	}
	return result
}

// productTotals sums quantity and revenue per product in first-seen order.
func productTotals(transactions []*models.Transaction) []ProductSales {
	type accumulator struct {
		quantity int64
		revenue  decimal.Decimal
	}

	byProduct := make(map[string]*accumulator)
	var order []string
	for _, tx := range transactions {
		acc, ok := byProduct[tx.ProductName]
		if !ok {
			acc = &accumulator{}
			byProduct[tx.ProductName] = acc
			order = append(order, tx.ProductName)
		}
		acc.quantity += tx.Quantity
		acc.revenue = acc.revenue.Add(tx.Amount())
	}

	result := make([]ProductSales, 0, len(order))
	for _, name := range order {
		acc := byProduct[name]
		result = append(result, ProductSales{
			ProductName: name,
			Quantity:    acc.quantity,
			Revenue:     acc.revenue.Round(2),
		})
	}
	return result
}

// CustomerAnalysis summarizes spending per customer, sorted by total spent
// descending. Distinct product names per customer are sorted ascending.
// Customers with equal totals keep their first-seen order.
func CustomerAnalysis(transactions []*models.Transaction) []CustomerStats {
	type accumulator struct {
		total    decimal.Decimal
		count    int
		products map[string]struct{}
	}

	byCustomer := make(map[string]*accumulator)
	var order []string
	for _, tx := range transactions {
		acc, ok := byCustomer[tx.CustomerID]
		if !ok {
			acc = &accumulator{products: make(map[string]struct{})}
			byCustomer[tx.CustomerID] = acc
			order = append(order, tx.CustomerID)
		}
		acc.total = acc.total.Add(tx.Amount())
		acc.count++
		acc.products[tx.ProductName] = struct{}{}
	}

	result := make([]CustomerStats, 0, len(order))
	for _, id := range order {
		acc := byCustomer[id]
		products := make([]string, 0, len(acc.products))
		for name := range acc.products {
			products = append(products, name)
		}
		sort.Strings(products)

		result = append(result, CustomerStats{
			CustomerID:       id,
			TotalSpent:       acc.total.Round(2),
			TransactionCount: acc.count,
			AverageOrder:     acc.total.Div(decimal.NewFromInt(int64(acc.count))).Round(2),
			Products:         products,
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].TotalSpent.GreaterThan(result[j].TotalSpent)
	})
	return result
}

// DailySalesTrend totals revenue and counts distinct customers per date,
// sorted by date ascending.
func DailySalesTrend(transactions []*models.Transaction) []DailySales {
	type accumulator struct {
		revenue   decimal.Decimal
		count     int
		customers map[string]struct{}
	}

	byDate := make(map[string]*accumulator)
	for _, tx := range transactions {
		acc, ok := byDate[tx.Date]
		if !ok {
			acc = &accumulator{customers: make(map[string]struct{})}
			byDate[tx.Date] = acc
		}
		acc.revenue = acc.revenue.Add(tx.Amount())
		acc.count++
		acc.customers[tx.CustomerID] = struct{}{}
	}

	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	result := make([]DailySales, 0, len(dates))
	for _, date := range dates {
		acc := byDate[date]
		result = append(result, DailySales{
			Date:             date,
			Revenue:          acc.revenue.Round(2),
			TransactionCount: acc.count,
			UniqueCustomers:  len(acc.customers),
		})
	}
	return result
}

// FindPeakSalesDay returns the day with the highest revenue, or nil on
// empty input. Scanning ascending dates and requiring a strictly greater
// revenue makes the earliest such day win ties.
func FindPeakSalesDay(transactions []*models.Transaction) *DailySales {
	trend := DailySalesTrend(transactions)
	if len(trend) == 0 {
		return nil
	}

	peak := trend[0]
	for _, day := range trend[1:] {
		if day.Revenue.GreaterThan(peak.Revenue) {
			peak = day
		}
	}
	return &peak
}

// LowPerformingProducts lists products whose total quantity sold is
// strictly below threshold, sorted by quantity ascending. Products with
// equal quantities keep their first-seen order. The threshold is taken
// as given; zero or negative values match nothing. Callers wanting the
// conventional cutoff pass DefaultLowQuantityThreshold.
func LowPerformingProducts(transactions []*models.Transaction, threshold int64) []ProductSales {
	var result []ProductSales
	for _, p := range productTotals(transactions) {
		if p.Quantity < threshold {
			result = append(result, p)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Quantity < result[j].Quantity
	})
	return result
}
