package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SalesGenerator generates pipe-delimited sales transaction files,
// optionally salted with the malformed records the cleaning pass has to
// survive.
type SalesGenerator struct {
	Count         int
	StartDate     time.Time
	Days          int
	MalformedRate float64
	Seed          int64
}

var regions = []string{"North", "South", "East", "West"}

var products = []struct {
	ID   string
	Name string
}{
	{"P101", "Widget"},
	{"P102", "Gadget"},
	{"P103", "Doohickey"},
	{"P104", "Gadget, Pro"},
	{"P105", "Trinket"},
	{"P999", "Mystery Item"},
}

func main() {
	var (
		output        = flag.String("output", "generated_sales.txt", "Output file path")
		count         = flag.Int("count", 1000, "Number of records to generate")
		startDate     = flag.String("start-date", "2024-01-01", "First transaction date (YYYY-MM-DD)")
		days          = flag.Int("days", 30, "Number of days to spread transactions over")
		malformedRate = flag.Float64("malformed-rate", 0.05, "Fraction of records that are malformed")
		seed          = flag.Int64("seed", time.Now().UnixNano(), "Random seed for reproducible generation")
	)
	flag.Parse()

	start, err := time.Parse("2006-01-02", *startDate)
	if err != nil {
		log.Fatalf("Invalid start date: %v", err)
	}
	if *malformedRate < 0 || *malformedRate > 1 {
		log.Fatalf("Malformed rate must be between 0 and 1")
	}

	generator := &SalesGenerator{
		Count:         *count,
		StartDate:     start,
		Days:          *days,
		MalformedRate: *malformedRate,
		Seed:          *seed,
	}

	if err := generator.WriteFile(*output); err != nil {
		log.Fatalf("Generation failed: %v", err)
	}
	fmt.Printf("Generated %d records in %s (seed %d)\n", *count, *output, *seed)
}

// WriteFile generates the dataset and writes it with a header line.
func (g *SalesGenerator) WriteFile(path string) error {
	rng := rand.New(rand.NewSource(g.Seed))

	var b strings.Builder
	b.WriteString("TransactionID|Date|ProductID|ProductName|Quantity|UnitPrice|CustomerID|Region\n")

	for i := 0; i < g.Count; i++ {
		if rng.Float64() < g.MalformedRate {
			b.WriteString(g.malformedLine(rng, i))
		} else {
			b.WriteString(g.validLine(rng, i))
		}
		b.WriteString("\n")
	}

	return os.WriteFile(path, []byte(b.String()), 0644)
}

func (g *SalesGenerator) validLine(rng *rand.Rand, i int) string {
	product := products[rng.Intn(len(products))]
	date := g.StartDate.AddDate(0, 0, rng.Intn(g.Days))
	quantity := rng.Intn(50) + 1
	price := decimal.NewFromInt(int64(rng.Intn(20000) + 1)).Div(decimal.NewFromInt(100))

	return fmt.Sprintf("T%04d|%s|%s|%s|%d|%s|C%03d|%s",
		i+1,
		date.Format("2006-01-02"),
		product.ID,
		product.Name,
		quantity,
		price.StringFixed(2),
		rng.Intn(200)+1,
		regions[rng.Intn(len(regions))],
	)
}

func (g *SalesGenerator) malformedLine(rng *rand.Rand, i int) string {
	date := g.StartDate.Format("2006-01-02")
	switch rng.Intn(6) {
	case 0: // too few fields
		return fmt.Sprintf("T%04d|%s|P101|Widget|5|9.99", i+1, date)
	case 1: // non-numeric quantity
		return fmt.Sprintf("T%04d|%s|P101|Widget|many|9.99|C001|North", i+1, date)
	case 2: // zero quantity
		return fmt.Sprintf("T%04d|%s|P101|Widget|0|9.99|C001|North", i+1, date)
	case 3: // bad transaction prefix
		return fmt.Sprintf("X%04d|%s|P101|Widget|5|9.99|C001|North", i+1, date)
	case 4: // empty customer
		return fmt.Sprintf("T%04d|%s|P101|Widget|5|9.99||North", i+1, date)
	default: // blank region
		return fmt.Sprintf("T%04d|%s|P101|Widget|5|9.99|C001|  ", i+1, date)
	}
}
