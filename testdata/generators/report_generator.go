// Command report_generator synthesizes monthly merchandise trade report
// CSV files for manual testing of the exportdash CLI.
//
// Usage:
//
//	go run report_generator.go -months=12 -output=report.csv
//	go run report_generator.go -months=6 -noise-ratio=0.5 -seed=42
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"
)

type commodity struct {
	code string
	name string
	// baseValue is the monthly export value the generator jitters around
	baseValue float64
}

// Curated commodities from the real Saskatchewan feed, so generated
// files exercise the exact-match color path.
var knownCommodities = []commodity{
	{"1001.99.00.11", "Red spring wheat, o/t certified organic, grade 1, o/t seed for sowing", 120_000_000},
	{"1001.99.00.12", "Red spring wheat, o/t certified organic, grade 2, o/t seed for sowing", 45_000_000},
	{"1001.19.00.00", "Durum wheat, o/t certified organic, o/t seed for sowing", 80_000_000},
	{"1205.10.00.10", "Rape/colza seeds,low erucic acid, for oil extraction, w/n broken", 150_000_000},
	{"2306.41.00.00", "Rape/colza seed oil-cake & o solid residue, low erucic acid, w/n ground/pellet", 60_000_000},
	{"1514.11.00.00", "Low erucic acid rape (canola) or colza oil and its fractions, crude", 95_000_000},
	{"1514.19.00.00", "Low erucic acid rape (canola) or colza oil and its fractions, refined", 30_000_000},
	{"1003.90.00.11", "Barley, for malting, o/t seed for sowing", 35_000_000},
	{"1003.90.00.19", "Barley, o/t certified organic, o/t seed for sowing or malting", 15_000_000},
	{"0713.10.90.10", "Peas, yellow, nes, dried, shelled, w/n skinned", 55_000_000},
	{"0713.10.90.20", "Peas, green, nes, dried, shelled, w/n skinned", 20_000_000},
	{"0713.40.00.00", "Lentils, dried, shelled, w/n skinned", 90_000_000},
	{"3104.20.00.10", "Potassium chloride, in packages weighing more than 10 kg", 250_000_000},
	{"4705.00.00.00", "Wood pulp, obtained by a combination of mechanical & chemical pulping processes", 25_000_000},
	{"1201.90.00.10", "Soya beans,o/t certified organic,for oil extraction,w/n broken,o/t seed f sowing", 40_000_000},
}

// Rows the classifier should drop as irrelevant noise.
var noiseCommodities = []commodity{
	{"8701.10.00.00", "Tractors, pedestrian controlled", 5_000_000},
	{"8432.31.00.00", "No-till direct seeders, planters and transplanters", 3_000_000},
	{"0102.29.00.00", "Live cattle, o/t purebred breeding animals", 12_000_000},
	{"2709.00.00.00", "Crude petroleum, not refined", 8_000_000},
}

var otherProvinces = []string{"Alberta", "Manitoba", "Ontario"}

func main() {
	var (
		months     = flag.Int("months", 12, "number of months to generate, ending at start-month")
		startMonth = flag.String("start-month", "2024-01", "first month (YYYY-MM)")
		province   = flag.String("province", "Saskatchewan", "primary province for generated rows")
		noiseRatio = flag.Float64("noise-ratio", 0.3, "fraction of extra unclassifiable rows per month")
		nullRatio  = flag.Float64("null-ratio", 0.05, "fraction of rows with a blank value field")
		seed       = flag.Int64("seed", 0, "random seed (0 uses the current time)")
		output     = flag.String("output", "report.csv", "output CSV path")
	)
	flag.Parse()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))

	start, err := time.Parse("2006-01", *startMonth)
	if err != nil {
		log.Fatalf("invalid start-month %q: %v", *startMonth, err)
	}

	file, err := os.Create(*output)
	if err != nil {
		log.Fatalf("failed to create output file: %v", err)
	}
	defer file.Close()

	// Reports open with a title line the parser skips, then headers.
	fmt.Fprintln(file, "Monthly Merchandise Trade Report")

	writer := csv.NewWriter(file)
	defer writer.Flush()

	headers := []string{"Commodity", "Province", "Period", "Value ($)", "Quantity"}
	if err := writer.Write(headers); err != nil {
		log.Fatalf("failed to write headers: %v", err)
	}

	rows := 0
	for m := 0; m < *months; m++ {
		period := start.AddDate(0, m, 0).Format("2006-01")

		for _, c := range knownCommodities {
			rows += writeRow(writer, rng, c, *province, period, *nullRatio)
		}
		for _, c := range noiseCommodities {
			if rng.Float64() < *noiseRatio {
				rows += writeRow(writer, rng, c, *province, period, *nullRatio)
			}
		}
		// A few rows from other provinces, which the parser filters out
		for _, other := range otherProvinces {
			c := knownCommodities[rng.Intn(len(knownCommodities))]
			rows += writeRow(writer, rng, c, other, period, *nullRatio)
		}
	}

	fmt.Printf("Generated %d rows over %d months to %s (seed %d)\n", rows, *months, *output, *seed)
}

func writeRow(writer *csv.Writer, rng *rand.Rand, c commodity, province, period string, nullRatio float64) int {
	// Jitter the value within ±40% of the base
	value := c.baseValue * (0.6 + rng.Float64()*0.8)
	quantity := value / (200 + rng.Float64()*600)

	valueField := fmt.Sprintf("%.0f", value)
	if rng.Float64() < nullRatio {
		valueField = ""
	}

	row := []string{
		fmt.Sprintf("%s - %s", c.code, c.name),
		province,
		period,
		valueField,
		fmt.Sprintf("%.0f", quantity),
	}
	if err := writer.Write(row); err != nil {
		log.Fatalf("failed to write row: %v", err)
	}
	return 1
}
