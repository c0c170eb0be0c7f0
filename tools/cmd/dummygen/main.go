// tour-booking-gateway/tools/cmd/dummygen/main.go
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

func main() {
	n := flag.Int("n", 100, "number of rows (excluding header)")
	out := flag.String("out", "tests/data/dummy_bookings.csv", "output CSV path")
	flag.Parse()

	rand.Seed(time.Now().UnixNano())

	if err := os.MkdirAll("tests/data", 0o755); err != nil {
		log.Fatal(err)
	}
	f, err := os.Create(*out)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	tours := []string{"accra-city", "cape-coast", "kakum-canopy", "mole-safari", "volta-lake"}

	_ = w.Write([]string{"tour_id", "start_date", "duration_days", "adults", "children", "base_amount", "email"})
	for i := 0; i < *n; i++ {
		start := time.Now().AddDate(0, 0, 14+rand.Intn(180)).Format("2006-01-02")
		row := []string{
			tours[rand.Intn(len(tours))],
			start,
			fmt.Sprintf("%d", 2+rand.Intn(12)),
			fmt.Sprintf("%d", 1+rand.Intn(4)),
			fmt.Sprintf("%d", rand.Intn(3)),
			fmt.Sprintf("%d", (50+rand.Intn(950))*100),
			fmt.Sprintf("traveler%04d@example.com", rand.Intn(10000)),
		}
		if err := w.Write(row); err != nil {
			log.Fatal(err)
		}
	}
	log.Printf("generated %s (%d rows + header)", *out, *n)
}
