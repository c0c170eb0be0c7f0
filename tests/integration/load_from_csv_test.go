// tour-booking-gateway/tests/integration/load_from_csv_test.go
package integration

import (
	"encoding/csv"
	"os"
	"strconv"
	"testing"

	"github.com/example/tour-booking-gateway/internal/session"
)

func TestLoadFromCSV(t *testing.T) {
	f, err := os.Open("../data/dummy_bookings.csv")
	if err != nil { t.Skip("generate csv first via dummygen") }
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil { t.Fatal(err) }
	if len(records) < 2 {
		t.Fatalf("expected >1 rows, got %d", len(records))
	}

	// every generated row must build a session with a consistent total
	for _, row := range records[1:] {
		duration, _ := strconv.Atoi(row[2])
		adults, _ := strconv.Atoi(row[3])
		children, _ := strconv.Atoi(row[4])
		base, _ := strconv.ParseInt(row[5], 10, 64)

		s := session.New("test", row[0], duration, base, 0.3)
		if err := s.SetTripDetails(row[1], session.Party{Adults: adults, Children: children}); err != nil {
			t.Fatalf("row %v: %v", row, err)
		}
		if len(s.Travelers) != adults+children {
			t.Fatalf("row %v: traveler count %d", row, len(s.Travelers))
		}
		if s.Pricing.TotalAmount < base*int64(adults) {
			t.Fatalf("row %v: total %d below adult fare", row, s.Pricing.TotalAmount)
		}
	}
}
