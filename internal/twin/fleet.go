package twin

import (
	"fmt"
	"math/rand"
)

// FilterAll is the identity filter for FilterFleet.
const FilterAll = "all"

// TrainID formats the fleet identifier for train number n (1-based).
func TrainID(n int) string { return fmt.Sprintf("KMRL-%03d", n) }

// Fleet returns the full fleet of Operations.TotalTrains trains in number
// order. Seed trains are returned as-is; the rest are synthesized from
// (seed, number) so repeated calls give the same fleet. Model trains outside
// the numbered range follow in model order.
func Fleet(d *Data, seed int64) []Train {
	total := max(d.Operations.TotalTrains, 0)
	out := make([]Train, 0, total+len(d.Trains))
	seen := make(map[string]bool, total)
	for n := 1; n <= total; n++ {
		id := TrainID(n)
		seen[id] = true
		if t, ok := d.TrainByID(id); ok {
			out = append(out, *t)
			continue
		}
		out = append(out, synthesize(id, n, seed, len(d.Stations)))
	}
	for _, t := range d.Trains {
		if !seen[t.ID] {
			out = append(out, t)
		}
	}
	return out
}

func synthesize(id string, n int, seed int64, stations int) Train {
	r := rand.New(rand.NewSource(seed*1000003 + int64(n)))
	t := Train{
		ID:      id,
		Status:  Maintenance,
		Health:  85 + r.Intn(15),
		Mileage: 50000 + r.Intn(200000),
		Doors:   85 + r.Intn(15),
		Braking: 85 + r.Intn(15),
		HVAC:    85 + r.Intn(15),
	}
	switch {
	case r.Float64() > 0.7:
		t.Status = InService
	case r.Float64() > 0.5:
		t.Status = Standby
	}
	if stations > 0 {
		t.CurrentStation = r.Intn(stations)
	}
	if t.Status == InService {
		t.Speed = r.Intn(80)
	}
	return t
}

// FilterFleet returns the trains whose status equals status, preserving
// order. FilterAll or an empty status returns trains unchanged.
func FilterFleet(trains []Train, status string) []Train {
	if status == "" || status == FilterAll {
		return trains
	}
	out := make([]Train, 0, len(trains))
	for _, t := range trains {
		if string(t.Status) == status {
			out = append(out, t)
		}
	}
	return out
}

// PlaceholderTrain is rendered for identifiers the model does not know.
func PlaceholderTrain(id string) Train {
	return Train{
		ID:      id,
		Status:  InService,
		Health:  90,
		Doors:   92,
		Braking: 88,
		HVAC:    94,
		Mileage: 125000,
	}
}
