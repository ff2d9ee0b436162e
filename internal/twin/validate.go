package twin

import (
	"errors"
	"fmt"
)

// Validate reports every invariant violation in d as one joined error.
func (d *Data) Validate() error {
	var errs []error
	if len(d.Stations) == 0 {
		errs = append(errs, errors.New("no stations"))
	}
	ids := make(map[int]bool, len(d.Stations))
	codes := make(map[string]bool, len(d.Stations))
	for i, s := range d.Stations {
		if ids[s.ID] {
			errs = append(errs, fmt.Errorf("station %d: duplicate id", s.ID))
		}
		ids[s.ID] = true
		if codes[s.Code] {
			errs = append(errs, fmt.Errorf("station %d: duplicate code %q", s.ID, s.Code))
		}
		codes[s.Code] = true
		if i > 0 && s.Chainage <= d.Stations[i-1].Chainage {
			errs = append(errs, fmt.Errorf("station %s: chainage %.3f not after %.3f", s.Code, s.Chainage, d.Stations[i-1].Chainage))
		}
		if s.Passengers < 0 {
			errs = append(errs, fmt.Errorf("station %s: negative passengers", s.Code))
		}
	}
	trains := make(map[string]bool, len(d.Trains))
	for _, t := range d.Trains {
		if trains[t.ID] {
			errs = append(errs, fmt.Errorf("train %s: duplicate id", t.ID))
		}
		trains[t.ID] = true
		if !t.Status.Valid() {
			errs = append(errs, fmt.Errorf("train %s: unknown status %q", t.ID, t.Status))
		}
		if t.CurrentStation < 0 || t.CurrentStation >= len(d.Stations) {
			errs = append(errs, fmt.Errorf("train %s: station index %d out of range", t.ID, t.CurrentStation))
		}
		if t.Speed < 0 || t.Mileage < 0 || t.Branding.HoursRemaining < 0 {
			errs = append(errs, fmt.Errorf("train %s: negative speed, mileage or branding hours", t.ID))
		}
		pct := []struct {
			name string
			v    int
		}{{"health", t.Health}, {"doors", t.Doors}, {"braking", t.Braking}, {"hvac", t.HVAC}}
		for _, p := range pct {
			if p.v < 0 || p.v > 100 {
				errs = append(errs, fmt.Errorf("train %s: %s %d outside [0,100]", t.ID, p.name, p.v))
			}
		}
	}
	op := d.Operations
	if op.TotalTrains < 0 {
		errs = append(errs, fmt.Errorf("total trains %d is negative", op.TotalTrains))
	}
	if op.ActiveTrains < 0 || op.ActiveTrains > max(op.TotalTrains, 0) {
		errs = append(errs, fmt.Errorf("active trains %d outside [0,%d]", op.ActiveTrains, max(op.TotalTrains, 0)))
	}
	if op.PassengerLoad < MinPassengerLoad || op.PassengerLoad > MaxPassengerLoad {
		errs = append(errs, fmt.Errorf("passenger load %d outside [%d,%d]", op.PassengerLoad, MinPassengerLoad, MaxPassengerLoad))
	}
	if op.Punctuality < MinPunctuality || op.Punctuality > MaxPunctuality {
		errs = append(errs, fmt.Errorf("punctuality %.2f outside [%.0f,%.0f]", op.Punctuality, MinPunctuality, MaxPunctuality))
	}
	return errors.Join(errs...)
}

// Normalize clamps bounded fields into range in place. It cannot repair
// ordering or uniqueness problems; Validate still reports those.
func (d *Data) Normalize() {
	last := d.LastStation()
	if last < 0 {
		last = 0
	}
	for i := range d.Trains {
		t := &d.Trains[i]
		t.CurrentStation = ClampInt(t.CurrentStation, 0, last)
		t.Speed = max(t.Speed, 0)
		t.Mileage = max(t.Mileage, 0)
		t.Branding.HoursRemaining = max(t.Branding.HoursRemaining, 0)
		t.Health = ClampInt(t.Health, 0, 100)
		t.Doors = ClampInt(t.Doors, 0, 100)
		t.Braking = ClampInt(t.Braking, 0, 100)
		t.HVAC = ClampInt(t.HVAC, 0, 100)
	}
	d.Operations.PassengerLoad = ClampInt(d.Operations.PassengerLoad, MinPassengerLoad, MaxPassengerLoad)
	d.Operations.Punctuality = ClampFloat(d.Operations.Punctuality, MinPunctuality, MaxPunctuality)
}

// ClampInt limits v to [lo, hi].
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampFloat limits v to [lo, hi].
func ClampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
