package db

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"metro-twin/internal/twin"
)

// Schema creates the seed tables Source reads.
//
//go:embed schema.sql
var Schema string

// EnsureSchema creates the seed tables if they do not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Source loads the model from a seed database. Rows override the built-in
// seed table by table; an empty table keeps the built-in values. It only
// reads and is used once at startup.
type Source struct {
	db *sql.DB
}

func NewSource(db *sql.DB) *Source { return &Source{db: db} }

func (s *Source) Load(ctx context.Context) (*twin.Data, error) {
	d := twin.Seed()

	stations, err := s.stations(ctx)
	if err != nil {
		return nil, err
	}
	if len(stations) > 0 {
		d.Stations = stations
	}

	trains, err := s.trains(ctx)
	if err != nil {
		return nil, err
	}
	if len(trains) > 0 {
		d.Trains = trains
	}

	op, err := s.operations(ctx)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, err
	default:
		d.Operations = op
	}

	d.Normalize()
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("seed database: %w", err)
	}
	return d, nil
}

func (s *Source) stations(ctx context.Context) ([]twin.Station, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, name, code, chainage, lat, lon, type, height, status, passengers
FROM stations ORDER BY chainage`)
	if err != nil {
		return nil, fmt.Errorf("query stations: %w", err)
	}
	defer rows.Close()

	var out []twin.Station
	for rows.Next() {
		var st twin.Station
		var typ, status string
		if err := rows.Scan(&st.ID, &st.Name, &st.Code, &st.Chainage, &st.Lat, &st.Lon, &typ, &st.Height, &status, &st.Passengers); err != nil {
			return nil, err
		}
		st.Type = twin.StationType(typ)
		st.Status = twin.StationStatus(status)
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s *Source) trains(ctx context.Context) ([]twin.Train, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, status, current_station, speed, health, mileage,
       COALESCE(advertiser, ''), COALESCE(branding_hours, 0),
       doors, braking, hvac
FROM trains ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query trains: %w", err)
	}
	defer rows.Close()

	var out []twin.Train
	for rows.Next() {
		var t twin.Train
		var status string
		if err := rows.Scan(&t.ID, &status, &t.CurrentStation, &t.Speed, &t.Health, &t.Mileage,
			&t.Branding.Advertiser, &t.Branding.HoursRemaining, &t.Doors, &t.Braking, &t.HVAC); err != nil {
			return nil, err
		}
		t.Status = twin.TrainStatus(status)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Source) operations(ctx context.Context) (twin.Operations, error) {
	var op twin.Operations
	err := s.db.QueryRowContext(ctx, `
SELECT total_trains, active_trains, passenger_load, daily_ridership, punctuality,
       incidents, revenue, energy_consumption, weather_condition, temperature, humidity
FROM operations LIMIT 1`).Scan(
		&op.TotalTrains, &op.ActiveTrains, &op.PassengerLoad, &op.DailyRidership, &op.Punctuality,
		&op.Incidents, &op.Revenue, &op.EnergyConsumption, &op.Weather.Condition, &op.Weather.Temperature, &op.Weather.Humidity)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return op, fmt.Errorf("query operations: %w", err)
	}
	return op, err
}
