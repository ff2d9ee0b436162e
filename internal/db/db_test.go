package db

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"metro-twin/internal/twin"
)

func TestDriver(t *testing.T) {
	tests := map[string]string{
		"postgres://u@localhost/kmrl":   "pgx",
		"PostgreSQL://u@localhost/kmrl": "pgx",
		"file:seed.db?mode=ro":          "sqlite",
		":memory:":                      "sqlite",
		"/var/lib/twin/seed.db":         "sqlite",
	}
	for dsn, want := range tests {
		if got := Driver(dsn); got != want {
			t.Errorf("Driver(%q) = %s, want %s", dsn, got, want)
		}
	}
}

func TestWithDBName(t *testing.T) {
	tests := []struct {
		dsn, name, want string
		wantErr         bool
	}{
		{"postgres://u:p@db:5432/postgres?sslmode=disable", "kmrl_line1", "postgres://u:p@db:5432/kmrl_line1?sslmode=disable", false},
		{"postgresql://db/x", "/y", "postgresql://db/y", false},
		{"u@db:5432/x", "kmrl", "postgres://u@db:5432/kmrl", false},
		{"", "kmrl", "", true},
		{"postgres://db/x", " ", "", true},
		{"mysql://db/x", "kmrl", "", true},
		{"/var/lib/twin/seed.db", "kmrl", "", true},
		{"file:seed.db", "kmrl", "", true},
		{":memory:", "kmrl", "", true},
	}
	for _, tt := range tests {
		got, err := WithDBName(tt.dsn, tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("WithDBName(%q, %q) err = %v", tt.dsn, tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("WithDBName(%q, %q) = %q, want %q", tt.dsn, tt.name, got, tt.want)
		}
	}
}

func openSeedDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	ctx := context.Background()
	if err := Ping(ctx, db); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if err := EnsureSchema(ctx, db); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	return db
}

func TestSourceEmptyTablesKeepSeed(t *testing.T) {
	db := openSeedDB(t)
	d, err := NewSource(db).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	seed := twin.Seed()
	if len(d.Stations) != len(seed.Stations) || len(d.Trains) != len(seed.Trains) {
		t.Errorf("got %d stations, %d trains", len(d.Stations), len(d.Trains))
	}
	if d.Operations != seed.Operations {
		t.Errorf("operations = %+v", d.Operations)
	}
}

func TestSourceOverridesSeed(t *testing.T) {
	db := openSeedDB(t)
	ctx := context.Background()
	stmts := []string{
		`INSERT INTO stations VALUES (1, 'Aluva', 'ALV', 0.1, 10.1098, 76.3496, 'terminal', 12.5, 'operational', 10)`,
		`INSERT INTO stations VALUES (2, 'Edapally', 'EDP', 10.2, 10.025, 76.308, 'intermediate', 12.5, 'closed', 0)`,
		`INSERT INTO stations VALUES (3, 'Petta', 'PET', 25.0, 9.95, 76.32, 'terminal', 12.5, 'operational', 40)`,
		`INSERT INTO trains VALUES ('KMRL-010', 'in_service', 7, 40, 93, 99000, 'Milma', 12, 95, 94, 93)`,
		`INSERT INTO trains VALUES ('KMRL-011', 'standby', 0, 0, 88, 101000, NULL, NULL, 90, 90, 90)`,
		`INSERT INTO operations VALUES (20, 12, 50000, 70000, 97.5, 1, 120000, 2000, 'rainy', 26, 90)`,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			t.Fatalf("%s: %v", s, err)
		}
	}

	d, err := NewSource(db).Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(d.Stations) != 3 || d.Stations[1].Code != "EDP" || d.Stations[1].Status != twin.StationClosed {
		t.Errorf("stations = %+v", d.Stations)
	}
	tr, ok := d.TrainByID("KMRL-010")
	if !ok {
		t.Fatal("KMRL-010 missing")
	}
	if tr.CurrentStation != 2 {
		t.Errorf("station index should be clamped to the last station, got %d", tr.CurrentStation)
	}
	if tr.Branding.Advertiser != "Milma" {
		t.Errorf("branding = %+v", tr.Branding)
	}
	if tr, _ := d.TrainByID("KMRL-011"); tr.Branding.Advertiser != "" {
		t.Errorf("NULL advertiser should read as unbranded, got %q", tr.Branding.Advertiser)
	}
	if d.Operations.PassengerLoad != twin.MaxPassengerLoad || d.Operations.Weather.Condition != "rainy" {
		t.Errorf("operations = %+v", d.Operations)
	}
}

func TestSourceRejectsInvalidRows(t *testing.T) {
	db := openSeedDB(t)
	ctx := context.Background()
	if _, err := db.ExecContext(ctx, `INSERT INTO trains VALUES ('KMRL-020', 'parked', 0, 0, 90, 0, NULL, NULL, 90, 90, 90)`); err != nil {
		t.Fatal(err)
	}
	_, err := NewSource(db).Load(ctx)
	if err == nil || !strings.Contains(err.Error(), "unknown status") {
		t.Errorf("err = %v", err)
	}
}

func TestSourceMissingTables(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if _, err := NewSource(db).Load(context.Background()); err == nil {
		t.Error("missing tables should fail the load")
	}
}

func TestSourceRejectsNegativeTrainCount(t *testing.T) {
	db := openSeedDB(t)
	ctx := context.Background()
	if _, err := db.ExecContext(ctx, `INSERT INTO operations VALUES (-1, 0, 22500, 70000, 97.5, 1, 120000, 2000, 'sunny', 28, 70)`); err != nil {
		t.Fatal(err)
	}
	_, err := NewSource(db).Load(ctx)
	if err == nil || !strings.Contains(err.Error(), "total trains -1") {
		t.Errorf("err = %v", err)
	}
}

func TestSourceTrainsOutsideNumberedFleet(t *testing.T) {
	db := openSeedDB(t)
	ctx := context.Background()
	stmts := []string{
		`INSERT INTO trains VALUES ('KMRL-030', 'maintenance', 0, 0, 80, 210000, NULL, NULL, 85, 86, 87)`,
		`INSERT INTO trains VALUES ('KMRL-001', 'in_service', 3, 50, 96, 126000, NULL, NULL, 95, 95, 95)`,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			t.Fatalf("%s: %v", s, err)
		}
	}
	d, err := NewSource(db).Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	fleet := twin.FilterFleet(twin.Fleet(d, 1), twin.FilterAll)
	if len(fleet) != d.Operations.TotalTrains+1 {
		t.Errorf("fleet size = %d, want %d", len(fleet), d.Operations.TotalTrains+1)
	}
	if last := fleet[len(fleet)-1]; last.ID != "KMRL-030" || last.Status != twin.Maintenance {
		t.Errorf("last fleet train = %+v", last)
	}
}
