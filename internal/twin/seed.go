package twin

import "context"

// Source supplies the initial model. It is read once at startup.
type Source interface {
	Load(ctx context.Context) (*Data, error)
}

// SeedSource serves the built-in KMRL Phase 1 seed.
type SeedSource struct{}

func (SeedSource) Load(context.Context) (*Data, error) { return Seed(), nil }

// StaticSource serves a copy of a fixed model, for fixtures.
type StaticSource struct{ Data *Data }

func (s StaticSource) Load(context.Context) (*Data, error) { return s.Data.Clone(), nil }

// Seed returns a fresh copy of the KMRL Phase 1 model (Aluva to Tripunithura).
func Seed() *Data {
	d := &Data{
		Meta: Meta{
			Version:       "1.0",
			System:        "KMRL Digital Twin",
			Coverage:      "Phase 1 - Aluva to Tripunithura",
			TotalLengthKm: 27.96,
		},
		Stations: []Station{
			{ID: 1, Name: "Aluva", Code: "ALV", Chainage: 0.098, Lat: 10.1098, Lon: 76.3496, Type: StationTerminal, Height: 12.5, Status: StationOperational, Passengers: 450},
			{ID: 2, Name: "Pulinchodu", Code: "PLN", Chainage: 1.827, Lat: 10.095120, Lon: 76.346661, Type: StationIntermediate, Height: 12.5, Status: StationOperational, Passengers: 120},
			{ID: 3, Name: "Companypady", Code: "CMP", Chainage: 2.796, Lat: 10.087293, Lon: 76.342840, Type: StationIntermediate, Height: 12.5, Status: StationOperational, Passengers: 89},
			{ID: 6, Name: "Kalamassery", Code: "KLM", Chainage: 6.768, Lat: 10.058400, Lon: 76.321926, Type: StationInterchange, Height: 12.5, Status: StationOperational, Passengers: 320},
			{ID: 11, Name: "Palarivattom", Code: "PLR", Chainage: 13.071, Lat: 10.015, Lon: 76.295, Type: StationIntermediate, Height: 12.5, Status: StationOperational, Passengers: 280},
			{ID: 14, Name: "Town Hall", Code: "TNH", Chainage: 15.711, Lat: 10.0, Lon: 76.28, Type: StationIntermediate, Height: 12.5, Status: StationOperational, Passengers: 380},
			{ID: 15, Name: "M.G Road", Code: "MGR", Chainage: 16.899, Lat: 9.995, Lon: 76.275, Type: StationIntermediate, Height: 12.5, Status: StationOperational, Passengers: 420},
			{ID: 20, Name: "Vyttila", Code: "VYT", Chainage: 22.447, Lat: 9.97, Lon: 76.25, Type: StationIntermediate, Height: 12.5, Status: StationOperational, Passengers: 350},
			{ID: 25, Name: "Tripunithura", Code: "TRP", Chainage: 27.96, Lat: 9.945, Lon: 76.225, Type: StationTerminal, Height: 12.5, Status: StationOperational, Passengers: 290},
		},
		Trains: []Train{
			{ID: "KMRL-001", Status: InService, CurrentStation: 5, Speed: 45, Health: 95, Mileage: 125000, Branding: Branding{Advertiser: "Kerala Tourism", HoursRemaining: 72}, Doors: 98, Braking: 96, HVAC: 94},
			{ID: "KMRL-002", Status: Maintenance, CurrentStation: 0, Speed: 0, Health: 87, Mileage: 180000, Doors: 85, Braking: 88, HVAC: 90},
			// The operations feed reports KMRL-003 past the last modelled
			// station; Normalize pins it to the southern terminal.
			{ID: "KMRL-003", Status: InService, CurrentStation: 12, Speed: 65, Health: 92, Mileage: 95000, Branding: Branding{Advertiser: "Samsung", HoursRemaining: 45}, Doors: 93, Braking: 95, HVAC: 89},
			{ID: "KMRL-004", Status: Standby, CurrentStation: 0, Speed: 0, Health: 89, Mileage: 150000, Branding: Branding{Advertiser: "Coca-Cola", HoursRemaining: 89}, Doors: 91, Braking: 87, HVAC: 92},
		},
		Operations: Operations{
			TotalTrains:       25,
			ActiveTrains:      18,
			PassengerLoad:     22500,
			DailyRidership:    85000,
			Punctuality:       98.2,
			Incidents:         0,
			Weather:           Weather{Condition: "sunny", Temperature: 28, Humidity: 85},
			Revenue:           145000,
			EnergyConsumption: 2400,
		},
		Depot: Depot{
			Name:             "Muttom Depot",
			TotalCapacity:    15,
			CurrentOccupancy: 12,
			MaintenanceBays:  4,
			CleaningBays:     3,
			StaffCurrent:     45,
			StaffTotal:       60,
		},
		Systems: []SystemStatus{
			{Label: "Train Operations", Status: "Operational", Level: "success"},
			{Label: "Power Supply", Status: "Normal", Level: "success"},
			{Label: "Communication", Status: "Active", Level: "success"},
			{Label: "Safety Systems", Status: "Online", Level: "success"},
			{Label: "Ticketing", Status: "Operational", Level: "success"},
		},
		Activities: []DepotActivity{
			{Activity: "Daily Cleaning", Status: "In Progress", Window: "06:00-08:00"},
			{Activity: "Routine Inspection", Status: "Scheduled", Window: "14:00-16:00"},
			{Activity: "Battery Maintenance", Status: "Completed", Window: "10:00-12:00"},
			{Activity: "HVAC Service", Status: "Pending", Window: "18:00-20:00"},
		},
		Maintenance: []MaintenanceItem{
			{TrainID: "KMRL-002", Type: "Major Service", Date: "2025-10-02", Priority: "High"},
			{TrainID: "KMRL-007", Type: "Brake Inspection", Date: "2025-10-03", Priority: "Medium"},
			{TrainID: "KMRL-015", Type: "HVAC Service", Date: "2025-10-04", Priority: "Low"},
			{TrainID: "KMRL-021", Type: "Door System Check", Date: "2025-10-05", Priority: "Medium"},
		},
		Priorities: []PriorityItem{
			{TrainID: "KMRL-002", Issue: "HVAC malfunction", Priority: "Critical", ETA: "2 hours"},
			{TrainID: "KMRL-018", Issue: "Door sensor fault", Priority: "High", ETA: "4 hours"},
			{TrainID: "KMRL-009", Issue: "Routine service", Priority: "Medium", ETA: "8 hours"},
		},
		Crews: []Crew{
			{Name: "Team Alpha", Lead: "Rajesh Kumar", Task: "KMRL-002 Service", Shift: "Morning"},
			{Name: "Team Beta", Lead: "Priya Nair", Task: "Routine Inspections", Shift: "Afternoon"},
			{Name: "Team Gamma", Lead: "Suresh Menon", Task: "Emergency Support", Shift: "Night"},
		},
	}
	d.Normalize()
	return d
}
