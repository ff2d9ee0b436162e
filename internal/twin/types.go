package twin

type StationType string

const (
	StationTerminal     StationType = "terminal"
	StationIntermediate StationType = "intermediate"
	StationInterchange  StationType = "interchange"
)

type StationStatus string

const (
	StationOperational StationStatus = "operational"
	StationClosed      StationStatus = "closed"
	StationMaintenance StationStatus = "maintenance"
)

type TrainStatus string

const (
	InService   TrainStatus = "in_service"
	Maintenance TrainStatus = "maintenance"
	Standby     TrainStatus = "standby"
)

// Valid reports whether s is one of the known train statuses.
func (s TrainStatus) Valid() bool {
	switch s {
	case InService, Maintenance, Standby:
		return true
	}
	return false
}

type Meta struct {
	Version       string  `json:"version"`
	System        string  `json:"system"`
	Coverage      string  `json:"coverage"`
	TotalLengthKm float64 `json:"totalLengthKm"`
}

type Station struct {
	ID         int           `json:"id"`
	Name       string        `json:"name"`
	Code       string        `json:"code"`
	Chainage   float64       `json:"chainage"` // km from the origin terminal
	Lat        float64       `json:"lat"`
	Lon        float64       `json:"lon"`
	Type       StationType   `json:"type"`
	Height     float64       `json:"height"` // platform height, meters
	Status     StationStatus `json:"status"`
	Passengers int           `json:"passengers"`
}

type Branding struct {
	Advertiser     string `json:"advertiser,omitempty"` // empty when unbranded
	HoursRemaining int    `json:"hoursRemaining"`
}

type Train struct {
	ID             string      `json:"id"`
	Status         TrainStatus `json:"status"`
	CurrentStation int         `json:"currentStation"` // index into Data.Stations
	Speed          int         `json:"speed"`          // km/h
	Health         int         `json:"health"`
	Doors          int         `json:"doors"`
	Braking        int         `json:"braking"`
	HVAC           int         `json:"hvac"`
	Mileage        int         `json:"mileage"` // km
	Branding       Branding    `json:"branding"`
}

type Weather struct {
	Condition   string `json:"condition"`
	Temperature int    `json:"temperature"`
	Humidity    int    `json:"humidity"`
}

// Operations is the live aggregate snapshot mutated by the periodic tick.
type Operations struct {
	TotalTrains       int     `json:"totalTrains"`
	ActiveTrains      int     `json:"activeTrains"`
	PassengerLoad     int     `json:"passengerLoad"`
	DailyRidership    int     `json:"dailyRidership"`
	Punctuality       float64 `json:"punctuality"`
	Incidents         int     `json:"incidents"`
	Weather           Weather `json:"weather"`
	Revenue           int     `json:"revenue"`
	EnergyConsumption int     `json:"energyConsumption"` // kWh
}

const (
	MinPassengerLoad = 15000
	MaxPassengerLoad = 30000
	MinPunctuality   = 95.0
	MaxPunctuality   = 100.0
)

type Depot struct {
	Name             string `json:"name"`
	TotalCapacity    int    `json:"totalCapacity"`
	CurrentOccupancy int    `json:"currentOccupancy"`
	MaintenanceBays  int    `json:"maintenanceBays"`
	CleaningBays     int    `json:"cleaningBays"`
	StaffCurrent     int    `json:"staffCurrent"`
	StaffTotal       int    `json:"staffTotal"`
}

type SystemStatus struct {
	Label  string `json:"label"`
	Status string `json:"status"`
	Level  string `json:"level"`
}

type DepotActivity struct {
	Activity string `json:"activity"`
	Status   string `json:"status"`
	Window   string `json:"window"`
}

type MaintenanceItem struct {
	TrainID  string `json:"trainId"`
	Type     string `json:"type"`
	Date     string `json:"date"`
	Priority string `json:"priority"`
}

type PriorityItem struct {
	TrainID  string `json:"trainId"`
	Issue    string `json:"issue"`
	Priority string `json:"priority"`
	ETA      string `json:"eta"`
}

type Crew struct {
	Name  string `json:"name"`
	Lead  string `json:"lead"`
	Task  string `json:"task"`
	Shift string `json:"shift"`
}

// Data is the whole in-memory model. It is built once at startup and only
// mutated in place afterwards; trains and stations are never added or removed.
type Data struct {
	Meta        Meta              `json:"meta"`
	Stations    []Station         `json:"stations"` // ordered by chainage
	Trains      []Train           `json:"trains"`
	Operations  Operations        `json:"operations"`
	Depot       Depot             `json:"depot"`
	Systems     []SystemStatus    `json:"systems"`
	Activities  []DepotActivity   `json:"activities"`
	Maintenance []MaintenanceItem `json:"maintenance"`
	Priorities  []PriorityItem    `json:"priorities"`
	Crews       []Crew            `json:"crews"`
}

// Field is a bitset naming the parts of Data a mutation touched.
type Field uint8

const (
	FieldOperations Field = 1 << iota
	FieldTrainPositions
)

func (f Field) Has(o Field) bool { return f&o != 0 }

func (d *Data) LastStation() int { return len(d.Stations) - 1 }

func (d *Data) TrainByID(id string) (*Train, bool) {
	for i := range d.Trains {
		if d.Trains[i].ID == id {
			return &d.Trains[i], true
		}
	}
	return nil, false
}

func (d *Data) StationByID(id int) (*Station, bool) {
	for i := range d.Stations {
		if d.Stations[i].ID == id {
			return &d.Stations[i], true
		}
	}
	return nil, false
}

// Clone returns a deep copy of d.
func (d *Data) Clone() *Data {
	c := *d
	c.Stations = append([]Station(nil), d.Stations...)
	c.Trains = append([]Train(nil), d.Trains...)
	c.Systems = append([]SystemStatus(nil), d.Systems...)
	c.Activities = append([]DepotActivity(nil), d.Activities...)
	c.Maintenance = append([]MaintenanceItem(nil), d.Maintenance...)
	c.Priorities = append([]PriorityItem(nil), d.Priorities...)
	c.Crews = append([]Crew(nil), d.Crews...)
	return &c
}
