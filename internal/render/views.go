package render

import (
	"fmt"
	"html/template"
	"math"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"metro-twin/internal/twin"
)

// State is the controller-owned presentation state renderers read besides
// the model.
type State struct {
	Zoom        float64
	FleetFilter string
	FleetSeed   int64
	Scenario    twin.ScenarioType
}

// Section is one independently re-renderable part of a view. Deps names the
// model fields it reads that the periodic tick can change; zero means the
// section only changes when the view is entered.
type Section struct {
	Name   string
	Deps   twin.Field
	Render func(d *twin.Data, s State, f *Frame)
}

var sections = map[View][]Section{
	Dashboard: {
		{Name: "metrics", Deps: twin.FieldOperations, Render: dashboardMetrics},
		{Name: "status", Render: dashboardStatus},
		{Name: "overview", Render: systemOverviewChart},
	},
	RouteMap: {
		{Name: "markers", Deps: twin.FieldTrainPositions, Render: routeMarkers},
	},
	TrainFleet: {
		{Name: "grid", Render: fleetGrid},
	},
	Depot: {
		{Name: "capacity", Render: depotCapacity},
		{Name: "bays", Render: bayLayout},
		{Name: "staff", Render: staffInfo},
	},
	Maintenance: {
		{Name: "queues", Render: maintenanceQueues},
		{Name: "trends", Render: healthTrendsChart},
	},
	Simulation: {
		{Name: "form", Render: scenarioForm},
	},
	Analytics: {
		{Name: "charts", Render: analyticsCharts},
		{Name: "kpis", Render: kpis},
	},
}

// Sections returns the sections of v in render order.
func Sections(v View) []Section { return sections[v] }

// Render regenerates the whole of view v.
func Render(v View, d *twin.Data, s State) Frame {
	f := Frame{View: v}
	for _, sec := range sections[v] {
		sec.Render(d, s, &f)
	}
	return f
}

// RenderChanged regenerates only the sections of v that read any of fields.
// The frame is empty when v does not depend on them.
func RenderChanged(v View, d *twin.Data, s State, fields twin.Field) Frame {
	f := Frame{View: v}
	for _, sec := range sections[v] {
		if sec.Deps&fields != 0 {
			sec.Render(d, s, &f)
		}
	}
	return f
}

// Depends reports whether any section of v reads one of fields.
func Depends(v View, fields twin.Field) bool {
	for _, sec := range sections[v] {
		if sec.Deps&fields != 0 {
			return true
		}
	}
	return false
}

const (
	colorTeal  = "#1FB8CD"
	colorSand  = "#FFC185"
	colorRust  = "#B4413C"
	colorGreen = "#22c55e"
)

func dashboardMetrics(d *twin.Data, _ State, f *Frame) {
	op := d.Operations
	f.Text("totalTrains", strconv.Itoa(op.TotalTrains))
	f.Text("activeTrains", strconv.Itoa(op.ActiveTrains))
	f.Text("passengerLoad", humanize.Comma(int64(op.PassengerLoad)))
	f.Text("punctuality", fmt.Sprintf("%.1f%%", op.Punctuality))
}

var weatherIcons = map[string]string{
	"sunny":  "☀️",
	"cloudy": "☁️",
	"rainy":  "🌧️",
	"stormy": "⛈️",
}

func dashboardStatus(d *twin.Data, _ State, f *Frame) {
	f.Set("statusList", exec("statusList", d.Systems))

	w := d.Operations.Weather
	icon, ok := weatherIcons[w.Condition]
	if !ok {
		icon = weatherIcons["sunny"]
	}
	f.Set("weatherInfo", exec("weather", struct {
		twin.Weather
		Icon string
	}{w, icon}))
	f.Set("incidentsList", exec("incidents", d.Operations.Incidents))
}

func systemOverviewChart(d *twin.Data, _ State, f *Frame) {
	op := d.Operations
	maint := d.Depot.MaintenanceBays
	standby := max(op.TotalTrains-op.ActiveTrains-maint, 0)
	f.Chart(ChartSpec{
		Slot:   "systemOverviewChart",
		Type:   Doughnut,
		Labels: []string{"Active Trains", "Maintenance", "Standby"},
		Series: []Series{{
			Data:   []float64{float64(op.ActiveTrains), float64(maint), float64(standby)},
			Colors: []string{colorTeal, colorSand, colorRust},
		}},
	})
}

type marker struct {
	ID    string
	Class string
	Left  float64
	Title string
	Label string
}

// markerLeft spreads station indices across 5%..95% of the map width.
func markerLeft(i, n int) float64 {
	if n <= 1 {
		return 5
	}
	return 5 + float64(i)*90/float64(n-1)
}

func routeMarkers(d *twin.Data, s State, f *Frame) {
	n := len(d.Stations)
	stations := make([]marker, 0, n)
	for i, st := range d.Stations {
		stations = append(stations, marker{
			ID:    strconv.Itoa(st.ID),
			Class: string(st.Type),
			Left:  markerLeft(i, n),
			Title: fmt.Sprintf("%s (%s)", st.Name, st.Code),
			Label: st.Code,
		})
	}
	var trains []marker
	for _, t := range d.Trains {
		if t.Status != twin.InService {
			continue
		}
		idx := min(t.CurrentStation, n-1)
		trains = append(trains, marker{
			ID:    t.ID,
			Left:  markerLeft(idx, n),
			Title: fmt.Sprintf("%s - Speed: %d km/h", t.ID, t.Speed),
		})
	}
	f.Set("stationsContainer", exec("stations", stations))
	f.Set("trainsContainer", exec("trains", trains))
	f.Attr("routeMap", "transform", ZoomTransform(s.Zoom))
}

// ZoomTransform is the CSS transform for a map zoom level.
func ZoomTransform(zoom float64) string {
	if zoom == 0 {
		zoom = 1
	}
	return "scale(" + strconv.FormatFloat(zoom, 'g', 4, 64) + ")"
}

// StationDetails renders the side panel for one station. The panel is
// replaced wholesale on every call.
func StationDetails(st twin.Station) Frame {
	f := Frame{View: RouteMap}
	f.Set("stationDetails", exec("stationDetails", st))
	return f
}

func fleetGrid(d *twin.Data, s State, f *Frame) {
	trains := twin.FilterFleet(twin.Fleet(d, s.FleetSeed), s.FleetFilter)
	f.Set("fleetGrid", exec("fleetGrid", trains))
}

// TrainModal renders the detail modal for a train and makes it visible.
func TrainModal(v View, t twin.Train) Frame {
	f := Frame{View: v}
	f.Text("trainModalTitle", t.ID+" - Detailed View")
	f.Set("trainModalBody", exec("trainModal", t))
	f.Attr("trainDetailsModal", "hidden", "false")
	return f
}

// CloseModal hides the train detail modal.
func CloseModal(v View) Frame {
	f := Frame{View: v}
	f.Attr("trainDetailsModal", "hidden", "true")
	return f
}

func depotCapacity(d *twin.Data, _ State, f *Frame) {
	dp := d.Depot
	f.Chart(ChartSpec{
		Slot:   "depotCapacityChart",
		Type:   Doughnut,
		Labels: []string{"Occupied", "Available"},
		Series: []Series{{
			Data:   []float64{float64(dp.CurrentOccupancy), float64(max(dp.TotalCapacity-dp.CurrentOccupancy, 0))},
			Colors: []string{colorSand, colorTeal},
		}},
	})
}

type bay struct {
	Number   int
	Class    string
	Occupant string
}

func bayLayout(d *twin.Data, _ State, f *Frame) {
	dp := d.Depot
	bays := make([]bay, 0, dp.TotalCapacity)
	for i := 1; i <= dp.TotalCapacity; i++ {
		b := bay{Number: i, Occupant: "Empty"}
		if i <= dp.CurrentOccupancy {
			b.Occupant = twin.TrainID(i)
			b.Class = "occupied"
			if i <= dp.MaintenanceBays {
				b.Class = "maintenance"
			}
		}
		bays = append(bays, b)
	}
	f.Set("bayLayout", exec("bays", bays))
}

type metric struct {
	Label string
	Value string
}

func staffInfo(d *twin.Data, _ State, f *Frame) {
	dp := d.Depot
	util := 0
	if dp.StaffTotal > 0 {
		util = int(math.Round(float64(dp.StaffCurrent) / float64(dp.StaffTotal) * 100))
	}
	f.Set("staffInfo", exec("metrics", []metric{
		{"Current Staff", strconv.Itoa(dp.StaffCurrent)},
		{"Total Capacity", strconv.Itoa(dp.StaffTotal)},
		{"Utilization", strconv.Itoa(util) + "%"},
	}))
	f.Set("operationsList", exec("activities", d.Activities))
}

func maintenanceQueues(d *twin.Data, _ State, f *Frame) {
	f.Set("maintenanceSchedule", exec("schedule", d.Maintenance))
	f.Set("priorityQueue", exec("priorities", d.Priorities))
	f.Set("crewAssignments", exec("crews", d.Crews))
}

func healthTrendsChart(_ *twin.Data, _ State, f *Frame) {
	f.Chart(ChartSpec{
		Slot:   "healthTrendsChart",
		Type:   Line,
		Labels: []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun"},
		Series: []Series{{
			Label:  "Fleet Health Average",
			Data:   []float64{92, 91, 93, 90, 92, 94},
			Colors: []string{colorTeal},
		}},
	})
}

// Option is one entry of the affected-asset dropdown.
type Option struct {
	Value string
	Text  string
}

// ScenarioOptions lists the assets a scenario type can affect.
func ScenarioOptions(d *twin.Data, t twin.ScenarioType) []Option {
	var opts []Option
	switch t {
	case twin.StationClosure:
		for _, st := range d.Stations {
			opts = append(opts, Option{st.Code, fmt.Sprintf("%s (%s)", st.Name, st.Code)})
		}
	case twin.MaintenanceDelay:
		opts = []Option{{"depot", "Muttom Depot"}, {"maintenance_bay", "Maintenance Bay"}}
	case twin.WeatherImpact:
		opts = []Option{{"heavy_rain", "Heavy Rain"}, {"strong_wind", "Strong Wind"}, {"fog", "Dense Fog"}}
	default:
		for _, tr := range d.Trains {
			opts = append(opts, Option{tr.ID, tr.ID})
		}
	}
	return opts
}

func scenarioForm(d *twin.Data, s State, f *Frame) {
	t := s.Scenario
	if t == "" {
		t = twin.TrainFailure
	}
	f.Set("affectedAsset", exec("options", ScenarioOptions(d, t)))
}

const (
	RunLabel     = "Run Simulation"
	RunningLabel = "Running..."
)

// SimulationRunning shows the busy label and loading placeholder.
func SimulationRunning() Frame {
	f := Frame{View: Simulation}
	f.Text("runSimulation", RunningLabel)
	f.Set("resultsContent", template.HTML(`<div class="loading">Running simulation...</div>`))
	return f
}

// SimulationResult shows a finished run and restores the trigger label.
func SimulationResult(im twin.Impact) Frame {
	f := Frame{View: Simulation}
	f.Set("resultsContent", exec("impact", im))
	f.Text("runSimulation", RunLabel)
	return f
}

// SimulationReset clears results and restores default form values.
func SimulationReset() Frame {
	f := Frame{View: Simulation}
	f.Set("resultsContent", template.HTML(`<p>Configure and run a simulation to see impact analysis.</p>`))
	f.Attr("scenarioDuration", "value", strconv.Itoa(twin.DefaultScenarioDuration))
	return f
}

func analyticsCharts(_ *twin.Data, _ State, f *Frame) {
	lo, hi := 95.0, 100.0
	f.Chart(ChartSpec{
		Slot:   "passengerFlowChart",
		Type:   Line,
		Labels: []string{"06:00", "08:00", "10:00", "12:00", "14:00", "16:00", "18:00", "20:00"},
		Series: []Series{{
			Label:  "Passenger Count",
			Data:   []float64{1200, 4500, 2800, 3200, 2100, 3800, 5200, 2900},
			Colors: []string{colorTeal},
			Fill:   true,
		}},
	})
	f.Chart(ChartSpec{
		Slot:   "serviceFrequencyChart",
		Type:   Bar,
		Labels: []string{"Peak Hours", "Off-Peak", "Late Night"},
		Series: []Series{{
			Label:  "Frequency (trains/hour)",
			Data:   []float64{12, 8, 4},
			Colors: []string{colorSand, colorTeal, colorRust},
		}},
	})
	f.Chart(ChartSpec{
		Slot:   "punctualityChart",
		Type:   Line,
		Labels: []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"},
		Series: []Series{{
			Label:  "Punctuality %",
			Data:   []float64{98.5, 97.8, 98.9, 98.2, 97.5, 99.1, 98.8},
			Colors: []string{colorGreen},
			Fill:   true,
		}},
		Min: &lo,
		Max: &hi,
	})
}

func kpis(d *twin.Data, _ State, f *Frame) {
	op := d.Operations
	f.Set("kpiList", exec("kpis", []metric{
		{"Daily Revenue", "₹" + humanize.Comma(int64(op.Revenue))},
		{"Energy Consumption", strconv.Itoa(op.EnergyConsumption) + " kWh"},
		{"Average Speed", "45 km/h"},
		{"Fleet Availability", "92%"},
		{"Customer Satisfaction", "4.6/5"},
		{"Environmental Impact", "-15% CO2"},
	}))
}

// Clock renders the header timestamp in loc.
func Clock(now time.Time, loc *time.Location) Frame {
	t := now.In(loc)
	var f Frame
	f.Set("currentTime", template.HTML(template.HTMLEscapeString(t.Format("Mon, 2 Jan 2006"))+"<br>"+t.Format("15:04:05")))
	return f
}
