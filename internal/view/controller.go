// Package view holds the view state controller: which screen is active, the
// presentation state around it, and when each part of it is re-rendered.
package view

import (
	"log"
	"time"

	mmetrics "metro-twin/internal/metrics"
	"metro-twin/internal/render"
	"metro-twin/internal/surface"
	"metro-twin/internal/twin"
)

const (
	MinZoom = 0.5
	MaxZoom = 3.0
)

// FramePublisher receives every frame after it has been applied.
type FramePublisher interface {
	PublishFrame(f render.Frame) error
}

type Option func(*Controller)

func WithPublisher(p FramePublisher) Option { return func(c *Controller) { c.pub = p } }

func WithMetrics(m *mmetrics.Collector) Option { return func(c *Controller) { c.metrics = m } }

// WithLocation sets the time zone of the header clock.
func WithLocation(loc *time.Location) Option { return func(c *Controller) { c.loc = loc } }

// WithFleetSeed fixes the seed used to synthesize fleet filler trains.
func WithFleetSeed(seed int64) Option { return func(c *Controller) { c.state.FleetSeed = seed } }

// Controller owns the model and the active view. It is not safe for
// concurrent use: every method must run on the scheduler's thread.
type Controller struct {
	data    *twin.Data
	surf    surface.Surface
	pub     FramePublisher
	metrics *mmetrics.Collector
	loc     *time.Location

	current render.View
	state   render.State
}

func New(data *twin.Data, surf surface.Surface, opts ...Option) *Controller {
	c := &Controller{
		data:    data,
		surf:    surf,
		current: render.Dashboard,
		loc:     time.Local,
		state: render.State{
			Zoom:        1,
			FleetFilter: twin.FilterAll,
			FleetSeed:   1,
			Scenario:    twin.TrainFailure,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Init clears every active flag and enters the dashboard.
func (c *Controller) Init() {
	for _, v := range render.Views {
		c.surf.SetViewActive(v, false)
		c.surf.SetNavActive(v, false)
	}
	c.Switch(render.Dashboard)
}

func (c *Controller) Current() render.View { return c.current }

// Data is the live model. Callers on the scheduler thread may read it.
func (c *Controller) Data() *twin.Data { return c.data }

func (c *Controller) ZoomLevel() float64 { return c.state.Zoom }

func (c *Controller) FleetFilter() string { return c.state.FleetFilter }

// Switch makes v the active view and regenerates it from scratch. Switching
// to the active view just re-renders it. Unknown views are ignored.
func (c *Controller) Switch(v render.View) bool {
	if _, ok := render.ParseView(string(v)); !ok {
		log.Printf("ignoring switch to unknown view %q", v)
		return false
	}
	c.surf.SetViewActive(c.current, false)
	c.surf.SetNavActive(c.current, false)
	c.surf.SetViewActive(v, true)
	c.surf.SetNavActive(v, true)
	c.current = v

	switch v {
	case render.TrainFleet:
		c.state.FleetFilter = twin.FilterAll
	case render.Simulation:
		c.state.Scenario = twin.TrainFailure
	}
	c.apply(render.Render(v, c.data, c.state), "full")
	if c.metrics != nil {
		c.metrics.ViewSwitches.WithLabelValues(string(v)).Inc()
	}
	return true
}

// Refresh re-renders the parts of the active view that read fields. Views
// that do not read them stay as they are until next entered.
func (c *Controller) Refresh(fields twin.Field) {
	if !render.Depends(c.current, fields) {
		return
	}
	c.apply(render.RenderChanged(c.current, c.data, c.state, fields), "partial")
}

// FilterFleet re-renders the fleet grid showing only trains in status.
// Anything other than a known status shows the whole fleet.
func (c *Controller) FilterFleet(status string) {
	if !twin.TrainStatus(status).Valid() {
		status = twin.FilterAll
	}
	c.state.FleetFilter = status
	c.apply(render.Render(render.TrainFleet, c.data, c.state), "partial")
}

func (c *Controller) RefreshFleet() { c.FilterFleet(twin.FilterAll) }

// ShowStation replaces the station panel. It reports false for unknown ids.
func (c *Controller) ShowStation(id int) bool {
	st, ok := c.data.StationByID(id)
	if !ok {
		return false
	}
	c.apply(render.StationDetails(*st), "panel")
	return true
}

// ShowTrain opens the detail modal for a train. Fleet filler trains show
// their synthesized record; unknown ids show a placeholder.
func (c *Controller) ShowTrain(id string) {
	c.apply(render.TrainModal(c.current, c.lookupTrain(id)), "panel")
}

func (c *Controller) lookupTrain(id string) twin.Train {
	if t, ok := c.data.TrainByID(id); ok {
		return *t
	}
	for _, t := range twin.Fleet(c.data, c.state.FleetSeed) {
		if t.ID == id {
			return t
		}
	}
	return twin.PlaceholderTrain(id)
}

func (c *Controller) CloseModal() { c.apply(render.CloseModal(c.current), "panel") }

// Zoom scales the route map by factor, keeping the level in [MinZoom, MaxZoom].
func (c *Controller) Zoom(factor float64) {
	if factor <= 0 {
		return
	}
	c.setZoom(twin.ClampFloat(c.state.Zoom*factor, MinZoom, MaxZoom))
}

func (c *Controller) ResetZoom() { c.setZoom(1) }

func (c *Controller) setZoom(z float64) {
	c.state.Zoom = z
	f := render.Frame{View: render.RouteMap}
	f.Attr("routeMap", "transform", render.ZoomTransform(z))
	c.apply(f, "panel")
}

// SelectScenario fills the affected-asset list for a scenario type.
func (c *Controller) SelectScenario(t twin.ScenarioType) {
	c.state.Scenario = twin.Scenario{Type: t}.Normalized().Type
	c.apply(render.Render(render.Simulation, c.data, c.state), "partial")
}

func (c *Controller) SimulationStarted(twin.Scenario) { c.apply(render.SimulationRunning(), "panel") }

func (c *Controller) SimulationFinished(im twin.Impact) {
	c.apply(render.SimulationResult(im), "panel")
}

func (c *Controller) SimulationReset() { c.apply(render.SimulationReset(), "panel") }

// ShowTime updates the header clock. It belongs to no view.
func (c *Controller) ShowTime(now time.Time) { c.apply(render.Clock(now, c.loc), "clock") }

type liveCharts interface{ LiveCharts() int }

func (c *Controller) apply(f render.Frame, kind string) {
	if f.Empty() {
		return
	}
	skipped := surface.Apply(c.surf, f)
	if c.metrics != nil {
		c.metrics.Renders.WithLabelValues(string(f.View), kind).Inc()
		c.metrics.SkippedRegions.Add(float64(skipped))
		if lc, ok := c.surf.(liveCharts); ok {
			c.metrics.LiveCharts.Set(float64(lc.LiveCharts()))
		}
	}
	if c.pub != nil {
		if err := c.pub.PublishFrame(f); err != nil {
			log.Printf("publish frame for %s: %v", f.View, err)
		}
	}
}
