// Package surface applies render frames to a display surface.
package surface

import (
	"html/template"
	"sort"
	"sync/atomic"

	"metro-twin/internal/render"
)

// Surface is what the controller renders into. Every setter reports whether
// the target was mounted; unmounted targets are skipped, never an error.
type Surface interface {
	SetContent(region string, html template.HTML) bool
	SetAttr(region, name, value string) bool
	DrawChart(spec render.ChartSpec) bool
	SetViewActive(v render.View, active bool)
	SetNavActive(v render.View, active bool)
}

// Apply writes every instruction of f to s and returns how many were skipped
// because their target is not mounted.
func Apply(s Surface, f render.Frame) (skipped int) {
	for _, c := range f.Content {
		if !s.SetContent(c.Region, c.HTML) {
			skipped++
		}
	}
	for _, a := range f.Attrs {
		if !s.SetAttr(a.Region, a.Name, a.Value) {
			skipped++
		}
	}
	for _, c := range f.Charts {
		if !s.DrawChart(c) {
			skipped++
		}
	}
	return skipped
}

// Chart is a live chart bound to a slot. Dispose releases it; a disposed
// chart must not be drawn again.
type Chart struct {
	ID       uint64
	Spec     render.ChartSpec
	disposed bool
}

func (c *Chart) Disposed() bool { return c.disposed }

var chartIDs atomic.Uint64

// Memory is an in-process surface. A fixed set of regions is mounted at
// construction; charts live in the registry keyed by slot id.
//
// Memory is not safe for concurrent use. It is owned by the event loop.
type Memory struct {
	mounted map[string]bool
	content map[string]template.HTML
	attrs   map[string]map[string]string
	charts  map[string]*Chart
	views   map[render.View]bool
	nav     map[render.View]bool

	created  int
	disposed int
}

// NewMemory mounts the given regions. Chart slots are regions too.
func NewMemory(regions ...string) *Memory {
	m := &Memory{
		mounted: make(map[string]bool, len(regions)),
		content: make(map[string]template.HTML),
		attrs:   make(map[string]map[string]string),
		charts:  make(map[string]*Chart),
		views:   make(map[render.View]bool),
		nav:     make(map[render.View]bool),
	}
	for _, r := range regions {
		m.mounted[r] = true
	}
	return m
}

// NewDashboard mounts every region the dashboard renders.
func NewDashboard() *Memory { return NewMemory(Regions...) }

func (m *Memory) Mount(region string)   { m.mounted[region] = true }
func (m *Memory) Unmount(region string) { delete(m.mounted, region); m.dispose(region) }

func (m *Memory) SetContent(region string, html template.HTML) bool {
	if !m.mounted[region] {
		return false
	}
	m.content[region] = html
	return true
}

func (m *Memory) SetAttr(region, name, value string) bool {
	if !m.mounted[region] {
		return false
	}
	a := m.attrs[region]
	if a == nil {
		a = make(map[string]string)
		m.attrs[region] = a
	}
	a[name] = value
	return true
}

// DrawChart disposes whatever chart the slot holds before binding a new one.
func (m *Memory) DrawChart(spec render.ChartSpec) bool {
	if !m.mounted[spec.Slot] {
		return false
	}
	m.dispose(spec.Slot)
	m.charts[spec.Slot] = &Chart{ID: chartIDs.Add(1), Spec: spec}
	m.created++
	return true
}

func (m *Memory) dispose(slot string) {
	if c, ok := m.charts[slot]; ok {
		c.disposed = true
		delete(m.charts, slot)
		m.disposed++
	}
}

func (m *Memory) SetViewActive(v render.View, active bool) { m.views[v] = active }
func (m *Memory) SetNavActive(v render.View, active bool)  { m.nav[v] = active }

func (m *Memory) Content(region string) (template.HTML, bool) {
	h, ok := m.content[region]
	return h, ok
}

func (m *Memory) Attr(region, name string) string { return m.attrs[region][name] }

func (m *Memory) Chart(slot string) (*Chart, bool) {
	c, ok := m.charts[slot]
	return c, ok
}

// LiveCharts is the number of charts created and not yet disposed.
func (m *Memory) LiveCharts() int { return m.created - m.disposed }

// ActiveViews returns the views currently flagged active, sorted.
func (m *Memory) ActiveViews() []render.View { return trueKeys(m.views) }

// ActiveNav returns the nav controls currently flagged active, sorted.
func (m *Memory) ActiveNav() []render.View { return trueKeys(m.nav) }

func trueKeys(m map[render.View]bool) []render.View {
	var out []render.View
	for v, ok := range m {
		if ok {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Snapshot is a copy of everything the surface currently shows.
type Snapshot struct {
	ActiveViews []render.View                `json:"activeViews"`
	ActiveNav   []render.View                `json:"activeNav"`
	Content     map[string]template.HTML     `json:"content"`
	Attrs       map[string]map[string]string `json:"attrs"`
	Charts      map[string]render.ChartSpec  `json:"charts"`
	LiveCharts  int                          `json:"liveCharts"`
}

func (m *Memory) Snapshot() Snapshot {
	s := Snapshot{
		ActiveViews: m.ActiveViews(),
		ActiveNav:   m.ActiveNav(),
		Content:     make(map[string]template.HTML, len(m.content)),
		Attrs:       make(map[string]map[string]string, len(m.attrs)),
		Charts:      make(map[string]render.ChartSpec, len(m.charts)),
		LiveCharts:  m.LiveCharts(),
	}
	for k, v := range m.content {
		s.Content[k] = v
	}
	for k, a := range m.attrs {
		c := make(map[string]string, len(a))
		for n, v := range a {
			c[n] = v
		}
		s.Attrs[k] = c
	}
	for k, c := range m.charts {
		s.Charts[k] = c.Spec
	}
	return s
}
