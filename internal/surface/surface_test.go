package surface

import (
	"testing"

	"metro-twin/internal/render"
)

func TestApplySkipsUnmountedRegions(t *testing.T) {
	m := NewMemory("totalTrains")
	var f render.Frame
	f.Text("totalTrains", "25")
	f.Text("activeTrains", "18")
	f.Attr("routeMap", "transform", "scale(1)")
	f.Chart(render.ChartSpec{Slot: "systemOverviewChart", Type: render.Doughnut})

	if skipped := Apply(m, f); skipped != 3 {
		t.Fatalf("skipped = %d, want 3", skipped)
	}
	if got, _ := m.Content("totalTrains"); got != "25" {
		t.Errorf("totalTrains = %q", got)
	}
	if _, ok := m.Content("activeTrains"); ok {
		t.Error("unmounted region should not hold content")
	}
	if m.LiveCharts() != 0 {
		t.Errorf("live charts = %d, want 0", m.LiveCharts())
	}
}

func TestDrawChartDisposesPrevious(t *testing.T) {
	m := NewMemory("healthTrendsChart")
	spec := render.ChartSpec{Slot: "healthTrendsChart", Type: render.Line}

	m.DrawChart(spec)
	first, _ := m.Chart("healthTrendsChart")
	for i := 0; i < 12; i++ {
		m.DrawChart(spec)
	}
	last, _ := m.Chart("healthTrendsChart")

	if !first.Disposed() {
		t.Error("first chart should have been disposed")
	}
	if last.Disposed() || last.ID == first.ID {
		t.Error("slot should hold a fresh live chart")
	}
	if m.LiveCharts() != 1 {
		t.Errorf("live charts = %d, want 1", m.LiveCharts())
	}
}

func TestUnmountDisposesChart(t *testing.T) {
	m := NewMemory("kpiList", "punctualityChart")
	m.DrawChart(render.ChartSpec{Slot: "punctualityChart", Type: render.Line})
	m.Unmount("punctualityChart")
	if m.LiveCharts() != 0 {
		t.Errorf("live charts = %d after unmount", m.LiveCharts())
	}
	if m.DrawChart(render.ChartSpec{Slot: "punctualityChart"}) {
		t.Error("drawing into an unmounted slot should be skipped")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	m := NewDashboard()
	m.SetAttr("routeMap", "transform", "scale(1)")
	snap := m.Snapshot()
	snap.Attrs["routeMap"]["transform"] = "scale(9)"
	if m.Attr("routeMap", "transform") != "scale(1)" {
		t.Error("snapshot shares attribute maps with the surface")
	}
}

func TestActiveViewsSorted(t *testing.T) {
	m := NewDashboard()
	m.SetViewActive(render.RouteMap, true)
	m.SetViewActive(render.Analytics, true)
	m.SetViewActive(render.Depot, false)
	got := m.ActiveViews()
	if len(got) != 2 || got[0] != render.Analytics || got[1] != render.RouteMap {
		t.Errorf("active views = %v", got)
	}
}
