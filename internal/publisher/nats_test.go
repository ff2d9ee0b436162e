package publisher

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"google.golang.org/protobuf/proto"

	gtfs "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"

	"metro-twin/internal/feed"
	"metro-twin/internal/render"
	"metro-twin/internal/twin"
)

type msg struct {
	subject string
	data    []byte
}

type fakeConn struct {
	msgs []msg
	err  error
}

func (c *fakeConn) Publish(subject string, data []byte) error {
	if c.err != nil {
		return c.err
	}
	c.msgs = append(c.msgs, msg{subject, data})
	return nil
}

type countingMetrics struct{ ok, errs, observed int }

func (m *countingMetrics) NATSPublishedInc()            { m.ok++ }
func (m *countingMetrics) NATSPublishErrInc()           { m.errs++ }
func (m *countingMetrics) PublishObserve(time.Duration) { m.observed++ }
func (m *countingMetrics) NATSSetConnected(bool)        {}

func TestSubjectToken(t *testing.T) {
	tests := map[string]string{
		"route-map":   "route-map",
		" twin ":      "twin",
		"a.b":         "a_b",
		"x > y":       "x___y",
		"":            "_",
		"kmrl/phase1": "kmrl_phase1",
	}
	for in, want := range tests {
		if got := subjectToken(in); got != want {
			t.Errorf("subjectToken(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPublishFrame(t *testing.T) {
	conn := &fakeConn{}
	m := &countingMetrics{}
	p := New(conn, "twin", false, m)

	f := render.Frame{View: render.RouteMap}
	f.Text("stationDetails", "Aluva")
	if err := p.PublishFrame(f); err != nil {
		t.Fatalf("PublishFrame: %v", err)
	}
	if err := p.PublishFrame(render.Clock(time.Unix(0, 0), time.UTC)); err != nil {
		t.Fatalf("PublishFrame clock: %v", err)
	}

	if len(conn.msgs) != 2 {
		t.Fatalf("published %d messages", len(conn.msgs))
	}
	if conn.msgs[0].subject != "twin.frames.route-map" || conn.msgs[1].subject != "twin.frames.global" {
		t.Errorf("subjects = %s, %s", conn.msgs[0].subject, conn.msgs[1].subject)
	}
	var got render.Frame
	if err := json.Unmarshal(conn.msgs[0].data, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.View != render.RouteMap || got.Content[0].Region != "stationDetails" {
		t.Errorf("decoded frame = %+v", got)
	}
	if m.ok != 2 || m.observed != 2 {
		t.Errorf("metrics = %+v", m)
	}
}

func TestPublishVehiclePositions(t *testing.T) {
	conn := &fakeConn{}
	p := New(conn, "kmrl", false, nil)
	if err := p.PublishVehiclePositions(feed.VehiclePositions(twin.Seed(), time.Unix(100, 0))); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if conn.msgs[0].subject != "kmrl.gtfsrt.vehicle_positions" {
		t.Errorf("subject = %s", conn.msgs[0].subject)
	}
	var fm gtfs.FeedMessage
	if err := proto.Unmarshal(conn.msgs[0].data, &fm); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(fm.Entity) != 2 {
		t.Errorf("entities = %d", len(fm.Entity))
	}
}

func TestPublishErrorCounted(t *testing.T) {
	boom := errors.New("boom")
	m := &countingMetrics{}
	p := New(&fakeConn{err: boom}, "twin", true, m)
	if err := p.PublishFrame(render.Frame{View: render.Depot}); !errors.Is(err, boom) {
		t.Errorf("err = %v", err)
	}
	if m.errs != 1 || m.ok != 0 {
		t.Errorf("metrics = %+v", m)
	}
}
