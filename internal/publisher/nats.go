package publisher

import (
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	gtfs "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"

	"metro-twin/internal/feed"
	"metro-twin/internal/render"
)

// Conn is the part of *nats.Conn the publisher needs.
type Conn interface {
	Publish(subject string, data []byte) error
}

type NATSPublisher struct {
	nc          *nats.Conn
	conn        Conn
	prefix      string
	logSubjects bool
	metrics     PublisherMetrics
}

type PublisherMetrics interface {
	NATSPublishedInc()
	NATSPublishErrInc()
	PublishObserve(d time.Duration)
	NATSSetConnected(connected bool)
}

func NewNATSPublisher(url, subjectPrefix string, logSubjects bool, m PublisherMetrics) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("metro-twin"),
		nats.DisconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			log.Printf("nats disconnected")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(true)
			}
			log.Printf("nats reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			log.Printf("nats closed")
		}),
	)
	if err != nil {
		return nil, err
	}
	if m != nil {
		m.NATSSetConnected(true)
	}
	p := New(nc, subjectPrefix, logSubjects, m)
	p.nc = nc
	return p, nil
}

// New publishes over an existing connection.
func New(conn Conn, subjectPrefix string, logSubjects bool, m PublisherMetrics) *NATSPublisher {
	return &NATSPublisher{conn: conn, prefix: subjectToken(subjectPrefix), logSubjects: logSubjects, metrics: m}
}

func (p *NATSPublisher) Close() {
	if p.nc != nil {
		p.nc.Drain()
		p.nc.Close()
	}
}

// FrameSubject is where frames for view v are published.
func (p *NATSPublisher) FrameSubject(v render.View) string {
	return p.prefix + ".frames." + subjectToken(string(v))
}

// VehiclePositionsSubject is where the GTFS-RT feed is published.
func (p *NATSPublisher) VehiclePositionsSubject() string {
	return p.prefix + ".gtfsrt.vehicle_positions"
}

// PublishFrame sends f as JSON. Frames without a view (the header clock) go
// to the "global" token.
func (p *NATSPublisher) PublishFrame(f render.Frame) error {
	v := f.View
	if v == "" {
		v = "global"
	}
	b, err := json.Marshal(f)
	if err != nil {
		return err
	}
	return p.publish(p.FrameSubject(v), b)
}

func (p *NATSPublisher) PublishVehiclePositions(msg *gtfs.FeedMessage) error {
	b, err := feed.Marshal(msg)
	if err != nil {
		return err
	}
	return p.publish(p.VehiclePositionsSubject(), b)
}

func (p *NATSPublisher) publish(subject string, b []byte) error {
	if p.logSubjects {
		log.Printf("nats publish subject=%s bytes=%d", subject, len(b))
	}
	start := time.Now()
	err := p.conn.Publish(subject, b)
	if p.metrics != nil {
		p.metrics.PublishObserve(time.Since(start))
		if err != nil {
			p.metrics.NATSPublishErrInc()
		} else {
			p.metrics.NATSPublishedInc()
		}
	}
	return err
}

func subjectToken(s string) string {
	s = strings.TrimSpace(s)
	// NATS token cannot contain spaces, '>', '*', or trailing '.'
	repl := strings.NewReplacer(" ", "_", ".", "_", ">", "_", "*", "_", "/", "_", "\t", "_")
	s = repl.Replace(s)
	if s == "" {
		s = "_"
	}
	return s
}
