// Package feed exports the train markers as a GTFS-Realtime vehicle
// positions feed.
package feed

import (
	"time"

	"google.golang.org/protobuf/proto"

	gtfs "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"

	"metro-twin/internal/twin"
)

// VehiclePositions builds a full-dataset feed with one entity per in-service
// train, placed at its current station.
func VehiclePositions(d *twin.Data, now time.Time) *gtfs.FeedMessage {
	ts := uint64(now.Unix())
	msg := &gtfs.FeedMessage{
		Header: &gtfs.FeedHeader{
			GtfsRealtimeVersion: proto.String("2.0"),
			Incrementality:      gtfs.FeedHeader_FULL_DATASET.Enum(),
			Timestamp:           proto.Uint64(ts),
		},
	}
	last := d.LastStation()
	if last < 0 {
		return msg
	}
	for _, t := range d.Trains {
		if t.Status != twin.InService {
			continue
		}
		idx := twin.ClampInt(t.CurrentStation, 0, last)
		st := d.Stations[idx]
		msg.Entity = append(msg.Entity, &gtfs.FeedEntity{
			Id: proto.String(t.ID),
			Vehicle: &gtfs.VehiclePosition{
				Vehicle: &gtfs.VehicleDescriptor{
					Id:    proto.String(t.ID),
					Label: proto.String(t.ID),
				},
				Position: &gtfs.Position{
					Latitude:  proto.Float32(float32(st.Lat)),
					Longitude: proto.Float32(float32(st.Lon)),
					Speed:     proto.Float32(float32(t.Speed) / 3.6), // m/s
				},
				StopId:              proto.String(st.Code),
				CurrentStopSequence: proto.Uint32(uint32(idx + 1)),
				CurrentStatus:       gtfs.VehiclePosition_STOPPED_AT.Enum(),
				Timestamp:           proto.Uint64(ts),
			},
		})
	}
	return msg
}

// Marshal encodes the feed in the protobuf wire format.
func Marshal(msg *gtfs.FeedMessage) ([]byte, error) { return proto.Marshal(msg) }
