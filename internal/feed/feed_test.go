package feed

import (
	"testing"
	"time"

	"google.golang.org/protobuf/proto"

	gtfs "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"

	"metro-twin/internal/twin"
)

func TestVehiclePositions(t *testing.T) {
	d := twin.Seed()
	now := time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC)

	msg := VehiclePositions(d, now)
	if msg.GetHeader().GetGtfsRealtimeVersion() != "2.0" || msg.GetHeader().GetTimestamp() != uint64(now.Unix()) {
		t.Errorf("header = %v", msg.GetHeader())
	}
	if len(msg.Entity) != 2 {
		t.Fatalf("entities = %d, want the 2 in-service trains", len(msg.Entity))
	}

	byID := map[string]*gtfs.VehiclePosition{}
	for _, e := range msg.Entity {
		byID[e.GetId()] = e.GetVehicle()
	}
	v := byID["KMRL-001"]
	if v == nil {
		t.Fatal("KMRL-001 missing")
	}
	if v.GetStopId() != "TNH" || v.GetCurrentStopSequence() != 6 {
		t.Errorf("KMRL-001 stop = %s seq %d", v.GetStopId(), v.GetCurrentStopSequence())
	}
	if v.GetPosition().GetLatitude() != float32(10.0) {
		t.Errorf("latitude = %v", v.GetPosition().GetLatitude())
	}
	if v.GetCurrentStatus() != gtfs.VehiclePosition_STOPPED_AT {
		t.Errorf("status = %v", v.GetCurrentStatus())
	}
	if last := byID["KMRL-003"]; last.GetStopId() != "TRP" {
		t.Errorf("KMRL-003 should sit at the terminal, got %s", last.GetStopId())
	}
	if _, ok := byID["KMRL-002"]; ok {
		t.Error("maintenance train exported")
	}
}

func TestMarshalDecodes(t *testing.T) {
	b, err := Marshal(VehiclePositions(twin.Seed(), time.Unix(1759300000, 0)))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got gtfs.FeedMessage
	if err := proto.Unmarshal(b, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(got.Entity) != 2 || got.GetHeader().GetTimestamp() != 1759300000 {
		t.Errorf("decoded feed = %v", &got)
	}
}

func TestEmptyModel(t *testing.T) {
	msg := VehiclePositions(&twin.Data{}, time.Now())
	if msg.Header == nil || len(msg.Entity) != 0 {
		t.Errorf("empty model should give an empty feed: %v", msg)
	}
}
