package domain

// Event kinds delivered by the feed adapter.
const (
	EventKindMetadata = "metadata"
	EventKindPosition = "position"
)

// VesselEvent is a single decoded message from the AIS feed. A zero
// VesselID or an empty Time marks the field as missing; the engine ignores
// events without the fields their kind requires.
type VesselEvent struct {
	Kind        string
	VesselID    int64
	TypeCode    int
	HasTypeCode bool
	Time        string
}
