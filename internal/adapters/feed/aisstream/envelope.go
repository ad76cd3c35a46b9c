package aisstream

import (
	"encoding/json"

	"vesselwatch/internal/core/domain"
)

// subscription is the handshake message aisstream.io expects as the first
// frame after connecting.
type subscription struct {
	APIKey             string        `json:"APIKey"`
	BoundingBoxes      [][][]float64 `json:"BoundingBoxes"`
	FilterMessageTypes []string      `json:"FilterMessageTypes"`
}

// envelope is the wire shape of one aisstream.io frame. Only the fields the
// engine needs are decoded.
type envelope struct {
	MessageType string `json:"MessageType"`
	MetaData    struct {
		MMSI    int64  `json:"MMSI"`
		TimeUTC string `json:"time_utc"`
	} `json:"MetaData"`
	Message struct {
		ShipStaticData struct {
			Type *int `json:"Type"`
		} `json:"ShipStaticData"`
	} `json:"Message"`
}

// decodeEvent maps one raw frame onto a domain event. Message types other
// than position reports and static data keep their wire name as the kind;
// the engine ignores kinds it does not recognize.
func decodeEvent(data []byte) (domain.VesselEvent, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return domain.VesselEvent{}, err
	}

	switch env.MessageType {
	case "PositionReport":
		return domain.VesselEvent{
			Kind:     domain.EventKindPosition,
			VesselID: env.MetaData.MMSI,
			Time:     env.MetaData.TimeUTC,
		}, nil
	case "ShipStaticData":
		event := domain.VesselEvent{
			Kind:     domain.EventKindMetadata,
			VesselID: env.MetaData.MMSI,
		}
		if env.Message.ShipStaticData.Type != nil {
			event.TypeCode = *env.Message.ShipStaticData.Type
			event.HasTypeCode = true
		}
		return event, nil
	default:
		return domain.VesselEvent{Kind: env.MessageType, VesselID: env.MetaData.MMSI}, nil
	}
}
