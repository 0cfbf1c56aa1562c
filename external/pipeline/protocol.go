package pipeline

import (
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/foxseedlab/voicesatellite/internal/pipeline"
)

const (
	messageTypeRequestStart = "request-start"
	messageTypeStop         = "stop"
	messageTypeStart        = "start"
	messageTypeEvent        = "event"
)

// message is the control-channel envelope. Text frames carry JSON, binary
// frames carry the same fields encoded with msgpack.
type message struct {
	Type       string  `json:"type" msgpack:"type"`
	SampleRate int     `json:"sample_rate,omitempty" msgpack:"sample_rate,omitempty"`
	Address    string  `json:"address,omitempty" msgpack:"address,omitempty"`
	Port       uint16  `json:"port,omitempty" msgpack:"port,omitempty"`
	Event      string  `json:"event,omitempty" msgpack:"event,omitempty"`
	Data       []field `json:"data,omitempty" msgpack:"data,omitempty"`
}

type field struct {
	Name  string `json:"name" msgpack:"name"`
	Value string `json:"value" msgpack:"value"`
}

func decodeMessage(frameType int, data []byte) (message, error) {
	var msg message
	switch frameType {
	case websocket.TextMessage:
		if err := json.Unmarshal(data, &msg); err != nil {
			return msg, fmt.Errorf("decode json message: %w", err)
		}
	case websocket.BinaryMessage:
		if err := msgpack.Unmarshal(data, &msg); err != nil {
			return msg, fmt.Errorf("decode msgpack message: %w", err)
		}
	default:
		return msg, fmt.Errorf("unsupported frame type %d", frameType)
	}
	return msg, nil
}

func (m message) record() pipeline.Record {
	data := make([]pipeline.Field, 0, len(m.Data))
	for _, f := range m.Data {
		data = append(data, pipeline.Field{Name: f.Name, Value: f.Value})
	}
	return pipeline.Record{
		Kind: pipeline.ParseKind(m.Event),
		Name: m.Event,
		Data: data,
	}
}
