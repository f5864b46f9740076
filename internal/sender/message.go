package sender

import (
	"encoding/json"

	"record-splitter/internal/partitioner"
)

const runIDHeader = "run_id"

// SetMessage - тело Kafka-сообщения с одним набором.
type SetMessage struct {
	ID      string   `json:"id"`
	Group   string   `json:"group"`
	Mode    string   `json:"mode,omitempty"`
	Weight  float64  `json:"weight,omitempty"`
	Records []string `json:"records"`
}

func newSetMessage(set partitioner.Set) SetMessage {
	records := set.Records
	if records == nil {
		records = []string{}
	}
	return SetMessage{
		ID:      set.ID,
		Group:   set.Group,
		Mode:    string(set.Mode),
		Weight:  set.Weight,
		Records: records,
	}
}

func (m *SetMessage) Bytes() ([]byte, error) {
	return json.Marshal(m)
}
