package utils

import (
	"encoding/json"

	"github.com/kaptinlin/jsonrepair"
)

// DecodeFrame unmarshals one streamed JSON frame into OutputStruct. Provider
// streams occasionally interleave slightly malformed frames (truncated by a
// proxy, stray trailing commas); before giving up, the payload is run through
// jsonrepair once and reparsed. Callers treat a returned error as "drop this
// frame", never as a stream-fatal condition.
func DecodeFrame[OutputStruct any](payload string) (*OutputStruct, error) {
	var frame OutputStruct
	if err := json.Unmarshal([]byte(payload), &frame); err == nil {
		return &frame, nil
	}

	repaired, err := jsonrepair.JSONRepair(payload)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(repaired), &frame); err != nil {
		return nil, err
	}
	return &frame, nil
}
