package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// WriteJSON writes the reports as an indented JSON array.
func WriteJSON(w io.Writer, reports []*Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(reports); err != nil {
		return fmt.Errorf("encode json report: %w", err)
	}
	return nil
}

// WriteMsgpack writes the reports in MessagePack, keyed like the JSON form.
func WriteMsgpack(w io.Writer, reports []*Report) error {
	enc := msgpack.NewEncoder(w)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(reports); err != nil {
		return fmt.Errorf("encode msgpack report: %w", err)
	}
	return nil
}

// ReadMsgpack decodes reports written by WriteMsgpack.
func ReadMsgpack(r io.Reader) ([]*Report, error) {
	dec := msgpack.NewDecoder(r)
	dec.SetCustomStructTag("json")
	var out []*Report
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode msgpack report: %w", err)
	}
	return out, nil
}
