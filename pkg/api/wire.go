package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/recordgate/recordgate/pkg/message"
)

// encodeMessage renders a Message's export as a JSON object keyed by section
// name, sections in priority order. One-dimensional sections render as a flat
// object, two-dimensional sections as a list of objects.
func encodeMessage(m *message.Message) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, sec := range m.Export() {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, "%q:", sec.Name.String())
		if sec.Name.Dimensions() == 1 {
			row, err := json.Marshal(sec.Rows[0])
			if err != nil {
				return nil, err
			}
			buf.Write(row)
			continue
		}
		buf.WriteByte('[')
		for j, r := range sec.Rows {
			if j > 0 {
				buf.WriteByte(',')
			}
			row, err := json.Marshal(r)
			if err != nil {
				return nil, err
			}
			buf.Write(row)
		}
		buf.WriteByte(']')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// decodeMessage builds a Message from a JSON body of section name to rows.
// One-dimensional sections accept either a flat object or a one-element list
// containing one object; both normalize identically.
func decodeMessage(r io.Reader) (*message.Message, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("invalid message body: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("invalid message body: expected object")
	}

	m := message.New()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := keyTok.(string)
		name, ok := message.ParseSectionName(key)
		if !ok {
			return nil, fmt.Errorf("unknown section %q", key)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("section %q: %w", key, err)
		}
		rows, err := decodeRows(raw)
		if err != nil {
			return nil, fmt.Errorf("section %q: %w", key, err)
		}
		if err := m.SetSection(name, rows); err != nil {
			return nil, err
		}
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return m, nil
}

func decodeRows(raw json.RawMessage) ([]*message.Row, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty section body")
	}
	if trimmed[0] == '{' {
		row := message.NewRow()
		if err := json.Unmarshal(trimmed, row); err != nil {
			return nil, err
		}
		return []*message.Row{row}, nil
	}
	var rows []*message.Row
	if err := json.Unmarshal(trimmed, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// sendMessage writes a Message as the response body.
func sendMessage(w http.ResponseWriter, m *message.Message) {
	body, err := encodeMessage(m)
	if err != nil {
		sendError(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
