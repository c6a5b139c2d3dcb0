package websocket

import (
	"bytes"
	"encoding/json"

	"github.com/lorrc/skycrm-backend/internal/core/domain"
)

// encodeEvent renders the wire envelope for an outbound event once, so the
// same bytes can be queued to every recipient.
func encodeEvent(event string, data any) ([]byte, error) {
	var raw json.RawMessage
	switch v := data.(type) {
	case nil:
	case json.RawMessage:
		raw = v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	return encodeFrame(event, raw), nil
}

// encodeFrame writes data verbatim so relayed payloads reach peers exactly as
// the sender wrote them.
func encodeFrame(event string, data json.RawMessage) []byte {
	name, _ := json.Marshal(event)

	var buf bytes.Buffer
	buf.Grow(len(name) + len(data) + 20)
	buf.WriteString(`{"event":`)
	buf.Write(name)
	if len(data) > 0 {
		buf.WriteString(`,"data":`)
		buf.Write(data)
	}
	buf.WriteByte('}')
	return buf.Bytes()
}

// decodeEnvelope parses an inbound frame.
func decodeEnvelope(message []byte) (domain.Envelope, error) {
	var env domain.Envelope
	err := json.Unmarshal(message, &env)
	return env, err
}
