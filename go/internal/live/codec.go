package live

import (
	"encoding/json"

	"connectrpc.com/connect"
)

// jsonCodec carries plain Go message structs over connect as application/json.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	return json.Unmarshal(data, msg)
}

// WithJSONCodec is the option both the handler and the client must carry.
func WithJSONCodec() connect.Option {
	return connect.WithCodec(jsonCodec{})
}
