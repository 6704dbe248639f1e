package hub

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// recordSeparator terminates every frame in the SignalR JSON protocol.
const recordSeparator byte = 0x1e

// Hub protocol message types, per the SignalR hub protocol spec.
const (
	typeInvocation = 1
	typePing       = 6
	typeClose      = 7
)

// negotiateResponse is the relevant subset of the negotiate endpoint's
// reply. The connection id keys the subsequent websocket dial.
type negotiateResponse struct {
	ConnectionID    string `json:"connectionId"`
	ConnectionToken string `json:"connectionToken"`
}

// handshakeRequest selects the wire protocol after the socket opens.
type handshakeRequest struct {
	Protocol string `json:"protocol"`
	Version  int    `json:"version"`
}

// handshakeResponse is empty on success; a populated Error means the
// server rejected the protocol.
type handshakeResponse struct {
	Error string `json:"error,omitempty"`
}

// hubMessage is the envelope for all post-handshake traffic.
type hubMessage struct {
	Type         int               `json:"type"`
	Target       string            `json:"target,omitempty"`
	Arguments    []json.RawMessage `json:"arguments,omitempty"`
	InvocationID string            `json:"invocationId,omitempty"`
	Error        string            `json:"error,omitempty"`
}

// encodeFrame marshals v and appends the record separator.
func encodeFrame(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode hub frame: %w", err)
	}
	return append(data, recordSeparator), nil
}

// decodeFrames splits a websocket payload into individual JSON frames.
// A single read may carry several separator-terminated frames.
func decodeFrames(data []byte) [][]byte {
	parts := bytes.Split(data, []byte{recordSeparator})
	frames := make([][]byte, 0, len(parts))
	for _, part := range parts {
		if len(part) > 0 {
			frames = append(frames, part)
		}
	}
	return frames
}
