// Package hub fans dashboard updates out to websocket viewers.
//
// Each Hub owns one stream (status snapshots or camera frames) and replays
// the latest message to viewers that join mid-stream.
package hub

// Kind selects the websocket frame type a Message is written with.
type Kind int

const (
	// KindStatus is a JSON-encoded status snapshot, sent as a text frame.
	KindStatus Kind = iota
	// KindFrame is an encoded camera image, sent as a binary frame.
	KindFrame
)

func (k Kind) String() string {
	if k == KindFrame {
		return "frame"
	}
	return "status"
}

// Message is one broadcast unit.
type Message struct {
	Kind Kind
	Data []byte
}

// StatusMessage wraps pre-encoded JSON.
func StatusMessage(data []byte) Message {
	return Message{Kind: KindStatus, Data: data}
}

// FrameMessage wraps an encoded image.
func FrameMessage(data []byte) Message {
	return Message{Kind: KindFrame, Data: data}
}
