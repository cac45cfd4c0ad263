// Package hub fans messages out to websocket clients. The camera stream
// and the control event feed each run one Hub.
package hub

import "github.com/gofiber/websocket/v2"

// Message is one broadcast unit: a JPEG frame or an encoded JSON event.
type Message struct {
	Data   []byte
	binary bool
}

// Frame wraps one JPEG frame.
func Frame(jpeg []byte) Message { return Message{Data: jpeg, binary: true} }

// Text wraps pre-encoded JSON.
func Text(data []byte) Message { return Message{Data: data} }

// wsType is the websocket opcode used to send m.
func (m Message) wsType() int {
	if m.binary {
		return websocket.BinaryMessage
	}
	return websocket.TextMessage
}
