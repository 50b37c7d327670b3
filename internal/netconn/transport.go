package netconn

import (
	"context"

	"github.com/coder/websocket"
)

// Transport is one open socket to the remote authority.
type Transport interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	Close(code int, reason string) error
}

// DialFunc opens a Transport to addr. Injected so tests can swap in fakes.
type DialFunc func(ctx context.Context, addr string) (Transport, error)

type wsTransport struct {
	conn *websocket.Conn
}

// DialWebsocket is the production DialFunc: a websocket carrying one JSON
// message per text frame.
func DialWebsocket(ctx context.Context, addr string) (Transport, error) {
	conn, _, err := websocket.Dial(ctx, addr, nil)
	if err != nil {
		return nil, err
	}
	return &wsTransport{conn: conn}, nil
}

func (t *wsTransport) Read(ctx context.Context) ([]byte, error) {
	_, data, err := t.conn.Read(ctx)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (t *wsTransport) Write(ctx context.Context, data []byte) error {
	return t.conn.Write(ctx, websocket.MessageText, data)
}

func (t *wsTransport) Close(code int, reason string) error {
	return t.conn.Close(websocket.StatusCode(code), reason)
}
