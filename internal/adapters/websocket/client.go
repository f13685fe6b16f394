package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/andrescamacho/portscheduler-go/internal/domain/port"
	"github.com/andrescamacho/portscheduler-go/internal/domain/vessel"
)

const writeTimeout = 5 * time.Second

// SimulatorClient is the simulator boundary over one WebSocket connection.
// It implements port.Simulator, port.EventSink and port.AuthStringStore.
// Writes may come from search workers, so they are serialized.
type SimulatorClient struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// Dial connects to the simulator and sends the hello frame
func Dial(ctx context.Context, url string, handshakeTimeout time.Duration, hello HelloFrame) (*SimulatorClient, error) {
	d := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, resp, err := d.DialContext(ctx, url, http.Header{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to simulator at %s: %w", url, err)
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	c := &SimulatorClient{conn: conn}
	hello.Type = TypeHello
	if err := c.writeJSON(hello); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to send hello: %w", err)
	}
	return c, nil
}

// NextBatch blocks for the next timestep or finished frame. Cancelling the
// context closes the connection to unblock the read.
func (c *SimulatorClient) NextBatch(ctx context.Context) (*vessel.Batch, error) {
	stop := context.AfterFunc(ctx, func() { _ = c.conn.Close() })
	defer stop()

	_, msg, err := c.conn.ReadMessage()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("failed to read from simulator: %w", err)
	}
	return DecodeBatch(msg)
}

// Emit implements port.EventSink
func (c *SimulatorClient) Emit(ctx context.Context, event port.Event) error {
	return c.writeJSON(NewEventFrame(event))
}

// Put implements port.AuthStringStore
func (c *SimulatorClient) Put(ctx context.Context, dockID int, credential string) error {
	return c.writeJSON(AuthStringFrame{Type: TypeAuthString, DockID: dockID, Credential: credential})
}

// Close sends a close frame and closes the connection
func (c *SimulatorClient) Close() error {
	c.writeMu.Lock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "scheduler finished"),
		time.Now().Add(time.Second))
	c.writeMu.Unlock()
	return c.conn.Close()
}

func (c *SimulatorClient) writeJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
		return fmt.Errorf("failed to write to simulator: %w", err)
	}
	return nil
}
