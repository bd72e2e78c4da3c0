package handlers

import (
	"log"
	"sync"
	"time"

	"arcade-arena/game"
	"arcade-arena/protocol"
	"arcade-arena/room"

	fws "github.com/fasthttp/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const (
	writeWait     = 10 * time.Second
	sendQueueSize = 64
)

func SetupGameRoutes(app *fiber.App, rooms *room.Manager) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// One live match per connection, scoped by ?tournament_id=&match_id=.
	// No ids means a throwaway practice room.
	app.Get("/ws/game", websocket.New(func(c *websocket.Conn) {
		serveMatch(rooms, c)
	}))
}

func serveMatch(rooms *room.Manager, c *websocket.Conn) {
	key := room.RoomKey(c.Query("tournament_id"), c.Query("match_id"))
	r := rooms.GetOrCreateRoom(key)

	client := newWSClient(c)
	go client.writePump()
	defer client.Shutdown()

	reply := make(chan room.JoinResult, 1)
	r.Inbox <- room.Join{Conn: client, Reply: reply}

	var side int
	select {
	case res := <-reply:
		side = res.Side
	case <-time.After(5 * time.Second):
		// Room went away between lookup and join.
		_ = client.CloseWithStatus(fws.CloseTryAgainLater, "room unavailable")
		return
	}
	if side == game.SideNone {
		// Two sides already bound; the room itself is untouched.
		_ = client.CloseWithStatus(fws.ClosePolicyViolation, "room is full")
		return
	}
	defer func() {
		r.Inbox <- room.Leave{Side: side}
	}()

	for {
		_, msg, err := c.ReadMessage()
		if err != nil {
			return // deferred Leave turns this into a forfeit if needed
		}
		env, err := protocol.DecodeEnvelope(msg)
		if err != nil {
			log.Printf("[WS %s] bad frame from side %d: %v", key, side, err)
			continue
		}

		switch env.T {
		case protocol.MsgInit:
			init, err := protocol.DecodePayload[protocol.Init](env)
			if err != nil {
				// Malformed init fails closed: sever rather than guess.
				_ = client.CloseWithStatus(fws.ClosePolicyViolation, "malformed init")
				return
			}
			r.Inbox <- room.InitMsg{Side: side, Init: init}
		case protocol.MsgStart:
			r.Inbox <- room.Ready{Side: side}
		case protocol.MsgInput:
			in, err := protocol.DecodePayload[protocol.Input](env)
			if err != nil {
				continue
			}
			r.Inbox <- room.SetInput{Side: side, Input: in}
		case protocol.MsgPause:
			r.Inbox <- room.Pause{Side: side}
		case protocol.MsgClose:
			r.Inbox <- room.CloseReq{Side: side}
			return
		default:
			log.Printf("[WS %s] unknown message type %q", key, env.T)
		}
	}
}

// outFrame is one queued write: a data frame, or the terminating close
// control frame.
type outFrame struct {
	close bool
	data  []byte
}

// wsClient adapts a fiber websocket connection to room.Conn: a buffered
// send queue drained by a single writer goroutine, so the room never
// blocks on a slow client. Closure rides the same queue, which keeps it
// ordered after frames already accepted by Send.
type wsClient struct {
	conn *websocket.Conn
	send chan outFrame

	mu     sync.Mutex
	closed bool
}

func newWSClient(c *websocket.Conn) *wsClient {
	return &wsClient{
		conn: c,
		send: make(chan outFrame, sendQueueSize),
	}
}

// writePump is the only writer and owns the socket's teardown. Queued data
// drains in order before a close frame or queue closure takes the socket
// down, so a result queued ahead of the close always reaches the wire.
func (w *wsClient) writePump() {
	defer w.conn.Close()
	for f := range w.send {
		_ = w.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if f.close {
			_ = w.conn.WriteMessage(fws.CloseMessage, f.data)
			return
		}
		if err := w.conn.WriteMessage(fws.TextMessage, f.data); err != nil {
			return
		}
	}
}

func (w *wsClient) Send(b []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return fws.ErrCloseSent
	}
	select {
	case w.send <- outFrame{data: b}:
		return nil
	default:
		return fws.ErrCloseSent // queue full: treat as a dead client
	}
}

func (w *wsClient) Close() error {
	w.Shutdown()
	return nil
}

// CloseWithStatus queues the close frame behind pending data.
func (w *wsClient) CloseWithStatus(code int, reason string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	msg := fws.FormatCloseMessage(code, reason)
	select {
	case w.send <- outFrame{close: true, data: msg}:
	default:
		// Full queue means the pump is stalled on a dead peer; bypass it.
		_ = w.conn.WriteControl(fws.CloseMessage, msg, time.Now().Add(writeWait))
	}
	close(w.send)
	return nil
}

// Shutdown closes the send queue; the pump drains what is left and closes
// the socket. Idempotent: both the read loop's defer and the room may ask
// for closure.
func (w *wsClient) Shutdown() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.closed = true
	close(w.send)
}
