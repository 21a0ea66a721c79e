/*
Package chat contains the coordinating hub for the chat system.

This file defines the Client struct, representing one active WebSocket
connection. It manages the connection's lifecycle, the ReadPump/WritePump
message loops, and the dispatch of inbound events to the hub.
*/
package chat

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"hubble/internal/app/user"
	"hubble/internal/pkg/auth/jwt"
	"hubble/internal/pkg/errs"
	"hubble/internal/pkg/logx"
	"hubble/internal/pkg/randx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of an inbound frame.
	maxMessageSize = 8192

	// WsCloseCodeKicked is a custom WebSocket Close Code (4000-4999 range)
	// used to signal the client that a moderator terminated the session.
	WsCloseCodeKicked = 4001
)

// Client represents an active WebSocket connection attached to the hub.
type Client struct {
	// stable identifier for this connection, distinct from the username.
	connID string

	hub *Hub

	// underlying WebSocket connection object.
	conn *websocket.Conn

	// a buffered channel used to queue frames waiting to be sent.
	send chan []byte

	// structured logger with connection context.
	logger zerolog.Logger
}

// NewClient constructs a Client, attaches it to the hub, and returns it.
// The caller starts ReadPump and WritePump.
func NewClient(hub *Hub, wsConn *websocket.Conn) *Client {
	connID := uuid.NewString()

	client := &Client{
		connID: connID,
		hub:    hub,
		conn:   wsConn,
		send:   make(chan []byte, 256),
		logger: logx.Logger().With().Str("conn_id", connID).Logger(),
	}

	hub.Attach(connID, client)
	return client
}

// Emit implements Emitter. Frames for a slow consumer are dropped rather
// than blocking the hub.
func (c *Client) Emit(event string, payload any) {
	frame, err := json.Marshal(Envelope{Type: event, Payload: payload})
	if err != nil {
		c.logger.Error().Err(err).Str("event", event).Msg("Failed to marshal outbound frame")
		return
	}

	select {
	case c.send <- frame:
	default:
		c.logger.Warn().Str("event", event).Msg("Send buffer full. Dropping frame.")
	}
}

// Shutdown implements Emitter. WriteControl is safe to call concurrently
// with the WritePump, so the close frame goes out even mid-write.
func (c *Client) Shutdown(reason string) {
	deadline := time.Now().Add(writeWait)
	closeFrame := websocket.FormatCloseMessage(WsCloseCodeKicked, reason)

	if err := c.conn.WriteControl(websocket.CloseMessage, closeFrame, deadline); err != nil {
		c.logger.Warn().Err(err).Msg("Error writing kick close frame")
	}

	if err := c.conn.Close(); err != nil {
		c.logger.Error().Err(err).Msg("Client connection close error during shutdown")
	}
}

// ReadPump handles reading frames from the WebSocket connection.
// It handles heartbeats (Pong), frame parsing, and performs cleanup upon
// connection closure.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frameBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading frame (Client close/going away)")
			}
			break
		}

		c.processInboundFrame(frameBytes)
	}
}

// cleanupOnDisconnect handles the necessary cleanup steps when the client's
// ReadPump terminates.
func (c *Client) cleanupOnDisconnect() {
	c.logger.Info().Msg("Client connection cleanup starting.")

	c.hub.Disconnect(c.connID)

	// The send channel is left open; the WritePump exits on its next write
	// against the closed connection.
	if err := c.conn.Close(); err != nil {
		c.logger.Error().Err(err).Msg("Client connection close error")
	}
}

// WritePump handles writing frames from the Client.send channel to the
// WebSocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := c.conn.Close(); err != nil {
			c.logger.Error().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if !c.writeQueuedFrame(frame, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePingMessage() {
				return
			}
		}
	}
}

// writeQueuedFrame writes one frame pulled from the send channel.
// Returns true if the WritePump loop should continue.
func (c *Client) writeQueuedFrame(frame []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
			c.logger.Error().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		c.logger.Error().Err(err).Msg("Error writing frame")
		return false
	}

	return true
}

// writePingMessage sends a periodic WebSocket Ping message to maintain the
// connection heartbeat. Returns false on write failure.
func (c *Client) writePingMessage() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Error().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}

// --- inbound dispatch ---

// inboundFrame is the wire shape of every client request: an event name, an
// optional request ID echoed back in the ack, and an event-specific payload.
type inboundFrame struct {
	Type    string          `json:"type"`
	ReqID   string          `json:"reqId,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type identifyRequest struct {
	Token    string `json:"token,omitempty"`
	Username string `json:"username,omitempty"`
}

type roomRequest struct {
	Room     string            `json:"room"`
	Password string            `json:"password,omitempty"`
	Meta     map[string]string `json:"meta,omitempty"`
}

type roomLockRequest struct {
	Room   string `json:"room"`
	Locked bool   `json:"locked"`
}

type roomOwnerRequest struct {
	Room  string `json:"room"`
	Owner string `json:"owner"`
}

type roomBanRequest struct {
	Room   string `json:"room"`
	Target string `json:"target"`
	Banned bool   `json:"banned"`
}

type msgSendRequest struct {
	Body string `json:"body"`
	Kind string `json:"kind,omitempty"`
}

type msgEditRequest struct {
	ID   string `json:"id"`
	Body string `json:"body"`
}

type msgRefRequest struct {
	ID string `json:"id"`
}

type dmSendRequest struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

type dmOpenRequest struct {
	With string `json:"with"`
}

type modRequest struct {
	Target string `json:"target"`
}

// processInboundFrame parses one raw frame and dispatches it to the hub.
func (c *Client) processInboundFrame(frameBytes []byte) {
	var frame inboundFrame
	if err := json.Unmarshal(frameBytes, &frame); err != nil {
		c.logger.Warn().Err(err).
			Bytes("frame_bytes", frameBytes).
			Msg("Client sent invalid JSON")
		c.nack("", errs.New(errs.ErrInvalidJSONFormat))
		return
	}

	switch frame.Type {
	case EvIdentify:
		c.handleIdentify(frame)

	case EvRoomsCreate:
		c.handleRoomsCreate(frame)
	case EvRoomsJoin:
		c.handleRoomsJoin(frame)
	case EvRoomsLeave:
		c.respond(frame, nil, c.hub.LeaveRoom(c.connID))
	case EvRoomsDelete:
		var req roomRequest
		if !c.bind(frame, &req) {
			return
		}
		c.respond(frame, nil, c.hub.DeleteRoom(c.connID, req.Room))
	case EvRoomsLock:
		var req roomLockRequest
		if !c.bind(frame, &req) {
			return
		}
		summary, customErr := c.hub.LockRoom(c.connID, req.Room, req.Locked)
		c.respond(frame, summary, customErr)
	case EvRoomsSetPassword:
		var req roomRequest
		if !c.bind(frame, &req) {
			return
		}
		summary, customErr := c.hub.SetRoomPassword(c.connID, req.Room, req.Password)
		c.respond(frame, summary, customErr)
	case EvRoomsSetOwner:
		var req roomOwnerRequest
		if !c.bind(frame, &req) {
			return
		}
		summary, customErr := c.hub.SetRoomOwner(c.connID, req.Room, req.Owner)
		c.respond(frame, summary, customErr)
	case EvRoomsBan:
		var req roomBanRequest
		if !c.bind(frame, &req) {
			return
		}
		summary, customErr := c.hub.SetRoomBan(c.connID, req.Room, req.Target, req.Banned)
		c.respond(frame, summary, customErr)
	case EvRoomsInfo:
		var req roomRequest
		if !c.bind(frame, &req) {
			return
		}
		summary, customErr := c.hub.RoomInfo(req.Room)
		c.respond(frame, summary, customErr)
	case EvRoomsGet:
		c.respond(frame, RoomListPayload{Rooms: c.hub.ListRooms()}, nil)

	case EvMsgSend:
		var req msgSendRequest
		if !c.bind(frame, &req) {
			return
		}
		msg, customErr := c.hub.Post(c.connID, req.Body, req.Kind)
		c.respond(frame, msg, customErr)
	case EvMsgEdit:
		var req msgEditRequest
		if !c.bind(frame, &req) {
			return
		}
		msg, customErr := c.hub.EditMessage(c.connID, req.ID, req.Body)
		c.respond(frame, msg, customErr)
	case EvMsgDelete:
		var req msgRefRequest
		if !c.bind(frame, &req) {
			return
		}
		c.respond(frame, nil, c.hub.DeleteMessage(c.connID, req.ID))
	case EvMsgTyping:
		// fire-and-forget, never acked
		if customErr := c.hub.Typing(c.connID); customErr != nil {
			c.logger.Debug().Int("code", customErr.Code).Msg("Typing indicator dropped")
		}
	case EvMsgRead:
		var req msgRefRequest
		if !c.bind(frame, &req) {
			return
		}
		if customErr := c.hub.ReadReceipt(c.connID, req.ID); customErr != nil {
			c.logger.Debug().Int("code", customErr.Code).Msg("Read receipt dropped")
		}
	case EvMsgGet:
		payload, customErr := c.hub.RoomHistory(c.connID)
		c.respond(frame, payload, customErr)

	case EvDmSend:
		var req dmSendRequest
		if !c.bind(frame, &req) {
			return
		}
		msg, customErr := c.hub.SendDM(c.connID, req.To, req.Body)
		c.respond(frame, msg, customErr)
	case EvDmOpen:
		var req dmOpenRequest
		if !c.bind(frame, &req) {
			return
		}
		payload, customErr := c.hub.OpenDM(c.connID, req.With)
		c.respond(frame, payload, customErr)

	case EvModMute:
		c.handleModeration(frame, c.hub.Mute)
	case EvModUnmute:
		c.handleModeration(frame, c.hub.Unmute)
	case EvModBan:
		c.handleModeration(frame, c.hub.Ban)
	case EvModUnban:
		c.handleModeration(frame, c.hub.Unban)
	case EvModKick:
		c.handleModeration(frame, c.hub.Kick)

	default:
		c.logger.Warn().Str("event", frame.Type).Msg("Client sent unsupported event")
		c.nack(frame.ReqID, errs.New(errs.ErrInvalidParams, "unknown event "+frame.Type))
	}
}

// handleIdentify binds a username and role to this connection. A signed
// token carries both; a bare username identifies as a regular member, and an
// empty request gets a generated guest name.
func (c *Client) handleIdentify(frame inboundFrame) {
	var req identifyRequest
	if !c.bind(frame, &req) {
		return
	}

	username := req.Username
	role := user.RoleMember

	if req.Token != "" {
		claims, err := jwt.ParseToken(req.Token, c.hub.cfg.JWTSecret)
		if err != nil {
			c.nack(frame.ReqID, errs.New(errs.ErrUnauthorized))
			return
		}
		username = claims.Username
		role = user.ParseRole(claims.Role)
	} else if username == "" {
		generated, err := randx.GuestName()
		if err != nil {
			c.logger.Error().Err(err).Msg("Failed to generate guest name")
			c.nack(frame.ReqID, errs.New(errs.ErrUnknown))
			return
		}
		username = generated
		role = user.RoleGuest
	}

	result, customErr := c.hub.Identify(c.connID, username, role)
	if customErr != nil {
		c.nack(frame.ReqID, customErr)
		return
	}

	c.logger = c.logger.With().Str("username", username).Logger()
	c.ack(frame.ReqID, result)
}

func (c *Client) handleRoomsCreate(frame inboundFrame) {
	var req roomRequest
	if !c.bind(frame, &req) {
		return
	}

	summary, customErr := c.hub.CreateRoom(c.connID, req.Room, req.Password, req.Meta)
	c.respond(frame, summary, customErr)
}

func (c *Client) handleRoomsJoin(frame inboundFrame) {
	var req roomRequest
	if !c.bind(frame, &req) {
		return
	}

	summary, customErr := c.hub.JoinRoom(c.connID, req.Room, req.Password)
	c.respond(frame, summary, customErr)
}

func (c *Client) handleModeration(frame inboundFrame, apply func(connID, target string) *errs.CustomError) {
	var req modRequest
	if !c.bind(frame, &req) {
		return
	}
	c.respond(frame, nil, apply(c.connID, req.Target))
}

// bind unmarshals the frame payload into dst, nacking malformed payloads.
// An absent payload leaves dst zero-valued.
func (c *Client) bind(frame inboundFrame, dst any) bool {
	if len(frame.Payload) == 0 {
		return true
	}
	if err := json.Unmarshal(frame.Payload, dst); err != nil {
		c.logger.Warn().Err(err).Str("event", frame.Type).Msg("Client sent invalid payload")
		c.nack(frame.ReqID, errs.New(errs.ErrInvalidJSONFormat))
		return false
	}
	return true
}

// respond acks or nacks the frame based on the hub result.
func (c *Client) respond(frame inboundFrame, data any, customErr *errs.CustomError) {
	if customErr != nil {
		c.nack(frame.ReqID, customErr)
		return
	}
	c.ack(frame.ReqID, data)
}

func (c *Client) ack(reqID string, data any) {
	c.Emit(EvAck, AckPayload{RequestID: reqID, OK: true, Data: data})
}

func (c *Client) nack(reqID string, customErr *errs.CustomError) {
	c.Emit(EvAck, AckPayload{RequestID: reqID, OK: false, Code: customErr.Code, Error: customErr.Message})
}
