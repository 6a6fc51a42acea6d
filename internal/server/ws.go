package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"ZLeader/internal/game"
	"ZLeader/internal/leader"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const adminFlags = leader.AdminRoot | leader.AdminBan | leader.AdminKick

var (
	errNotAdmin       = errors.New("admin only")
	errUnknownType    = errors.New("unknown message type")
	errMissingPayload = errors.New("missing payload")
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type chatPayload struct {
	Text string `json:"text"`
}

type inputPayload struct {
	Buttons uint64  `json:"buttons"`
	Pitch   float64 `json:"pitch"`
	Yaw     float64 `json:"yaw"`
}

type teamPayload struct {
	Team int `json:"team"`
}

type convarPayload struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type outboundFrame struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type welcomeMsg struct {
	ID    string `json:"id"`
	Room  string `json:"room"`
	Slot  int    `json:"slot"`
	Admin bool   `json:"admin"`
}

type stateMsg struct {
	Me *game.PlayerView `json:"me"`
	game.Snapshot
}

type errorMsg struct {
	Message string `json:"message"`
}

type liveConn struct {
	id       string
	conn     *websocket.Conn
	sendTick *time.Ticker
	mu       sync.Mutex
}

func (lc *liveConn) send(kind string, payload any) error {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	_ = lc.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return lc.conn.WriteJSON(outboundFrame{Type: kind, Payload: payload})
}

func serveWS(h *game.Hub, adminToken string, w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	roomID := roomParam(r)
	token := query.Get("token")
	admin := adminToken != "" && subtle.ConstantTimeCompare([]byte(token), []byte(adminToken)) == 1

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("upgrade")
		return
	}
	lc := &liveConn{
		id:       uuid.NewString(),
		conn:     conn,
		sendTick: time.NewTicker(time.Duration(1000.0/game.UpdateRateHz) * time.Millisecond),
	}
	defer lc.sendTick.Stop()
	logger := log.With().Str("conn", lc.id).Str("room", roomID).Logger()

	var flags leader.AdminFlags
	if admin {
		flags = adminFlags
	}
	room, player, err := h.Join(roomID, query.Get("name"), query.Get("steamid"), flags)
	if err != nil {
		logger.Info().Err(err).Msg("join rejected")
		_ = lc.send("error", errorMsg{Message: err.Error()})
		conn.Close()
		return
	}
	handle := player.Handle()
	slot := player.Slot()
	logger.Info().Int("slot", slot).Bool("admin", admin).Msg("client joined")

	if err := lc.send("welcome", welcomeMsg{ID: lc.id, Room: roomID, Slot: slot, Admin: admin}); err != nil {
		logger.Warn().Err(err).Msg("send welcome")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		defer cancel()
		for {
			msgType, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if msgType != websocket.TextMessage {
				logger.Debug().Int("type", msgType).Msg("ignoring non-text frame")
				continue
			}
			var inbound inboundMessage
			if err := json.Unmarshal(data, &inbound); err != nil {
				_ = lc.send("error", errorMsg{Message: "bad message"})
				continue
			}
			if err := handleInbound(room, handle, admin, inbound); err != nil {
				logger.Debug().Err(err).Str("type", inbound.Type).Msg("inbound rejected")
				_ = lc.send("error", errorMsg{Message: err.Error()})
			}
		}
	}()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-lc.sendTick.C:
				if err := pushUpdates(lc, room, handle, slot); err != nil {
					logger.Debug().Err(err).Msg("push")
					cancel()
					return
				}
			}
		}
	}()

	<-ctx.Done()
	conn.Close()

	if err := room.Disconnect(handle); err != nil && !errors.Is(err, game.ErrNoPlayer) {
		logger.Warn().Err(err).Msg("disconnect")
	}
	logger.Info().Int("slot", slot).Msg("client left")
}

// pushUpdates sends queued chat and ping messages followed by a state frame.
func pushUpdates(lc *liveConn, room *game.Room, h leader.PlayerHandle, slot int) error {
	for _, out := range room.Drain(h) {
		if err := lc.send(out.Kind, out); err != nil {
			return err
		}
	}

	msg := stateMsg{Snapshot: room.Snapshot()}
	for i := range msg.Players {
		if msg.Players[i].Slot == slot {
			me := msg.Players[i]
			msg.Me = &me
			break
		}
	}
	return lc.send("state", msg)
}

func handleInbound(room *game.Room, h leader.PlayerHandle, admin bool, msg inboundMessage) error {
	switch msg.Type {
	case "chat":
		var p chatPayload
		if err := decodePayload(msg.Payload, &p); err != nil {
			return err
		}
		return room.Chat(h, p.Text)
	case "input":
		var p inputPayload
		if err := decodePayload(msg.Payload, &p); err != nil {
			return err
		}
		return room.SetInput(h, leader.Buttons(p.Buttons), p.Pitch, p.Yaw)
	case "team":
		var p teamPayload
		if err := decodePayload(msg.Payload, &p); err != nil {
			return err
		}
		return room.SetTeam(h, leader.Team(p.Team))
	case "spawn":
		return room.Respawn(h)
	case "ping":
		_, err := room.Ping(h)
		return err
	case "convar":
		if !admin {
			return errNotAdmin
		}
		var p convarPayload
		if err := decodePayload(msg.Payload, &p); err != nil {
			return err
		}
		return room.SetConVar(p.Name, p.Value)
	case "round":
		if !admin {
			return errNotAdmin
		}
		room.StartRound()
		return nil
	default:
		return fmt.Errorf("%w: %q", errUnknownType, msg.Type)
	}
}

func decodePayload(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return errMissingPayload
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}
