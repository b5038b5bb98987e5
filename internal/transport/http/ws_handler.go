package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"slidecast/internal/app"
	"slidecast/internal/domain"
)

type WSHandler struct {
	service  *app.GameService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.GameService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type submitPayload struct {
	SlideID string `json:"slideId"`
	domain.Submission
}

type submitAck struct {
	app.SubmitResult
	Rank  int `json:"rank"`
	Total int `json:"total"`
}

type processPayload struct {
	SlideID string `json:"slideId"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
	Reason  string `json:"reason,omitempty"`
}

// rejectionReason maps submission errors to the typed reasons clients
// branch on.
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrDeadlineExceeded):
		return "deadline-exceeded"
	case errors.Is(err, domain.ErrAlreadyAnswered):
		return "failed-precondition"
	case errors.Is(err, domain.ErrInvalidAnswer):
		return "invalid-argument"
	case errors.Is(err, domain.ErrSlideNotActive):
		return "failed-precondition"
	default:
		return "internal"
	}
}

// ServePlayer upgrades a player connection: join the game, stream
// snapshots, accept submissions.
func (h *WSHandler) ServePlayer(w http.ResponseWriter, r *http.Request) {
	gameID := r.URL.Query().Get("gameId")
	playerID := r.URL.Query().Get("playerId")
	displayName := r.URL.Query().Get("name")
	if gameID == "" || playerID == "" || displayName == "" {
		http.Error(w, "missing gameId, playerId, or name", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	joined, err := h.service.Join(r.Context(), gameID, playerID, displayName)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	updates, cancel, err := h.service.Subscribe(r.Context(), gameID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer cancel()
	defer h.service.Leave(r.Context(), gameID, playerID)

	send, closeSignals, writerDone, updatesDone := h.startPumps(conn, updates)

	send <- outboundMessage[any]{Type: "joined", Payload: joined}

	// Connection-local debounce: once a non-thoughts slide is answered
	// here, further attempts are rejected without another service call.
	// This is a UX shortcut; the session holds the authoritative check.
	answeredLocal := make(map[string]bool)

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "submit":
			var payload submitPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid submit payload", Reason: "invalid-argument"}}
				continue
			}
			if answeredLocal[payload.SlideID] {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "already answered", Reason: "failed-precondition"}}
				continue
			}
			result, err := h.service.Submit(r.Context(), gameID, playerID, payload.SlideID, payload.Submission)
			if err != nil {
				reason := rejectionReason(err)
				// Validation failures stay retryable; everything else —
				// precondition or transient — marks the slide answered
				// locally so the client can never retry into a double
				// count. Never double-count outranks never lose.
				if reason != "invalid-argument" {
					answeredLocal[payload.SlideID] = true
				}
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error(), Reason: reason}}
				continue
			}
			if slide, serr := h.service.SlideStatus(gameID, playerID, payload.SlideID); serr == nil && slide.State == app.SlideAnswered {
				answeredLocal[payload.SlideID] = true
			}
			ack := submitAck{SubmitResult: result}
			if rank, total, rerr := h.service.PlayerRank(gameID, playerID); rerr == nil {
				ack.Rank = rank
				ack.Total = total
			}
			send <- outboundMessage[any]{Type: "submitResult", Payload: ack}
		default:
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

// ServeHost upgrades the host connection: stream snapshots and accept
// sequencing commands.
func (h *WSHandler) ServeHost(w http.ResponseWriter, r *http.Request) {
	gameID := r.URL.Query().Get("gameId")
	if gameID == "" {
		http.Error(w, "missing gameId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	updates, cancel, err := h.service.Subscribe(r.Context(), gameID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer cancel()

	send, closeSignals, writerDone, updatesDone := h.startPumps(conn, updates)

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "advance":
			snap, err := h.service.Advance(r.Context(), gameID)
			if err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error(), Reason: hostReason(err)}}
				continue
			}
			send <- outboundMessage[any]{Type: "snapshot", Payload: snap}
		case "retreat":
			snap, err := h.service.Retreat(r.Context(), gameID)
			if err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
				continue
			}
			send <- outboundMessage[any]{Type: "snapshot", Payload: snap}
		case "processThoughts":
			var payload processPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid payload", Reason: "invalid-argument"}}
				continue
			}
			requestID, err := h.service.ProcessThoughts(r.Context(), gameID, payload.SlideID)
			if err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
				continue
			}
			send <- outboundMessage[any]{Type: "processing", Payload: map[string]string{"requestId": requestID}}
		default:
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

func hostReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrPacingBlocked):
		return "pacing-blocked"
	case errors.Is(err, domain.ErrGameEnded):
		return "failed-precondition"
	default:
		return "internal"
	}
}

// startPumps wires the writer goroutine and the snapshot pump so the
// read loop, the subscription feed, and outbound writes never race on
// the connection.
func (h *WSHandler) startPumps(conn *websocket.Conn, updates <-chan app.Snapshot) (chan outboundMessage[any], chan struct{}, chan struct{}, chan struct{}) {
	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "snapshot", Payload: update}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	return send, closeSignals, writerDone, updatesDone
}
