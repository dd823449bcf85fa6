package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/cardvault/vault-services/internal/comm"
	"github.com/cardvault/vault-services/internal/qrcode"
	"github.com/cardvault/vault-services/internal/vaultsvc/service"
)

// Ws drives the live scan feed: an admin client pushes candidate codes
// over a socket and gets resolution or validation results back on the
// same socket. The acting admin account comes from the socket's
// verified token, and the validation service re-checks the role on
// every message.
type Ws struct {
	connMap    sync.Map // socketId -> *websocket.Conn
	validation *service.ValidationService
}

func NewWs(validation *service.ValidationService) *Ws {
	return &Ws{validation: validation}
}

// SocketMessage handles one message from an admin client. accountID is
// the authenticated account behind the socket.
func (s *Ws) SocketMessage(socketId, accountID string, message *comm.WSMessage) {
	switch message.Type {
	case "resolve":
		s.handleScan(socketId, accountID, message, false)
	case "validate":
		s.handleScan(socketId, accountID, message, true)
	default:
		log.Warnf("unknown scan feed message type: %s", message.Type)
	}
}

func (s *Ws) handleScan(socketId, accountID string, msg *comm.WSMessage, validate bool) {
	var payload comm.ScanRequest
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		log.Errorf("malformed scan payload from socket %s: %v", socketId, err)
		s.reply(socketId, msg.Type, comm.ScanResult{Message: "malformed scan payload"})
		return
	}

	source := qrcode.StaticSource{Code: payload.Code}
	code, err := source.Acquire(context.Background())
	if err != nil {
		// acquisition failure means no code; nothing touches the store
		s.reply(socketId, msg.Type, comm.ScanResult{Message: "no code acquired"})
		return
	}

	if validate {
		if err := s.validation.ValidateCard(code, accountID); err != nil {
			s.reply(socketId, msg.Type, comm.ScanResult{Code: code, Message: scanErrorMessage(err)})
			return
		}
	}

	card, profile, err := s.validation.ResolveCardByCode(code)
	if err != nil {
		s.reply(socketId, msg.Type, comm.ScanResult{Code: code, Message: scanErrorMessage(err)})
		return
	}

	s.reply(socketId, msg.Type, comm.ScanResult{
		Code:    code,
		Valid:   card.IsValid,
		Message: "card resolved",
		Card:    card,
		Profile: profile,
	})
}

func scanErrorMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return "unknown card code"
	case errors.Is(err, service.ErrUnauthorized):
		return "admin role required"
	default:
		return "scan failed"
	}
}

func (s *Ws) reply(socketId string, msgType string, result comm.ScanResult) {
	conn, ok := s.GetConnection(socketId)
	if !ok {
		log.Warnf("no connection for socket %s", socketId)
		return
	}

	data, err := json.Marshal(result)
	if err != nil {
		log.Errorf("failed to marshal scan result: %v", err)
		return
	}
	out := comm.WSMessage{Type: msgType + "_result", Data: data, SocketId: socketId}
	raw, err := json.Marshal(out)
	if err != nil {
		log.Errorf("failed to marshal scan reply: %v", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, raw); err != nil {
		log.Errorf("failed to write scan reply to socket %s: %v", socketId, err)
	}
}

func (s *Ws) StoreConnection(socketId string, conn *websocket.Conn) {
	s.connMap.Store(socketId, conn)
}

func (s *Ws) GetConnection(socketId string) (*websocket.Conn, bool) {
	conn, ok := s.connMap.Load(socketId)
	if !ok {
		return nil, false
	}
	return conn.(*websocket.Conn), true
}

func (s *Ws) HandleDisconnect(socketId string) {
	s.connMap.Delete(socketId)
}
