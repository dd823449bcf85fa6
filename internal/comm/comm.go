package comm

import (
	"encoding/json"

	"github.com/cardvault/vault-services/internal/vaultsvc/models"
)

type WSMessage struct {
	Type     string          `json:"type"` // e.g. "resolve", "validate"
	Data     json.RawMessage `json:"data"`
	SocketId string          `json:"socketid"`
}

// ScanRequest is pushed by the admin client for every candidate code
// the scanner yields. The acting admin is the socket's authenticated
// account, never part of the payload.
type ScanRequest struct {
	Code string `json:"code"`
}

// ScanResult answers a scan request on the same socket.
type ScanResult struct {
	Code    string          `json:"code"`
	Valid   bool            `json:"valid"`
	Message string          `json:"message"`
	Card    *models.Card    `json:"card,omitempty"`
	Profile *models.Profile `json:"profile,omitempty"`
}
