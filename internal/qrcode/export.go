package qrcode

import (
	"encoding/json"
	"time"

	"github.com/cardvault/vault-services/internal/vaultsvc/models"
)

// CardArtifact is the printable export of a resolved card: the QR
// image plus a JSON sidecar of the display fields. Rendering never
// mutates store data.
type CardArtifact struct {
	PNG  []byte `json:"-"`
	Meta []byte `json:"-"`
}

type cardMeta struct {
	DisplayName string     `json:"display_name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone,omitempty"`
	Address     string     `json:"address,omitempty"`
	Code        string     `json:"code"`
	IsValid     bool       `json:"is_valid"`
	CreatedAt   time.Time  `json:"created_at"`
	ValidatedAt *time.Time `json:"validated_at,omitempty"`
}

// RenderCard produces the export artifact for a card and its owning
// profile.
func RenderCard(card models.Card, profile models.Profile, size int) (*CardArtifact, error) {
	img, err := Encode(card.Code, size)
	if err != nil {
		return nil, err
	}

	meta, err := json.MarshalIndent(cardMeta{
		DisplayName: profile.DisplayName,
		Email:       profile.Email,
		Phone:       profile.Phone,
		Address:     profile.Address,
		Code:        card.Code,
		IsValid:     card.IsValid,
		CreatedAt:   card.CreatedAt,
		ValidatedAt: card.ValidatedAt,
	}, "", "  ")
	if err != nil {
		return nil, err
	}

	return &CardArtifact{PNG: img, Meta: meta}, nil
}
