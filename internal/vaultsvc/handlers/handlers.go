package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/cardvault/vault-services/internal/comm"
	"github.com/cardvault/vault-services/internal/qrcode"
	"github.com/cardvault/vault-services/internal/vaultsvc/models"
	"github.com/cardvault/vault-services/internal/vaultsvc/service"
	"github.com/cardvault/vault-services/internal/vaultsvc/ws"
)

type Handler struct {
	tokenAuth  *jwtauth.JWTAuth
	identity   *service.IdentityService
	requests   *service.RequestService
	validation *service.ValidationService
	upgrader   websocket.Upgrader
	scanFeed   *ws.Ws
}

type Response struct {
	Message string      `json:"message"`
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error"`
}

func NewHandler(identity *service.IdentityService, requests *service.RequestService,
	validation *service.ValidationService, scanFeed *ws.Ws) *Handler {
	return &Handler{
		identity:   identity,
		requests:   requests,
		validation: validation,
		scanFeed:   scanFeed,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (h *Handler) CreateResponse(w http.ResponseWriter, rsp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rsp.Code)

	if err := json.NewEncoder(w).Encode(rsp); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}

func (h *Handler) serviceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrDuplicateEmail):
		h.CreateResponse(w, Response{Code: http.StatusConflict, Error: err.Error()})
	case errors.Is(err, service.ErrNotFound):
		h.CreateResponse(w, Response{Code: http.StatusNotFound, Error: err.Error()})
	case errors.Is(err, service.ErrUnauthorized):
		h.CreateResponse(w, Response{Code: http.StatusForbidden, Error: err.Error()})
	case errors.Is(err, service.ErrRequestProcessed):
		h.CreateResponse(w, Response{Code: http.StatusConflict, Error: err.Error()})
	default:
		log.Errorf("internal error: %v", err)
		h.CreateResponse(w, Response{Code: http.StatusInternalServerError, Error: "internal error"})
	}
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	rsp := Response{
		Message: "vault service is running at port " + os.Getenv("VAULT_SERVICE_PORT"),
		Code:    200,
		Data:    nil,
	}
	if err := json.NewEncoder(w).Encode(rsp); err != nil {
		log.Errorf("failed to encode health response: %v", err)
	}
}

type registerPayload struct {
	Email         string `json:"email"`
	DisplayName   string `json:"display_name"`
	Password      string `json:"password"`
	Phone         string `json:"phone"`
	Country       string `json:"country"`
	Province      string `json:"province"`
	City          string `json:"city"`
	District      string `json:"district"`
	Subdistrict   string `json:"subdistrict"`
	PostalCode    string `json:"postal_code"`
	StreetAddress string `json:"street_address"`
	Note          string `json:"note"`
	PhotoRef      string `json:"photo_ref"`
}

func (h *Handler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var payload registerPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.CreateResponse(w, Response{Code: http.StatusBadRequest, Error: "malformed payload"})
		return
	}

	account, err := h.identity.Register(payload.Email, payload.DisplayName, payload.Password,
		service.RegistrationFields{
			Phone:         payload.Phone,
			Country:       payload.Country,
			Province:      payload.Province,
			City:          payload.City,
			District:      payload.District,
			Subdistrict:   payload.Subdistrict,
			PostalCode:    payload.PostalCode,
			StreetAddress: payload.StreetAddress,
			Note:          payload.Note,
			PhotoRef:      payload.PhotoRef,
		})
	if err != nil {
		h.serviceError(w, err)
		return
	}

	token, err := h.issueToken(account)
	if err != nil {
		h.serviceError(w, err)
		return
	}
	h.CreateResponse(w, Response{
		Message: "registered",
		Code:    http.StatusCreated,
		Data:    map[string]interface{}{"account": account, "token": token},
	})
}

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var payload loginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.CreateResponse(w, Response{Code: http.StatusBadRequest, Error: "malformed payload"})
		return
	}

	account, err := h.identity.Authenticate(payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			h.CreateResponse(w, Response{Code: http.StatusUnauthorized, Error: "invalid credentials"})
			return
		}
		h.serviceError(w, err)
		return
	}

	token, err := h.issueToken(account)
	if err != nil {
		h.serviceError(w, err)
		return
	}
	h.CreateResponse(w, Response{
		Message: "authenticated",
		Code:    http.StatusOK,
		Data:    map[string]interface{}{"account": account, "token": token},
	})
}

func (h *Handler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.identity.Logout(); err != nil {
		h.serviceError(w, err)
		return
	}
	h.CreateResponse(w, Response{Message: "logged out", Code: http.StatusOK})
}

func (h *Handler) MeHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := h.claimAccountID(r)
	if err != nil {
		h.CreateResponse(w, Response{Code: http.StatusUnauthorized, Error: "invalid token"})
		return
	}
	account, err := h.identity.GetAccount(accountID)
	if err != nil {
		h.serviceError(w, err)
		return
	}
	h.CreateResponse(w, Response{Code: http.StatusOK, Data: account})
}

func (h *Handler) ProfileHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := h.claimAccountID(r)
	if err != nil {
		h.CreateResponse(w, Response{Code: http.StatusUnauthorized, Error: "invalid token"})
		return
	}
	profile, err := h.identity.GetProfile(accountID)
	if err != nil {
		h.serviceError(w, err)
		return
	}
	h.CreateResponse(w, Response{Code: http.StatusOK, Data: profile})
}

func (h *Handler) CardHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := h.claimAccountID(r)
	if err != nil {
		h.CreateResponse(w, Response{Code: http.StatusUnauthorized, Error: "invalid token"})
		return
	}
	card, err := h.identity.GetCard(accountID)
	if err != nil {
		h.serviceError(w, err)
		return
	}
	h.CreateResponse(w, Response{Code: http.StatusOK, Data: card})
}

// CardQRHandler exports the caller's card as a QR PNG.
func (h *Handler) CardQRHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := h.claimAccountID(r)
	if err != nil {
		h.CreateResponse(w, Response{Code: http.StatusUnauthorized, Error: "invalid token"})
		return
	}
	card, err := h.identity.GetCard(accountID)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	img, err := qrcode.Encode(card.Code, 256)
	if err != nil {
		h.serviceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if _, err := w.Write(img); err != nil {
		log.Errorf("failed to write card png: %v", err)
	}
}

// CardExportHandler renders the caller's card as a printable artifact:
// the QR image base64-encoded next to the display metadata.
func (h *Handler) CardExportHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := h.claimAccountID(r)
	if err != nil {
		h.CreateResponse(w, Response{Code: http.StatusUnauthorized, Error: "invalid token"})
		return
	}
	card, err := h.identity.GetCard(accountID)
	if err != nil {
		h.serviceError(w, err)
		return
	}
	profile, err := h.identity.GetProfile(accountID)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	artifact, err := qrcode.RenderCard(*card, *profile, 512)
	if err != nil {
		h.serviceError(w, err)
		return
	}
	h.CreateResponse(w, Response{
		Code: http.StatusOK,
		Data: map[string]interface{}{
			"png":  base64.StdEncoding.EncodeToString(artifact.PNG),
			"meta": json.RawMessage(artifact.Meta),
		},
	})
}

func (h *Handler) SubmitRequestHandler(w http.ResponseWriter, r *http.Request) {
	accountID, err := h.claimAccountID(r)
	if err != nil {
		h.CreateResponse(w, Response{Code: http.StatusUnauthorized, Error: "invalid token"})
		return
	}

	var changes models.ProfileChanges
	if err := json.NewDecoder(r.Body).Decode(&changes); err != nil {
		h.CreateResponse(w, Response{Code: http.StatusBadRequest, Error: "malformed payload"})
		return
	}

	req, err := h.requests.Submit(accountID, changes)
	if err != nil {
		h.serviceError(w, err)
		return
	}
	h.CreateResponse(w, Response{Message: "request submitted", Code: http.StatusCreated, Data: req})
}

func (h *Handler) ProfilesHandler(w http.ResponseWriter, r *http.Request) {
	h.CreateResponse(w, Response{Code: http.StatusOK, Data: h.identity.ListAllProfiles()})
}

func (h *Handler) PendingRequestsHandler(w http.ResponseWriter, r *http.Request) {
	h.CreateResponse(w, Response{Code: http.StatusOK, Data: h.requests.ListPending()})
}

type processPayload struct {
	Decision string `json:"decision"`
}

func (h *Handler) ProcessRequestHandler(w http.ResponseWriter, r *http.Request) {
	adminID, err := h.claimAccountID(r)
	if err != nil {
		h.CreateResponse(w, Response{Code: http.StatusUnauthorized, Error: "invalid token"})
		return
	}

	var payload processPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.CreateResponse(w, Response{Code: http.StatusBadRequest, Error: "malformed payload"})
		return
	}

	requestID := chi.URLParam(r, "requestID")
	if err := h.requests.Process(requestID, service.Decision(payload.Decision), adminID); err != nil {
		h.serviceError(w, err)
		return
	}
	h.CreateResponse(w, Response{Message: "request processed", Code: http.StatusOK})
}

func (h *Handler) ResolveCardHandler(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	card, profile, err := h.validation.ResolveCardByCode(code)
	if err != nil {
		h.serviceError(w, err)
		return
	}
	h.CreateResponse(w, Response{
		Code: http.StatusOK,
		Data: map[string]interface{}{"card": card, "profile": profile},
	})
}

// DecodeCardHandler resolves a card from an uploaded still payload.
// Acquisition failure means "no code": nothing touches the store.
func (h *Handler) DecodeCardHandler(w http.ResponseWriter, r *http.Request) {
	source := qrcode.NewImageSource(r.Body)
	code, err := source.Acquire(r.Context())
	if err != nil {
		h.CreateResponse(w, Response{Code: http.StatusUnprocessableEntity, Error: "no decodable code"})
		return
	}

	card, profile, err := h.validation.ResolveCardByCode(code)
	if err != nil {
		h.serviceError(w, err)
		return
	}
	h.CreateResponse(w, Response{
		Code: http.StatusOK,
		Data: map[string]interface{}{"card": card, "profile": profile},
	})
}

type validatePayload struct {
	Code string `json:"code"`
}

func (h *Handler) ValidateCardHandler(w http.ResponseWriter, r *http.Request) {
	adminID, err := h.claimAccountID(r)
	if err != nil {
		h.CreateResponse(w, Response{Code: http.StatusUnauthorized, Error: "invalid token"})
		return
	}

	var payload validatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.CreateResponse(w, Response{Code: http.StatusBadRequest, Error: "malformed payload"})
		return
	}

	if err := h.validation.ValidateCard(payload.Code, adminID); err != nil {
		h.serviceError(w, err)
		return
	}
	h.CreateResponse(w, Response{Message: "card validated", Code: http.StatusOK})
}

// HandleScanSocket upgrades the admin scan feed connection. The acting
// admin account is pinned from the verified token at upgrade time;
// feed messages cannot name a different account.
func (h *Handler) HandleScanSocket(w http.ResponseWriter, r *http.Request) {
	adminID, err := h.claimAccountID(r)
	if err != nil {
		h.CreateResponse(w, Response{Code: http.StatusUnauthorized, Error: "invalid token"})
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Errorf("failed to upgrade to WebSocket: %v", err)
		http.Error(w, "failed to upgrade to WebSocket", http.StatusInternalServerError)
		return
	}

	socketId := uuid.New().String()
	h.scanFeed.StoreConnection(socketId, conn)
	log.Infof("scan feed connection established: %s for account %s", socketId, adminID)

	go h.handleConnection(conn, socketId, adminID)
}

func (h *Handler) handleConnection(conn *websocket.Conn, socketId, accountID string) {
	defer func() {
		log.Infof("closing scan feed connection: %s", socketId)
		conn.Close()
		h.scanFeed.HandleDisconnect(socketId)
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Errorf("scan feed unexpected close for socket %s: %v", socketId, err)
			} else {
				log.Infof("scan feed connection closed for socket: %s", socketId)
			}
			break
		}

		message := &comm.WSMessage{}
		if err := json.Unmarshal(raw, message); err != nil {
			log.Errorf("failed to unmarshal message from socket %s: %v", socketId, err)
			continue
		}

		h.scanFeed.SocketMessage(socketId, accountID, message)
	}
}

func (h *Handler) issueToken(account *models.Account) (string, error) {
	if h.tokenAuth == nil {
		return "", fmt.Errorf("token auth not initialized")
	}
	_, tokenString, err := h.tokenAuth.Encode(map[string]interface{}{
		"account_id": account.ID,
		"role":       account.Role,
	})
	if err != nil {
		return "", fmt.Errorf("encode token: %w", err)
	}
	return tokenString, nil
}

func (h *Handler) claimAccountID(r *http.Request) (string, error) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return "", err
	}
	accountID, ok := claims["account_id"].(string)
	if !ok || accountID == "" {
		return "", fmt.Errorf("missing account_id claim")
	}
	return accountID, nil
}
