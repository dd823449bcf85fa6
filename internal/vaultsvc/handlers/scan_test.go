package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardvault/vault-services/internal/comm"
	"github.com/cardvault/vault-services/internal/localstore"
	"github.com/cardvault/vault-services/internal/vaultsvc/handlers"
	"github.com/cardvault/vault-services/internal/vaultsvc/models"
	"github.com/cardvault/vault-services/internal/vaultsvc/service"
	"github.com/cardvault/vault-services/internal/vaultsvc/store"
	"github.com/cardvault/vault-services/internal/vaultsvc/ws"
)

const testJWTKey = "test-secret"

type testServer struct {
	srv      *httptest.Server
	identity *service.IdentityService
	cards    *store.CardStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	t.Setenv("JWT_SECRET_KEY", testJWTKey)

	db, err := localstore.Open(t.TempDir())
	require.NoError(t, err)
	accounts, err := store.NewAccountStore(db)
	require.NoError(t, err)
	profiles, err := store.NewProfileStore(db)
	require.NoError(t, err)
	cards, err := store.NewCardStore(db)
	require.NoError(t, err)
	requests, err := store.NewRequestStore(db)
	require.NoError(t, err)
	sessions, err := store.NewSessionStore(db)
	require.NoError(t, err)

	identity := service.NewIdentityService(accounts, profiles, cards, sessions)
	requestService := service.NewRequestService(requests, profiles, accounts)
	validation := service.NewValidationService(cards, profiles, accounts)
	require.NoError(t, identity.Bootstrap())

	h := handlers.NewHandler(identity, requestService, validation, ws.NewWs(validation))
	h.InitAuth()
	r := chi.NewRouter()
	h.SetRoutes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &testServer{srv: srv, identity: identity, cards: cards}
}

func (ts *testServer) scanURL() string {
	return "ws" + strings.TrimPrefix(ts.srv.URL, "http") + "/v1/admin/scan"
}

func mintToken(t *testing.T, account *models.Account) string {
	t.Helper()
	tokens := jwtauth.New("HS256", []byte(testJWTKey), nil)
	_, token, err := tokens.Encode(map[string]interface{}{
		"account_id": account.ID,
		"role":       account.Role,
	})
	require.NoError(t, err)
	return token
}

func registerAlice(t *testing.T, ts *testServer) (*models.Account, *models.Card) {
	t.Helper()
	account, err := ts.identity.Register("alice@example.test", "Alice", "pw", service.RegistrationFields{})
	require.NoError(t, err)
	card, err := ts.identity.GetCard(account.ID)
	require.NoError(t, err)
	return account, card
}

func TestScanFeedRejectsUnauthenticatedDial(t *testing.T) {
	ts := newTestServer(t)
	_, card := registerAlice(t, ts)

	conn, resp, err := websocket.DefaultDialer.Dial(ts.scanURL(), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Nil(t, conn)

	// the card is untouched
	got := ts.cards.GetByCode(card.Code)
	require.NotNil(t, got)
	assert.Nil(t, got.ValidatedAt)
	assert.Empty(t, got.ValidatedBy)
}

func TestScanFeedRejectsNonAdminToken(t *testing.T) {
	ts := newTestServer(t)
	account, card := registerAlice(t, ts)

	token := mintToken(t, account)
	conn, resp, err := websocket.DefaultDialer.Dial(ts.scanURL()+"?jwt="+token, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Nil(t, conn)

	got := ts.cards.GetByCode(card.Code)
	require.NotNil(t, got)
	assert.Nil(t, got.ValidatedAt)
}

func TestScanFeedValidatesAsAuthenticatedAdmin(t *testing.T) {
	ts := newTestServer(t)
	_, card := registerAlice(t, ts)

	admin, err := ts.identity.GetAccount("admin-1")
	require.NoError(t, err)

	conn, _, err := websocket.DefaultDialer.Dial(ts.scanURL()+"?jwt="+mintToken(t, admin), nil)
	require.NoError(t, err)
	defer conn.Close()

	data, err := json.Marshal(comm.ScanRequest{Code: card.Code})
	require.NoError(t, err)
	raw, err := json.Marshal(comm.WSMessage{Type: "validate", Data: data})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, raw))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, reply, err := conn.ReadMessage()
	require.NoError(t, err)

	var out comm.WSMessage
	require.NoError(t, json.Unmarshal(reply, &out))
	assert.Equal(t, "validate_result", out.Type)

	var result comm.ScanResult
	require.NoError(t, json.Unmarshal(out.Data, &result))
	assert.True(t, result.Valid)
	assert.Equal(t, card.Code, result.Code)

	// the acting admin is the socket's account, not anything the
	// client claimed in the payload
	got := ts.cards.GetByCode(card.Code)
	require.NotNil(t, got)
	require.NotNil(t, got.ValidatedAt)
	assert.Equal(t, "admin-1", got.ValidatedBy)
}

func TestDecodeCardFromUpload(t *testing.T) {
	ts := newTestServer(t)
	_, card := registerAlice(t, ts)

	admin, err := ts.identity.GetAccount("admin-1")
	require.NoError(t, err)
	token := mintToken(t, admin)

	decode := func(body string) *http.Response {
		req, err := http.NewRequest(http.MethodPost, ts.srv.URL+"/v1/admin/cards/decode", strings.NewReader(body))
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := ts.srv.Client().Do(req)
		require.NoError(t, err)
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}

	resp := decode(card.Code + "\n")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// an empty payload holds no decodable code
	resp = decode("   ")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = decode("not-a-code")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
