package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"crm-copilot/backend/internal/auth"
	"crm-copilot/backend/internal/crm"
	"crm-copilot/backend/internal/models"
	"crm-copilot/backend/pkg/jwt"
	"crm-copilot/backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type staticUserRepo struct {
	user *models.User
}

func (r *staticUserRepo) GetByExternalUID(ctx context.Context, uid string) (*models.User, error) {
	if r.user != nil && r.user.ExternalUID == uid {
		return r.user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type nopActivityStore struct{}

func (nopActivityStore) ListRecent(ctx context.Context, userID uint, limit int) ([]models.Activity, error) {
	return nil, nil
}

func (nopActivityStore) Create(ctx context.Context, activity *models.Activity) error {
	return nil
}

func newTestHandler(t *testing.T) (*Handler, *jwt.Service) {
	t.Helper()

	log := logger.New(logger.Config{Level: "error"})
	tokens := jwt.NewService("handler-test-secret", time.Hour)
	repo := &staticUserRepo{user: &models.User{ID: 7, ExternalUID: "uid-7", DisplayName: "Dana", Email: "dana@example.com"}}
	verifier := auth.NewVerifier(tokens, repo, nil, 0, log)

	hub := NewHub(&fakeChatService{}, &fakeAssembler{}, &fakeGenerator{}, log)
	go hub.Run()

	recorder := crm.NewActivityRecorder(nopActivityStore{}, log)
	return NewHandler(hub, verifier, recorder, log, HandlerConfig{}), tokens
}

func newHandlerServer(t *testing.T) (*httptest.Server, *jwt.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	handler, tokens := newTestHandler(t)
	engine := gin.New()
	engine.GET("/ws/chat", handler.ServeWS)

	server := httptest.NewServer(engine)
	t.Cleanup(server.Close)
	return server, tokens
}

func TestServeWSRefusesMissingToken(t *testing.T) {
	server, _ := newHandlerServer(t)

	resp, err := http.Get(server.URL + "/ws/chat")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServeWSRefusesInvalidToken(t *testing.T) {
	server, _ := newHandlerServer(t)

	resp, err := http.Get(server.URL + "/ws/chat?token=not-a-token")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServeWSRefusesUnknownSubject(t *testing.T) {
	server, tokens := newHandlerServer(t)

	token, err := tokens.GenerateToken("uid-unknown", "ghost@example.com", "Ghost")
	require.NoError(t, err)

	resp, err := http.Get(server.URL + "/ws/chat?token=" + token)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServeWSUpgradesWithValidToken(t *testing.T) {
	server, tokens := newHandlerServer(t)

	token, err := tokens.GenerateToken("uid-7", "dana@example.com", "Dana")
	require.NoError(t, err)

	wsURL := strings.Replace(server.URL, "http://", "ws://", 1) + "/ws/chat?token=" + token
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	defer resp.Body.Close()

	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
}

func TestBearerTokenExtraction(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/ws/chat?token=from-query", nil)
	assert.Equal(t, "from-query", bearerToken(c))

	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/ws/chat", nil)
	c.Request.Header.Set("Authorization", "Bearer from-header")
	assert.Equal(t, "from-header", bearerToken(c))

	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/ws/chat", nil)
	assert.Equal(t, "", bearerToken(c))
}
