package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"farmwise/config"
	"farmwise/models"
	"farmwise/routes"
	"farmwise/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	router *gin.Engine
	db     *gorm.DB
	tokens *services.TokenService
	hub    *services.Hub
	chat   *services.ChatService
}

func setup(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))

	cfg := config.Config{
		Port:            0,
		JWTSecret:       "test-secret",
		JWTTTL:          time.Hour,
		CORSOrigin:      "*",
		UploadDir:       t.TempDir(),
		HistoryPageSize: 200,
	}

	hub := services.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	tokens := services.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
	chat := services.NewChatService(db, hub, cfg.HistoryPageSize)

	router := routes.RegisterRoutes(routes.Deps{
		DB:            db,
		Tokens:        tokens,
		Hub:           hub,
		Chat:          chat,
		Conversations: services.NewConversationService(db),
		Cfg:           cfg,
	})
	return &fixture{router: router, db: db, tokens: tokens, hub: hub, chat: chat}
}

func (f *fixture) createUser(t *testing.T, username, role string) (*models.User, string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	u := &models.User{Username: username, Email: username + "@farmwise.test", Password: string(hash), Role: role}
	require.NoError(t, f.db.Create(u).Error)
	token, err := f.tokens.Generate(u)
	require.NoError(t, err)
	return u, token
}

func (f *fixture) do(t *testing.T, method, path, token string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *fixture) doJSON(t *testing.T, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	buf := &bytes.Buffer{}
	if payload != nil {
		require.NoError(t, json.NewEncoder(buf).Encode(payload))
	}
	return f.do(t, method, path, token, buf, "application/json")
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

// multipartBody builds a multipart form from fields plus optional files
// (field name → file name, tiny fixed content).
func multipartBody(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for field, name := range files {
		fw, err := mw.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = fw.Write([]byte("test-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}
