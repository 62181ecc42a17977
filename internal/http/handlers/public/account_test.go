package public

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/walletvault/internal/config"
	"github.com/walletvault/internal/models"
	"github.com/walletvault/internal/provider"
	"github.com/walletvault/internal/repository"
	"github.com/walletvault/internal/service"
	"github.com/walletvault/internal/verifycode"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type recordingSender struct {
	codes []string
}

func (s *recordingSender) SendVerifyCode(_ string, code string) error {
	s.codes = append(s.codes, code)
	return nil
}

func setupHandlerTest(t *testing.T) (*gin.Engine, *recordingSender, *provider.Container) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:public_handler_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	cfg := &config.Config{}
	cfg.UserJWT.SecretKey = "public-handler-test-secret-key-0123456789"
	cfg.UserJWT.ExpireHours = 24
	cfg.RecoveryID.MaxRetries = 20
	cfg.Email.VerifyCode = config.VerifyCodeConfig{ExpireMinutes: 10, MaxAttempts: 5}

	sender := &recordingSender{}
	userRepo := repository.NewUserRepository(db)
	verifySvc := service.NewVerifyCodeService(cfg.Email.VerifyCode, verifycode.NewMemoryStore(), sender)
	container := &provider.Container{
		Config:            cfg,
		UserRepo:          userRepo,
		VerifyCodeService: verifySvc,
		AccountService:    service.NewAccountService(cfg, userRepo, verifySvc, nil),
		CaptchaService:    service.NewCaptchaService(config.CaptchaConfig{}),
	}

	handler := New(container)
	engine := gin.New()
	engine.POST("/api/v1/auth/create-account", handler.CreateAccount)
	engine.POST("/api/v1/auth/login", handler.Login)
	engine.POST("/api/v1/auth/password", handler.SetPassword)
	engine.POST("/api/v1/auth/verify-code", handler.VerifyCode)
	engine.GET("/api/v1/public/name/:wallet_address", handler.WalletName)
	return engine, sender, container
}

func doJSONRequest(t *testing.T, engine *gin.Engine, method, path string, payload interface{}) (int, map[string]interface{}) {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatalf("encode payload failed: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	var parsed map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &parsed); err != nil {
		t.Fatalf("decode response failed: %v (%s)", err, rec.Body.String())
	}
	return rec.Code, parsed
}

func statusCode(t *testing.T, body map[string]interface{}) int {
	t.Helper()
	value, ok := body["status_code"].(float64)
	if !ok {
		t.Fatalf("missing status_code in response: %v", body)
	}
	return int(value)
}

func TestCreateAccountEndpoint(t *testing.T) {
	engine, _, _ := setupHandlerTest(t)

	httpStatus, body := doJSONRequest(t, engine, http.MethodPost, "/api/v1/auth/create-account", gin.H{
		"email":          "alice@example.com",
		"wallet_address": "0xabc001",
		"wallet_name":    "alice-main",
		"blobs":          `{"payload":"deadbeef"}`,
	})
	if httpStatus != http.StatusOK || statusCode(t, body) != 0 {
		t.Fatalf("unexpected response: %d %v", httpStatus, body)
	}
	data := body["data"].(map[string]interface{})
	if data["recovery_id"] == "" {
		t.Fatalf("response must carry the recovery id")
	}

	// 重复邮箱
	_, body = doJSONRequest(t, engine, http.MethodPost, "/api/v1/auth/create-account", gin.H{
		"email":          "ALICE@example.com",
		"wallet_address": "0xabc002",
		"wallet_name":    "alice-second",
		"blobs":          `{"payload":"deadbeef"}`,
	})
	if statusCode(t, body) != 409 {
		t.Fatalf("expected conflict status, got %v", body)
	}
	if body["msg"] != "email already exists" {
		t.Fatalf("unexpected conflict message: %v", body["msg"])
	}
}

func TestLoginEndpointHidesAccountExistence(t *testing.T) {
	engine, sender, container := setupHandlerTest(t)

	_, body := doJSONRequest(t, engine, http.MethodPost, "/api/v1/auth/create-account", gin.H{
		"email":          "bob@example.com",
		"wallet_address": "0xbob",
		"wallet_name":    "bob-wallet",
		"blobs":          `{"payload":"x"}`,
	})
	if statusCode(t, body) != 0 {
		t.Fatalf("create account failed: %v", body)
	}
	recoveryID, _ := body["data"].(map[string]interface{})["recovery_id"].(string)
	if recoveryID == "" {
		t.Fatalf("create account must return the recovery id")
	}

	// 未设置密码：与密码错误区分
	_, body = doJSONRequest(t, engine, http.MethodPost, "/api/v1/auth/login", gin.H{
		"email": "bob@example.com", "password": "whatever",
	})
	if statusCode(t, body) != 401 || body["msg"] != "password not set for this account" {
		t.Fatalf("unexpected response: %v", body)
	}

	// 设置密码后，密码错误与账户不存在须返回同一文案
	if err := container.VerifyCodeService.Issue(context.Background(), "bob@example.com"); err != nil {
		t.Fatalf("issue code failed: %v", err)
	}
	_, body = doJSONRequest(t, engine, http.MethodPost, "/api/v1/auth/password", gin.H{
		"email": "bob@example.com", "code": sender.codes[len(sender.codes)-1], "password": "str0ng-password",
	})
	if statusCode(t, body) != 0 {
		t.Fatalf("set password failed: %v", body)
	}

	_, wrongPass := doJSONRequest(t, engine, http.MethodPost, "/api/v1/auth/login", gin.H{
		"email": "bob@example.com", "password": "wrong",
	})
	_, unknownUser := doJSONRequest(t, engine, http.MethodPost, "/api/v1/auth/login", gin.H{
		"email": "ghost@example.com", "password": "wrong",
	})
	if wrongPass["msg"] != unknownUser["msg"] {
		t.Fatalf("login errors must not reveal account existence: %v vs %v", wrongPass["msg"], unknownUser["msg"])
	}
	if statusCode(t, wrongPass) != 401 || statusCode(t, unknownUser) != 401 {
		t.Fatalf("expected unauthorized for both cases")
	}

	// 正确密码
	_, body = doJSONRequest(t, engine, http.MethodPost, "/api/v1/auth/login", gin.H{
		"email": "bob@example.com", "password": "str0ng-password",
	})
	if statusCode(t, body) != 0 {
		t.Fatalf("login failed: %v", body)
	}
	data := body["data"].(map[string]interface{})
	if data["token"] == "" {
		t.Fatalf("login must return a token")
	}
	// 登录返回的账户信息须带恢复 ID，丢失后仍可从此处找回
	userView, _ := data["user"].(map[string]interface{})
	if userView["recovery_id"] != recoveryID {
		t.Fatalf("login user view must carry recovery_id %q, got %v", recoveryID, userView)
	}
}

func TestWalletNameEndpoint(t *testing.T) {
	engine, _, _ := setupHandlerTest(t)

	_, body := doJSONRequest(t, engine, http.MethodPost, "/api/v1/auth/create-account", gin.H{
		"email":          "carol@example.com",
		"wallet_address": "0xcarol",
		"wallet_name":    "carol-wallet",
		"blobs":          `{"payload":"x"}`,
	})
	if statusCode(t, body) != 0 {
		t.Fatalf("create account failed: %v", body)
	}

	_, body = doJSONRequest(t, engine, http.MethodGet, "/api/v1/public/name/0xcarol", nil)
	if statusCode(t, body) != 0 {
		t.Fatalf("lookup failed: %v", body)
	}
	data := body["data"].(map[string]interface{})
	if data["wallet_name"] != "carol-wallet" {
		t.Fatalf("unexpected wallet name: %v", data["wallet_name"])
	}

	_, body = doJSONRequest(t, engine, http.MethodGet, "/api/v1/public/name/0xmissing", nil)
	if statusCode(t, body) != 404 {
		t.Fatalf("expected not found, got %v", body)
	}
}

func TestVerifyCodeEndpoint(t *testing.T) {
	engine, sender, container := setupHandlerTest(t)

	if err := container.VerifyCodeService.Issue(context.Background(), "dave@example.com"); err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	code := sender.codes[len(sender.codes)-1]

	_, body := doJSONRequest(t, engine, http.MethodPost, "/api/v1/auth/verify-code", gin.H{
		"email": "dave@example.com", "code": "000000",
	})
	if statusCode(t, body) != 400 || body["msg"] != "verification code invalid" {
		t.Fatalf("unexpected response: %v", body)
	}

	_, body = doJSONRequest(t, engine, http.MethodPost, "/api/v1/auth/verify-code", gin.H{
		"email": "dave@example.com", "code": code,
	})
	if statusCode(t, body) != 0 {
		t.Fatalf("verify failed: %v", body)
	}
	data := body["data"].(map[string]interface{})
	if data["verified"] != true {
		t.Fatalf("expected verified true, got %v", data)
	}
}
