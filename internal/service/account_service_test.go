package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/walletvault/internal/config"
	"github.com/walletvault/internal/models"
	"github.com/walletvault/internal/repository"
	"github.com/walletvault/internal/verifycode"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAccountServiceTest(t *testing.T) (*AccountService, *fakeCodeSender, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:account_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	cfg := &config.Config{}
	cfg.UserJWT.SecretKey = "account-service-test-secret-key-0123456789"
	cfg.UserJWT.ExpireHours = 24
	cfg.RecoveryID.MaxRetries = 20
	cfg.Email.VerifyCode = config.VerifyCodeConfig{ExpireMinutes: 10, MaxAttempts: 5}

	sender := &fakeCodeSender{}
	verifySvc := NewVerifyCodeService(cfg.Email.VerifyCode, verifycode.NewMemoryStore(), sender)
	userRepo := repository.NewUserRepository(db)
	return NewAccountService(cfg, userRepo, verifySvc, nil), sender, db
}

func testAccountInput(suffix string) CreateAccountInput {
	return CreateAccountInput{
		Email:         fmt.Sprintf("user_%s@example.com", suffix),
		WalletAddress: fmt.Sprintf("0xabc%s", suffix),
		WalletName:    fmt.Sprintf("wallet-%s", suffix),
		Blobs:         `{"cipher":"aes-gcm","payload":"deadbeef"}`,
	}
}

func TestCreateAccountSuccess(t *testing.T) {
	svc, _, _ := setupAccountServiceTest(t)

	user, err := svc.CreateAccount(CreateAccountInput{
		Email:         "  Alice@Example.COM ",
		WalletAddress: " 0xABC001 ",
		WalletName:    " alice-main ",
		Blobs:         `{"payload":"deadbeef"}`,
	})
	if err != nil {
		t.Fatalf("create account failed: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("email must be stored lowercase, got %q", user.Email)
	}
	if user.WalletAddress != "0xABC001" || user.WalletName != "alice-main" {
		t.Fatalf("wallet fields must be trimmed, got %q / %q", user.WalletAddress, user.WalletName)
	}
	if !recoveryIDPattern.MatchString(user.RecoveryID) {
		t.Fatalf("unexpected recovery id: %q", user.RecoveryID)
	}
	if user.SubscriptionStatus != "inactive" {
		t.Fatalf("new account must be inactive, got %q", user.SubscriptionStatus)
	}
	if user.HasCredentials() {
		t.Fatalf("new account must not have credentials")
	}
}

func TestCreateAccountValidation(t *testing.T) {
	svc, _, _ := setupAccountServiceTest(t)

	if _, err := svc.CreateAccount(CreateAccountInput{Email: "a@b.com"}); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}

	input := testAccountInput("bademail")
	input.Email = "not-an-email"
	if _, err := svc.CreateAccount(input); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
}

func TestCreateAccountUniqueConflicts(t *testing.T) {
	svc, _, _ := setupAccountServiceTest(t)

	base := testAccountInput("base")
	if _, err := svc.CreateAccount(base); err != nil {
		t.Fatalf("create base account failed: %v", err)
	}

	dup := testAccountInput("other")
	dup.Email = "USER_BASE@example.com" // 邮箱判重不区分大小写
	if _, err := svc.CreateAccount(dup); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}

	dup = testAccountInput("other")
	dup.WalletName = base.WalletName
	if _, err := svc.CreateAccount(dup); !errors.Is(err, ErrWalletNameExists) {
		t.Fatalf("expected ErrWalletNameExists, got %v", err)
	}

	dup = testAccountInput("other")
	dup.WalletAddress = base.WalletAddress
	if _, err := svc.CreateAccount(dup); !errors.Is(err, ErrWalletAddressExists) {
		t.Fatalf("expected ErrWalletAddressExists, got %v", err)
	}
}

func TestCreateAccountRecoveryIDCollisionRetries(t *testing.T) {
	svc, _, _ := setupAccountServiceTest(t)

	first, err := svc.CreateAccount(testAccountInput("first"))
	if err != nil {
		t.Fatalf("create first account failed: %v", err)
	}

	// 前两次生成与已有账户撞库，第三次换到空闲值
	candidates := []string{first.RecoveryID, first.RecoveryID, "ZZZZ999"}
	calls := 0
	svc.generateRecoveryID = func() (string, error) {
		id := candidates[calls]
		calls++
		return id, nil
	}

	second, err := svc.CreateAccount(testAccountInput("second"))
	if err != nil {
		t.Fatalf("create second account failed: %v", err)
	}
	if second.RecoveryID != "ZZZZ999" {
		t.Fatalf("expected retried recovery id ZZZZ999, got %q", second.RecoveryID)
	}
	if calls != 3 {
		t.Fatalf("expected 3 generator calls, got %d", calls)
	}
}

func TestCreateAccountRecoveryIDExhausted(t *testing.T) {
	svc, _, _ := setupAccountServiceTest(t)
	svc.cfg.RecoveryID.MaxRetries = 3

	first, err := svc.CreateAccount(testAccountInput("first"))
	if err != nil {
		t.Fatalf("create first account failed: %v", err)
	}

	calls := 0
	svc.generateRecoveryID = func() (string, error) {
		calls++
		return first.RecoveryID, nil
	}

	if _, err := svc.CreateAccount(testAccountInput("second")); !errors.Is(err, ErrRecoveryIDExhausted) {
		t.Fatalf("expected ErrRecoveryIDExhausted, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected exactly 3 retries, got %d", calls)
	}
}

func TestSetPasswordAndLogin(t *testing.T) {
	svc, sender, _ := setupAccountServiceTest(t)
	ctx := context.Background()

	user, err := svc.CreateAccount(testAccountInput("login"))
	if err != nil {
		t.Fatalf("create account failed: %v", err)
	}

	// 未设置密码时登录要求与密码错误区分
	if _, err := svc.Login(user.Email, "anything"); !errors.Is(err, ErrCredentialsNotConfigured) {
		t.Fatalf("expected ErrCredentialsNotConfigured, got %v", err)
	}

	if err := svc.verifyCodes.Issue(ctx, user.Email); err != nil {
		t.Fatalf("issue code failed: %v", err)
	}
	if err := svc.SetPassword(ctx, user.Email, sender.lastCode(t), "str0ng-password"); err != nil {
		t.Fatalf("set password failed: %v", err)
	}

	result, err := svc.Login("USER_LOGIN@example.com", "str0ng-password")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if result.Token == "" {
		t.Fatalf("login must return a token")
	}
	claims, err := svc.ParseUserJWT(result.Token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if claims.UserID != user.ID || claims.Email != user.Email {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	if _, err := svc.Login(user.Email, "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login("ghost@example.com", "whatever"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSetPasswordRejectsBadInput(t *testing.T) {
	svc, sender, _ := setupAccountServiceTest(t)
	ctx := context.Background()

	user, err := svc.CreateAccount(testAccountInput("reset"))
	if err != nil {
		t.Fatalf("create account failed: %v", err)
	}

	if err := svc.SetPassword(ctx, user.Email, "123456", "short"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
	if err := svc.SetPassword(ctx, "ghost@example.com", "123456", "str0ng-password"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := svc.SetPassword(ctx, user.Email, "123456", "str0ng-password"); !errors.Is(err, ErrVerifyCodeNotFound) {
		t.Fatalf("expected ErrVerifyCodeNotFound, got %v", err)
	}

	if err := svc.verifyCodes.Issue(ctx, user.Email); err != nil {
		t.Fatalf("issue code failed: %v", err)
	}
	wrong := "000000"
	if wrong == sender.lastCode(t) {
		wrong = "000001"
	}
	if err := svc.SetPassword(ctx, user.Email, wrong, "str0ng-password"); !errors.Is(err, ErrVerifyCodeInvalid) {
		t.Fatalf("expected ErrVerifyCodeInvalid, got %v", err)
	}
}

func TestSetPasswordReplacesCredentials(t *testing.T) {
	svc, sender, _ := setupAccountServiceTest(t)
	ctx := context.Background()

	user, err := svc.CreateAccount(testAccountInput("rotate"))
	if err != nil {
		t.Fatalf("create account failed: %v", err)
	}

	if err := svc.verifyCodes.Issue(ctx, user.Email); err != nil {
		t.Fatalf("issue code failed: %v", err)
	}
	if err := svc.SetPassword(ctx, user.Email, sender.lastCode(t), "first-password"); err != nil {
		t.Fatalf("set first password failed: %v", err)
	}
	if err := svc.verifyCodes.Issue(ctx, user.Email); err != nil {
		t.Fatalf("issue second code failed: %v", err)
	}
	if err := svc.SetPassword(ctx, user.Email, sender.lastCode(t), "second-password"); err != nil {
		t.Fatalf("set second password failed: %v", err)
	}

	if _, err := svc.Login(user.Email, "first-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password must stop working, got %v", err)
	}
	if _, err := svc.Login(user.Email, "second-password"); err != nil {
		t.Fatalf("new password must work, got %v", err)
	}
}

func TestNameByWalletAddress(t *testing.T) {
	svc, _, _ := setupAccountServiceTest(t)

	input := testAccountInput("lookup")
	if _, err := svc.CreateAccount(input); err != nil {
		t.Fatalf("create account failed: %v", err)
	}

	name, err := svc.NameByWalletAddress(input.WalletAddress)
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if name != input.WalletName {
		t.Fatalf("unexpected wallet name, want %q, got %q", input.WalletName, name)
	}

	if _, err := svc.NameByWalletAddress("0xdoesnotexist"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.NameByWalletAddress("  "); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
}
