package access_test

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Abraxas-365/fateweaver/pkg/access"
	"github.com/Abraxas-365/fateweaver/pkg/errx"
	"github.com/gofiber/fiber/v2"
)

// --- Table token tests ---

func TestTableToken_RoundTrip(t *testing.T) {
	svc := access.NewTokenService("table-secret", 0)

	minted, err := svc.MintTableToken(access.RolePlayer)
	if err != nil {
		t.Fatalf("MintTableToken failed: %v", err)
	}
	if minted.Token == "" {
		t.Fatal("expected a signed token")
	}
	if !minted.ExpiresAt.After(time.Now()) {
		t.Fatalf("expected a future expiry, got %v", minted.ExpiresAt)
	}

	claims, err := svc.ValidateTableToken(minted.Token)
	if err != nil {
		t.Fatalf("ValidateTableToken failed: %v", err)
	}
	if claims.Role != access.RolePlayer {
		t.Fatalf("expected player role, got %q", claims.Role)
	}
}

func TestTableToken_EmptyRoleDefaultsToPlayer(t *testing.T) {
	svc := access.NewTokenService("table-secret", time.Hour)

	minted, err := svc.MintTableToken("")
	if err != nil {
		t.Fatalf("MintTableToken failed: %v", err)
	}

	claims, err := svc.ValidateTableToken(minted.Token)
	if err != nil {
		t.Fatalf("ValidateTableToken failed: %v", err)
	}
	if claims.Role != access.RolePlayer {
		t.Fatalf("expected player role, got %q", claims.Role)
	}
}

func TestTableToken_Expired(t *testing.T) {
	svc := access.NewTokenService("table-secret", -time.Minute)

	minted, err := svc.MintTableToken(access.RolePlayer)
	if err != nil {
		t.Fatalf("MintTableToken failed: %v", err)
	}

	_, err = svc.ValidateTableToken(minted.Token)
	if err == nil {
		t.Fatal("expected an expired token to be rejected")
	}
	var e *errx.Error
	if !errx.As(err, &e) || e.Code != "ACCESS.UNAUTHORIZED" {
		t.Fatalf("expected ACCESS.UNAUTHORIZED, got %v", err)
	}
}

func TestTableToken_WrongSecret(t *testing.T) {
	minted, err := access.NewTokenService("table-secret", time.Hour).MintTableToken(access.RolePlayer)
	if err != nil {
		t.Fatalf("MintTableToken failed: %v", err)
	}

	other := access.NewTokenService("another-secret", time.Hour)
	if _, err := other.ValidateTableToken(minted.Token); err == nil {
		t.Fatal("expected a token signed with another secret to be rejected")
	}
}

// --- Game master key tests ---

func TestGameMasterKey_HashAndVerify(t *testing.T) {
	hash, err := access.HashGameMasterKey("mellon")
	if err != nil {
		t.Fatalf("HashGameMasterKey failed: %v", err)
	}

	if err := access.VerifyGameMasterKey(hash, "mellon"); err != nil {
		t.Fatalf("expected the right key to verify, got %v", err)
	}

	err = access.VerifyGameMasterKey(hash, "friend")
	var e *errx.Error
	if !errx.As(err, &e) || e.Code != "ACCESS.INVALID_GM_KEY" {
		t.Fatalf("expected ACCESS.INVALID_GM_KEY, got %v", err)
	}

	if err := access.VerifyGameMasterKey("", "mellon"); err == nil {
		t.Fatal("expected an empty hash to reject every key")
	}
	if err := access.VerifyGameMasterKey(hash, ""); err == nil {
		t.Fatal("expected an empty key to be rejected")
	}
}

// --- Middleware tests ---

func newProtectedApp(svc *access.TokenService, gmKeyHash string) *fiber.App {
	mw := access.NewMiddleware(svc, gmKeyHash)
	app := fiber.New()
	app.Get("/table", mw.RequireTable(), func(c *fiber.Ctx) error {
		claims, _ := c.Locals("table_claims").(*access.TableClaims)
		if claims == nil {
			return c.Status(fiber.StatusInternalServerError).SendString("no claims in locals")
		}
		return c.JSON(fiber.Map{"role": claims.Role})
	})
	app.Get("/gm", mw.RequireGameMaster(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestRequireTable_AllowsBearerToken(t *testing.T) {
	svc := access.NewTokenService("table-secret", time.Hour)
	minted, err := svc.MintTableToken(access.RolePlayer)
	if err != nil {
		t.Fatalf("MintTableToken failed: %v", err)
	}

	app := newProtectedApp(svc, "")

	req := httptest.NewRequest("GET", "/table", nil)
	req.Header.Set("Authorization", "Bearer "+minted.Token)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestRequireTable_RejectsBadHeaders(t *testing.T) {
	svc := access.NewTokenService("table-secret", time.Hour)
	app := newProtectedApp(svc, "")

	headers := []string{"", "Bearer ", "Token abc", "Bearer not-a-jwt"}
	for _, h := range headers {
		req := httptest.NewRequest("GET", "/table", nil)
		if h != "" {
			req.Header.Set("Authorization", h)
		}
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if resp.StatusCode != fiber.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", h, resp.StatusCode)
		}
	}
}

func TestRequireGameMaster_ChecksKeyHeader(t *testing.T) {
	hash, err := access.HashGameMasterKey("mellon")
	if err != nil {
		t.Fatalf("HashGameMasterKey failed: %v", err)
	}
	app := newProtectedApp(access.NewTokenService("table-secret", time.Hour), hash)

	req := httptest.NewRequest("GET", "/gm", nil)
	req.Header.Set("X-GM-Key", "mellon")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 with the right key, got %d", resp.StatusCode)
	}

	req = httptest.NewRequest("GET", "/gm", nil)
	req.Header.Set("X-GM-Key", "friend")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 with the wrong key, got %d", resp.StatusCode)
	}

	resp, err = app.Test(httptest.NewRequest("GET", "/gm", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 with no key, got %d", resp.StatusCode)
	}
}

func TestOpen_LetsEverythingThrough(t *testing.T) {
	app := fiber.New()
	app.Get("/anything", access.Open(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/anything", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

// --- Token endpoint tests ---

func newTokenApp(t *testing.T) (*fiber.App, *access.TokenService) {
	t.Helper()

	hash, err := access.HashGameMasterKey("mellon")
	if err != nil {
		t.Fatalf("HashGameMasterKey failed: %v", err)
	}

	svc := access.NewTokenService("table-secret", time.Hour)
	handlers := access.NewAccessHandlers(svc, access.NewMiddleware(svc, hash))

	app := fiber.New()
	handlers.RegisterRoutes(app)
	return app, svc
}

func TestMintTableToken_Endpoint(t *testing.T) {
	app, svc := newTokenApp(t)

	// Without the game master key the mint route stays closed.
	resp, err := app.Test(httptest.NewRequest("POST", "/api/v1/table/token", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 without the key, got %d", resp.StatusCode)
	}

	req := httptest.NewRequest("POST", "/api/v1/table/token", nil)
	req.Header.Set("X-GM-Key", "mellon")
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var minted access.TableToken
	if err := json.NewDecoder(resp.Body).Decode(&minted); err != nil {
		t.Fatalf("decoding response failed: %v", err)
	}
	claims, err := svc.ValidateTableToken(minted.Token)
	if err != nil {
		t.Fatalf("minted token did not validate: %v", err)
	}
	if claims.Role != access.RolePlayer {
		t.Fatalf("expected player role by default, got %q", claims.Role)
	}
}

func TestMintTableToken_RoleSelection(t *testing.T) {
	app, svc := newTokenApp(t)

	cases := []struct {
		body string
		want access.Role
	}{
		{`{"role": "gm"}`, access.RoleGameMaster},
		{`{"role": "wizard"}`, access.RolePlayer},
	}

	for _, tc := range cases {
		req := httptest.NewRequest("POST", "/api/v1/table/token", strings.NewReader(tc.body))
		req.Header.Set("X-GM-Key", "mellon")
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if resp.StatusCode != fiber.StatusCreated {
			t.Fatalf("body %s: expected 201, got %d", tc.body, resp.StatusCode)
		}

		var minted access.TableToken
		if err := json.NewDecoder(resp.Body).Decode(&minted); err != nil {
			t.Fatalf("decoding response failed: %v", err)
		}
		claims, err := svc.ValidateTableToken(minted.Token)
		if err != nil {
			t.Fatalf("minted token did not validate: %v", err)
		}
		if claims.Role != tc.want {
			t.Fatalf("body %s: expected role %q, got %q", tc.body, tc.want, claims.Role)
		}
	}
}
