package middleware

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/awesomegic/gicbank/internal/logging"
)

func setupTestApp(t *testing.T) (*fiber.App, *int, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}

	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	calls := 0
	app := fiber.New()
	app.Use(Idempotency(cache, time.Minute, logging.Discard()))
	app.Post("/accounts/:accountId/transactions", func(c *fiber.Ctx) error {
		calls++
		if c.Params("accountId") == "broke" {
			return fiber.NewError(fiber.StatusUnprocessableEntity, "insufficient funds")
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"call": calls})
	})
	app.Get("/accounts/:accountId/balance", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	cleanup := func() {
		cache.Close()
		mr.Close()
	}
	return app, &calls, cleanup
}

func postWithKey(t *testing.T, app *fiber.App, path, key string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, path, strings.NewReader("{}"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if key != "" {
		req.Header.Set(idempotencyKeyHeader, key)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	resp.Body.Close()
	return resp.StatusCode, string(body)
}

func TestIdempotencyRequiresHeader(t *testing.T) {
	app, _, cleanup := setupTestApp(t)
	defer cleanup()

	if code, _ := postWithKey(t, app, "/accounts/AC001/transactions", ""); code != fiber.StatusBadRequest {
		t.Fatalf("expected %d got %d", fiber.StatusBadRequest, code)
	}
}

func TestIdempotencySkipsSafeMethods(t *testing.T) {
	app, _, cleanup := setupTestApp(t)
	defer cleanup()

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/accounts/AC001/balance", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected GET without key to pass, got %d", resp.StatusCode)
	}
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	app, calls, cleanup := setupTestApp(t)
	defer cleanup()

	code, first := postWithKey(t, app, "/accounts/AC001/transactions", "abc123")
	if code != fiber.StatusCreated {
		t.Fatalf("expected %d got %d", fiber.StatusCreated, code)
	}
	code, second := postWithKey(t, app, "/accounts/AC001/transactions", "abc123")
	if code != fiber.StatusCreated {
		t.Fatalf("expected replayed status %d got %d", fiber.StatusCreated, code)
	}
	if first != second {
		t.Fatalf("expected replayed payload %s got %s", first, second)
	}
	if *calls != 1 {
		t.Fatalf("handler must run once, ran %d times", *calls)
	}

	// same key on another route is a different request
	if code, _ := postWithKey(t, app, "/accounts/AC002/transactions", "abc123"); code != fiber.StatusCreated || *calls != 2 {
		t.Fatalf("expected a fresh call for another account, got %d after %d calls", code, *calls)
	}
}

func TestIdempotencyDoesNotStoreFailures(t *testing.T) {
	app, calls, cleanup := setupTestApp(t)
	defer cleanup()

	for i := 0; i < 2; i++ {
		if code, _ := postWithKey(t, app, "/accounts/broke/transactions", "retry-me"); code != fiber.StatusUnprocessableEntity {
			t.Fatalf("attempt %d: expected %d got %d", i, fiber.StatusUnprocessableEntity, code)
		}
	}
	if *calls != 2 {
		t.Fatalf("failed requests must be retried, handler ran %d times", *calls)
	}
}
