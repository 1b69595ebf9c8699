package apperr

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestConstructors(t *testing.T) {
	cases := []struct {
		err        *Error
		wantStatus int
	}{
		{NotFound("Trip not found", "TRIP_NOT_FOUND"), 404},
		{Conflict("Vehicle is unavailable", "VEHICLE_UNAVAILABLE"), 409},
		{Unprocessable("Cargo exceeds vehicle max capacity", "CAPACITY_EXCEEDED"), 422},
		{BadRequest("Invalid input", "VALIDATION_ERROR"), 400},
	}

	for _, tc := range cases {
		if tc.err.StatusCode != tc.wantStatus {
			t.Fatalf("expected status %d for code %s, got %d", tc.wantStatus, tc.err.Code, tc.err.StatusCode)
		}
		if tc.err.Error() != tc.err.Message {
			t.Fatalf("expected Error() to return the message")
		}
	}
}

func TestHandlerMapsAppError(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: Handler})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return Conflict("Driver already on dispatched trip", "DRIVER_UNAVAILABLE")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 409 {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var payload map[string]string
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if payload["code"] != "DRIVER_UNAVAILABLE" {
		t.Fatalf("expected stable code in body, got %q", payload["code"])
	}
	if payload["error"] != "Driver already on dispatched trip" {
		t.Fatalf("unexpected error message %q", payload["error"])
	}
}

func TestHandlerMapsUnknownErrorTo500(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: Handler})
	app.Get("/oops", func(c *fiber.Ctx) error {
		return io.ErrUnexpectedEOF
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/oops", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 500 {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var payload map[string]string
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	// Internal details must not leak
	if payload["error"] != "Internal server error" {
		t.Fatalf("expected opaque message, got %q", payload["error"])
	}
}
