package errx_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/Abraxas-365/fateweaver/pkg/errx"
)

var (
	testErrors = errx.NewRegistry("TEST")
	errStorage = testErrors.Register("STORAGE_FAILURE", errx.TypeInternal, 500, "Storage operation failed")
)

func TestRegistryNew(t *testing.T) {
	e := testErrors.New(errStorage)

	if e.Code != "TEST.STORAGE_FAILURE" {
		t.Fatalf("expected prefixed code, got %q", e.Code)
	}
	if e.Type != errx.TypeInternal {
		t.Fatalf("expected internal type, got %q", e.Type)
	}
	if e.HTTPStatus != 500 {
		t.Fatalf("expected status 500, got %d", e.HTTPStatus)
	}
	if e.Message != "Storage operation failed" {
		t.Fatalf("unexpected message %q", e.Message)
	}
}

func TestNewWithCause(t *testing.T) {
	cause := errors.New("disk full")
	e := testErrors.NewWithCause(errStorage, cause)

	want := "[TEST.STORAGE_FAILURE] Storage operation failed: disk full"
	if got := e.Error(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if !errors.Is(e, cause) {
		t.Fatal("expected cause to survive unwrapping")
	}
}

func TestWithDetail(t *testing.T) {
	e := testErrors.New(errStorage).
		WithDetail("path", "/data/state.json").
		WithDetail("attempt", 2)

	if e.Details["path"] != "/data/state.json" {
		t.Fatalf("expected path detail, got %v", e.Details)
	}
	if e.Details["attempt"] != 2 {
		t.Fatalf("expected attempt detail, got %v", e.Details)
	}
}

func TestWrap_KeepsRegisteredCode(t *testing.T) {
	inner := testErrors.New(errStorage).WithDetail("path", "/data/state.json")
	wrapped := errx.Wrap(inner, "loading campaign state", errx.TypeInternal)

	if wrapped.Code != "TEST.STORAGE_FAILURE" {
		t.Fatalf("expected original code to survive, got %q", wrapped.Code)
	}
	if wrapped.Details["path"] != "/data/state.json" {
		t.Fatalf("expected details to survive, got %v", wrapped.Details)
	}

	var appErr *errx.Error
	if !errx.As(wrapped, &appErr) {
		t.Fatal("expected As to find the error")
	}
}

func TestWrap_PlainError(t *testing.T) {
	wrapped := errx.Wrap(errors.New("boom"), "calling upstream", errx.TypeExternal)

	if wrapped.Code != "EXTERNAL" {
		t.Fatalf("expected category code, got %q", wrapped.Code)
	}
	if wrapped.HTTPStatus != 502 {
		t.Fatalf("expected status 502, got %d", wrapped.HTTPStatus)
	}
}

func TestWrap_Nil(t *testing.T) {
	if got := errx.Wrap(nil, "ignored", errx.TypeInternal); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestMarshalJSON(t *testing.T) {
	buf, err := json.Marshal(testErrors.New(errStorage))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	s := string(buf)
	if !strings.Contains(s, `"code":"TEST.STORAGE_FAILURE"`) {
		t.Fatalf("expected code field, got %s", s)
	}
	if !strings.Contains(s, `"error":"[TEST.STORAGE_FAILURE] Storage operation failed"`) {
		t.Fatalf("expected rendered error field, got %s", s)
	}
}

func TestToHTTPResponse(t *testing.T) {
	resp := testErrors.New(errStorage).WithDetail("path", "x").ToHTTPResponse()

	if resp.Code != "TEST.STORAGE_FAILURE" || resp.StatusCode != 500 {
		t.Fatalf("unexpected response %+v", resp)
	}
	if resp.Type != "INTERNAL" {
		t.Fatalf("expected INTERNAL type, got %q", resp.Type)
	}
	if resp.Details["path"] != "x" {
		t.Fatalf("expected details to carry over, got %v", resp.Details)
	}
}
