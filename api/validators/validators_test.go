package validators

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	pkgerrors "github.com/givehub/givehub-backend/pkg/errors"
)

type sampleBody struct {
	Email  string `json:"email" validate:"required,email"`
	Amount int64  `json:"amount" validate:"gt=0"`
}

func TestDecodeJSONBodyReportsFieldErrors(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"nope","amount":0}`))
	var body sampleBody
	err := DecodeJSONBody(req, &body)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected field details, got %T", typed.Details())
	}
	if details["email"] != "must be a valid email" {
		t.Fatalf("unexpected email detail %q", details["email"])
	}
	if details["amount"] != "must be greater than 0" {
		t.Fatalf("unexpected amount detail %q", details["amount"])
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"a@b.co","amount":1,"extra":true}`))
	var body sampleBody
	if err := DecodeJSONBody(req, &body); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeJSONBodyRejectsTrailingData(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"a@b.co","amount":1}{"email":"c@d.co","amount":2}`))
	var body sampleBody
	if err := DecodeJSONBody(req, &body); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeJSONBodyRejectsOversizedBody(t *testing.T) {
	padding := strings.Repeat("a", MaxBodyBytes)
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"`+padding+`@b.co","amount":1}`))
	var body sampleBody
	err := DecodeJSONBody(req, &body)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation || typed.Message() != "request body too large" {
		t.Fatalf("expected body too large, got %v", err)
	}
}

func TestParsePage(t *testing.T) {
	req := httptest.NewRequest("GET", "/?limit=10&cursor=abc", nil)
	page, err := ParsePage(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Limit != 10 || page.Cursor != "abc" {
		t.Fatalf("unexpected page %+v", page)
	}

	req = httptest.NewRequest("GET", "/?limit=1000", nil)
	if _, err := ParsePage(req); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected out of range error, got %v", err)
	}
}

func TestBearerToken(t *testing.T) {
	if tok, err := BearerToken("Bearer abc.def"); err != nil || tok != "abc.def" {
		t.Fatalf("unexpected result %q %v", tok, err)
	}
	for _, raw := range []string{"", "Bearer ", "Basic abc", "abc"} {
		if _, err := BearerToken(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func withURLParam(key, value string) *chi.Context {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return rctx
}

func TestParseUUIDParam(t *testing.T) {
	id := uuid.New()
	req := httptest.NewRequest("GET", "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, withURLParam("itemId", id.String())))
	got, err := ParseUUIDParam(req, "itemId")
	if err != nil || got != id {
		t.Fatalf("expected %s got %s (%v)", id, got, err)
	}

	bad := httptest.NewRequest("GET", "/", nil)
	bad = bad.WithContext(context.WithValue(bad.Context(), chi.RouteCtxKey, withURLParam("itemId", "nope")))
	if _, err := ParseUUIDParam(bad, "itemId"); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := ParseUUIDParam(httptest.NewRequest("GET", "/", nil), "itemId"); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for missing param, got %v", err)
	}
}

func TestParseOptionalUUIDQuery(t *testing.T) {
	if got, err := ParseOptionalUUIDQuery(httptest.NewRequest("GET", "/", nil), "item_id"); err != nil || got != nil {
		t.Fatalf("expected nil, got %v %v", got, err)
	}
	if _, err := ParseOptionalUUIDQuery(httptest.NewRequest("GET", "/?item_id=x", nil), "item_id"); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSanitizeString(t *testing.T) {
	cases := []struct {
		in   string
		max  int
		want string
	}{
		{"  Food bank  ", 0, "Food bank"},
		{"line one\nline two\x00\x07", 0, "line one\nline two"},
		{"abcdef", 3, "abc"},
		{"café!", 4, "caf"},
		{"ab é", 4, "ab"},
	}
	for _, tc := range cases {
		if got := SanitizeString(tc.in, tc.max); got != tc.want {
			t.Fatalf("SanitizeString(%q, %d) = %q want %q", tc.in, tc.max, got, tc.want)
		}
	}
}
