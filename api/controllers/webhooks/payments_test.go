package webhooks

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	internaldonations "github.com/givehub/givehub-backend/internal/donations"
	"github.com/givehub/givehub-backend/pkg/config"
	"github.com/givehub/givehub-backend/pkg/enums"
	pkgerrors "github.com/givehub/givehub-backend/pkg/errors"
	"github.com/givehub/givehub-backend/pkg/logger"
)

type stubApplier struct {
	calls  int
	input  internaldonations.PaymentCallbackInput
	result *internaldonations.CallbackResult
	err    error
}

func (s *stubApplier) ApplyPaymentCallback(_ context.Context, input internaldonations.PaymentCallbackInput) (*internaldonations.CallbackResult, error) {
	s.calls++
	s.input = input
	return s.result, s.err
}

func callbackRequest(operator, secret, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payments/"+url.PathEscape(operator), strings.NewReader(body))
	if secret != "" {
		req.Header.Set(secretHeader, secret)
	}
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("operator", operator)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestPaymentCallbackRequiresSecret(t *testing.T) {
	cfg := config.WebhookConfig{PaymentSecret: "s3cret"}
	svc := &stubApplier{}

	for _, secret := range []string{"", "wrong"} {
		resp := httptest.NewRecorder()
		PaymentCallback(cfg, svc, logger.Nop()).ServeHTTP(resp, callbackRequest("stripe", secret, `{"operator_transaction_id":"tx","outcome":"success","amount":"10.00"}`))
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("secret %q: expected 401 got %d", secret, resp.Code)
		}
	}
	if svc.calls != 0 {
		t.Fatalf("service must not be called without a valid secret")
	}
}

func TestPaymentCallbackRefusesWhenSecretUnset(t *testing.T) {
	svc := &stubApplier{}
	resp := httptest.NewRecorder()
	PaymentCallback(config.WebhookConfig{}, svc, logger.Nop()).ServeHTTP(resp, callbackRequest("stripe", "anything", `{"operator_transaction_id":"tx","outcome":"failure"}`))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestPaymentCallbackAppliesSuccess(t *testing.T) {
	donationID := uuid.New()
	svc := &stubApplier{result: &internaldonations.CallbackResult{
		Donation: &internaldonations.DonationDTO{ID: donationID, Status: enums.DonationStatusCompleted},
		Applied:  true,
	}}
	resp := httptest.NewRecorder()
	PaymentCallback(config.WebhookConfig{PaymentSecret: "s3cret"}, svc, logger.Nop()).
		ServeHTTP(resp, callbackRequest("Stripe", "s3cret", `{"operator_transaction_id":"tx-1","outcome":"success","amount":"100.00"}`))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.input.Operator != "stripe" || svc.input.AmountCents != 10000 || svc.input.Outcome != enums.PaymentOutcomeSuccess {
		t.Fatalf("unexpected input %+v", svc.input)
	}

	var envelope struct {
		Data paymentCallbackResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.Status != enums.DonationStatusCompleted || envelope.Data.Duplicate || envelope.Data.DonationID != donationID {
		t.Fatalf("unexpected response %+v", envelope.Data)
	}
}

func TestPaymentCallbackDuplicateIsOK(t *testing.T) {
	svc := &stubApplier{result: &internaldonations.CallbackResult{
		Donation:  &internaldonations.DonationDTO{ID: uuid.New(), Status: enums.DonationStatusCompleted},
		Duplicate: true,
	}}
	resp := httptest.NewRecorder()
	PaymentCallback(config.WebhookConfig{PaymentSecret: "s3cret"}, svc, logger.Nop()).
		ServeHTTP(resp, callbackRequest("stripe", "s3cret", `{"operator_transaction_id":"tx-1","outcome":"success","amount":"100"}`))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"duplicate":true`) {
		t.Fatalf("expected duplicate flag in %s", resp.Body.String())
	}
}

func TestPaymentCallbackValidatesAmount(t *testing.T) {
	cases := []string{
		`{"operator_transaction_id":"tx","outcome":"success"}`,
		`{"operator_transaction_id":"tx","outcome":"success","amount":"10.001"}`,
		`{"operator_transaction_id":"tx","outcome":"success","amount":"-1"}`,
		`{"operator_transaction_id":"tx","outcome":"pending","amount":"1"}`,
		`{"outcome":"success","amount":"1"}`,
	}
	for _, body := range cases {
		svc := &stubApplier{}
		resp := httptest.NewRecorder()
		PaymentCallback(config.WebhookConfig{PaymentSecret: "s3cret"}, svc, logger.Nop()).
			ServeHTTP(resp, callbackRequest("stripe", "s3cret", body))
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400 got %d", body, resp.Code)
		}
		if svc.calls != 0 {
			t.Fatalf("body %s: service should not be called", body)
		}
	}
}

func TestPaymentCallbackFailureWithoutAmount(t *testing.T) {
	svc := &stubApplier{result: &internaldonations.CallbackResult{
		Donation: &internaldonations.DonationDTO{Status: enums.DonationStatusFailed},
		Applied:  true,
	}}
	resp := httptest.NewRecorder()
	PaymentCallback(config.WebhookConfig{PaymentSecret: "s3cret"}, svc, logger.Nop()).
		ServeHTTP(resp, callbackRequest("stripe", "s3cret", `{"operator_transaction_id":"tx","outcome":"failure"}`))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.input.AmountCents != 0 || svc.input.Outcome != enums.PaymentOutcomeFailure {
		t.Fatalf("unexpected input %+v", svc.input)
	}
}

func TestPaymentCallbackUnknownDonationIs404(t *testing.T) {
	svc := &stubApplier{err: pkgerrors.New(pkgerrors.CodeNotFound, "donation not found")}
	resp := httptest.NewRecorder()
	PaymentCallback(config.WebhookConfig{PaymentSecret: "s3cret"}, svc, logger.Nop()).
		ServeHTTP(resp, callbackRequest("stripe", "s3cret", `{"operator_transaction_id":"missing","outcome":"failure"}`))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestPaymentCallbackRejectsMalformedOperator(t *testing.T) {
	for _, operator := range []string{"", "_stripe", "str$ipe", "../stripe", strings.Repeat("a", 51)} {
		svc := &stubApplier{}
		resp := httptest.NewRecorder()
		PaymentCallback(config.WebhookConfig{PaymentSecret: "s3cret"}, svc, logger.Nop()).
			ServeHTTP(resp, callbackRequest(operator, "s3cret", `{"operator_transaction_id":"tx","outcome":"failure"}`))
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("operator %q: expected 400 got %d", operator, resp.Code)
		}
		if svc.calls != 0 {
			t.Fatalf("operator %q: service should not be called", operator)
		}
	}
}
