package webhooks

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/givehub/givehub-backend/api/responses"
	"github.com/givehub/givehub-backend/api/validators"
	internaldonations "github.com/givehub/givehub-backend/internal/donations"
	"github.com/givehub/givehub-backend/pkg/config"
	"github.com/givehub/givehub-backend/pkg/enums"
	pkgerrors "github.com/givehub/givehub-backend/pkg/errors"
	"github.com/givehub/givehub-backend/pkg/logger"
	"github.com/givehub/givehub-backend/pkg/money"
)

const secretHeader = "X-Webhook-Secret"

// CallbackApplier is the slice of the donation service the webhook needs.
type CallbackApplier interface {
	ApplyPaymentCallback(ctx context.Context, input internaldonations.PaymentCallbackInput) (*internaldonations.CallbackResult, error)
}

type paymentCallbackRequest struct {
	OperatorTransactionID string `json:"operator_transaction_id" validate:"required,max=200"`
	Outcome               string `json:"outcome" validate:"required,oneof=success failure"`
	Amount                string `json:"amount"`
}

type paymentCallbackResponse struct {
	DonationID uuid.UUID            `json:"donation_id"`
	Status     enums.DonationStatus `json:"status"`
	Applied    bool                 `json:"applied"`
	Duplicate  bool                 `json:"duplicate"`
}

// PaymentCallback receives an operator's settlement notice. The operator is
// taken from the path and must match the one recorded on the donation.
// Requests without the shared secret are refused, including when no secret
// is configured.
func PaymentCallback(cfg config.WebhookConfig, svc CallbackApplier, logg *logger.Logger) http.HandlerFunc {
	secret := []byte(cfg.PaymentSecret)
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "donation service unavailable"))
			return
		}
		provided := []byte(r.Header.Get(secretHeader))
		if len(secret) == 0 || subtle.ConstantTimeCompare(secret, provided) != 1 {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid webhook secret"))
			return
		}

		operator, ok := internaldonations.NormalizeOperator(chi.URLParam(r, "operator"))
		if !ok {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid operator").
				WithDetails(map[string]string{"operator": "must be a short lowercase code"}))
			return
		}

		var body paymentCallbackRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		outcome := enums.PaymentOutcome(body.Outcome)
		var cents int64
		if outcome == enums.PaymentOutcomeSuccess || strings.TrimSpace(body.Amount) != "" {
			parsed, err := money.ParseCents(body.Amount)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid amount").
					WithDetails(map[string]string{"amount": err.Error()}))
				return
			}
			cents = parsed
		}

		if logg != nil {
			ctx = logg.WithFields(ctx, map[string]any{
				"operator":                operator,
				"operator_transaction_id": body.OperatorTransactionID,
				"outcome":                 body.Outcome,
			})
		}

		result, err := svc.ApplyPaymentCallback(ctx, internaldonations.PaymentCallbackInput{
			Operator:              operator,
			OperatorTransactionID: body.OperatorTransactionID,
			Outcome:               outcome,
			AmountCents:           cents,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		resp := paymentCallbackResponse{Applied: result.Applied, Duplicate: result.Duplicate}
		if result.Donation != nil {
			resp.DonationID = result.Donation.ID
			resp.Status = result.Donation.Status
		}
		responses.WriteSuccess(w, resp)
	}
}
