package donations

import (
	"net/http"

	"github.com/givehub/givehub-backend/api/middleware"
	"github.com/givehub/givehub-backend/api/responses"
	"github.com/givehub/givehub-backend/api/validators"
	internaldonations "github.com/givehub/givehub-backend/internal/donations"
	pkgerrors "github.com/givehub/givehub-backend/pkg/errors"
	"github.com/givehub/givehub-backend/pkg/logger"
	"github.com/givehub/givehub-backend/pkg/money"
)

type initiateRequest struct {
	Amount                string  `json:"amount" validate:"required"`
	Currency              string  `json:"currency" validate:"omitempty,len=3"`
	Operator              string  `json:"operator" validate:"required,max=50"`
	OperatorTransactionID string  `json:"operator_transaction_id" validate:"omitempty,max=200"`
	DonorName             *string `json:"donor_name" validate:"omitempty,max=200"`
	DonorEmail            *string `json:"donor_email" validate:"omitempty,email"`
}

// Initiate records a pending pledge. Anonymous callers are allowed; when a
// bearer token is present the donation is attributed to that user.
func Initiate(svc internaldonations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "donation service unavailable"))
			return
		}
		campaignID, err := validators.ParseUUIDParam(r, "campaignId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body initiateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cents, err := money.ParseCents(body.Amount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid amount").
				WithDetails(map[string]string{"amount": err.Error()}))
			return
		}

		donor := internaldonations.Donor{Email: body.DonorEmail}
		if body.DonorName != nil {
			if name := validators.SanitizeString(*body.DonorName, 200); name != "" {
				donor.Name = &name
			}
		}
		if actor, ok := middleware.ActorFromContext(r.Context()); ok {
			donor.UserID = &actor
		}

		donation, err := svc.InitiateDonation(r.Context(), internaldonations.InitiateDonationInput{
			CampaignID:            campaignID,
			Donor:                 donor,
			AmountCents:           cents,
			Currency:              body.Currency,
			Operator:              body.Operator,
			OperatorTransactionID: body.OperatorTransactionID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, donation)
	}
}

func Mine(svc internaldonations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "donation service unavailable"))
			return
		}
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			return
		}
		params, err := validators.ParsePage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.ListDonorDonations(r.Context(), actor, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func AdminDetail(svc internaldonations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "donation service unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "donationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		donation, err := svc.GetDonation(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, donation)
	}
}

func AdminCampaignDonations(svc internaldonations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "donation service unavailable"))
			return
		}
		campaignID, err := validators.ParseUUIDParam(r, "campaignId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := validators.ParsePage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.ListCampaignDonations(r.Context(), campaignID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// Reconcile runs the campaign totals pass on demand. A partial failure still
// returns the report alongside the error so operators see what was fixed.
func Reconcile(svc internaldonations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "donation service unavailable"))
			return
		}
		report, err := svc.ReconcileCampaignTotals(r.Context())
		if err != nil {
			if report != nil {
				if typed := pkgerrors.As(err); typed != nil {
					err = typed.WithDetails(map[string]any{"report": report})
				}
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}
