package boutique

import (
	"net/http"
	"strings"

	"github.com/givehub/givehub-backend/api/responses"
	"github.com/givehub/givehub-backend/api/validators"
	internalboutique "github.com/givehub/givehub-backend/internal/boutique"
	"github.com/givehub/givehub-backend/pkg/enums"
	pkgerrors "github.com/givehub/givehub-backend/pkg/errors"
	"github.com/givehub/givehub-backend/pkg/logger"
)

type publishRequest struct {
	Title       string `json:"title" validate:"omitempty,max=200"`
	Description string `json:"description" validate:"omitempty,max=5000"`
	Category    string `json:"category" validate:"omitempty,max=100"`
}

type rejectMaterialDonationRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type decisionRequest struct {
	Outcome string `json:"outcome" validate:"required,oneof=approved rejected"`
	Reason  string `json:"reason" validate:"omitempty,max=500"`
}

// AdminMaterialDonations lists submissions, filterable by ?status= and ?donor_id=.
func AdminMaterialDonations(svc internalboutique.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg)
			return
		}
		params, err := validators.ParsePage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var filters internalboutique.MaterialDonationFilters
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseMaterialDonationStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			filters.Status = &status
		}
		if filters.DonorID, err = validators.ParseOptionalUUIDQuery(r, "donor_id"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListMaterialDonations(r.Context(), filters, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func Publish(svc internalboutique.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg)
			return
		}
		admin, ok := actorOrUnauthorized(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.ParseUUIDParam(r, "donationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body publishRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Publish(r.Context(), internalboutique.PublishInput{
			MaterialDonationID: id,
			AdminID:            admin,
			Title:              body.Title,
			Description:        body.Description,
			Category:           body.Category,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

func RejectMaterialDonation(svc internalboutique.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg)
			return
		}
		admin, ok := actorOrUnauthorized(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.ParseUUIDParam(r, "donationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body rejectMaterialDonationRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		donation, err := svc.RejectMaterialDonation(r.Context(), internalboutique.RejectMaterialDonationInput{
			MaterialDonationID: id,
			AdminID:            admin,
			Reason:             body.Reason,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, donation)
	}
}

func WithdrawItem(svc internalboutique.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg)
			return
		}
		admin, ok := actorOrUnauthorized(w, r, logg)
		if !ok {
			return
		}
		id, err := validators.ParseUUIDParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.WithdrawItem(r.Context(), id, admin)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

// AdminOrders lists orders, filterable by ?item_id=, ?requester_id= and ?status=.
func AdminOrders(svc internalboutique.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg)
			return
		}
		params, err := validators.ParsePage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var filters internalboutique.OrderFilters
		if filters.ItemID, err = validators.ParseOptionalUUIDQuery(r, "item_id"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if filters.RequesterID, err = validators.ParseOptionalUUIDQuery(r, "requester_id"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseBoutiqueOrderStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			filters.Status = &status
		}

		list, err := svc.ListOrders(r.Context(), filters, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// Decide approves or rejects a pending order. Approval allocates the item;
// a losing approval race surfaces as 409 with the order left pending.
func Decide(svc internalboutique.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg)
			return
		}
		admin, ok := actorOrUnauthorized(w, r, logg)
		if !ok {
			return
		}
		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body decisionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Decide(r.Context(), internalboutique.DecideInput{
			OrderID: orderID,
			AdminID: admin,
			Outcome: enums.OrderDecision(body.Outcome),
			Reason:  body.Reason,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
