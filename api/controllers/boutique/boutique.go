package boutique

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/givehub/givehub-backend/api/middleware"
	"github.com/givehub/givehub-backend/api/responses"
	"github.com/givehub/givehub-backend/api/validators"
	internalboutique "github.com/givehub/givehub-backend/internal/boutique"
	"github.com/givehub/givehub-backend/pkg/enums"
	pkgerrors "github.com/givehub/givehub-backend/pkg/errors"
	"github.com/givehub/givehub-backend/pkg/logger"
)

type submitMaterialDonationRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
	Category    string `json:"category" validate:"required,max=100"`
	Condition   string `json:"condition" validate:"required,max=50"`
}

type requestItemRequest struct {
	MotivationMessage string `json:"motivation_message" validate:"max=2000"`
}

func serviceUnavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "boutique service unavailable"))
}

func actorOrUnauthorized(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (uuid.UUID, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
		return uuid.Nil, false
	}
	return actor, true
}

// SubmitMaterialDonation records a physical item offered by the caller. It
// waits in pending_verification until an admin publishes or rejects it.
func SubmitMaterialDonation(svc internalboutique.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg)
			return
		}
		actor, ok := actorOrUnauthorized(w, r, logg)
		if !ok {
			return
		}

		var body submitMaterialDonationRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		donation, err := svc.SubmitMaterialDonation(r.Context(), internalboutique.SubmitMaterialDonationInput{
			DonorID:     actor,
			Title:       body.Title,
			Description: body.Description,
			Category:    body.Category,
			Condition:   body.Condition,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, donation)
	}
}

// ListItems shows available items unless ?status= asks for another state.
func ListItems(svc internalboutique.Service, logg *logger.Logger) http.HandlerFunc {
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

		status := enums.BoutiqueItemAvailable
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err = enums.ParseBoutiqueItemStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
		}

		list, err := svc.ListItems(r.Context(), internalboutique.ItemFilters{
			Status:   &status,
			Category: strings.TrimSpace(r.URL.Query().Get("category")),
		}, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func ItemDetail(svc internalboutique.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg)
			return
		}
		id, err := validators.ParseUUIDParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.GetItem(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

func RequestItem(svc internalboutique.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg)
			return
		}
		actor, ok := actorOrUnauthorized(w, r, logg)
		if !ok {
			return
		}
		itemID, err := validators.ParseUUIDParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body requestItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.RequestItem(r.Context(), internalboutique.RequestItemInput{
			ItemID:            itemID,
			UserID:            actor,
			MotivationMessage: body.MotivationMessage,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

func MyOrders(svc internalboutique.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg)
			return
		}
		actor, ok := actorOrUnauthorized(w, r, logg)
		if !ok {
			return
		}
		params, err := validators.ParsePage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.ListUserOrders(r.Context(), actor, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
