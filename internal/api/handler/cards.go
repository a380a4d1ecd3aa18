package handler

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/arkham-companion/internal/api/apierr"
	"github.com/mcoot/arkham-companion/internal/api/middleware"
	"github.com/mcoot/arkham-companion/internal/api/request"
	"github.com/mcoot/arkham-companion/internal/api/response"
	"github.com/mcoot/arkham-companion/internal/model"
	"github.com/mcoot/arkham-companion/internal/services/catalog"
	"github.com/mcoot/arkham-companion/internal/storage"
)

// CardHandler handles card catalog endpoints
type CardHandler struct {
	cards       *catalog.CardService
	maxFileSize int64
}

// NewCardHandler creates a new card handler
func NewCardHandler(cards *catalog.CardService, maxFileSize int64) *CardHandler {
	return &CardHandler{cards: cards, maxFileSize: maxFileSize}
}

// List handles GET /api/v1/cards
func (h *CardHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter storage.CardFilter
	if t := r.URL.Query().Get("type"); t != "" {
		cardType := model.CardType(t)
		filter.Type = &cardType
	}

	cards, err := h.cards.FindAll(r.Context(), filter, middleware.LocaleFrom(r.Context()))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.CardsFromModel(cards))
}

// Get handles GET /api/v1/cards/{id}
func (h *CardHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID[model.CardID](r, "id")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	card, err := h.cards.FindOne(r.Context(), id, middleware.LocaleFrom(r.Context()))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.CardDetailFromModel(card))
}

// Create handles POST /api/v1/cards
func (h *CardHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req catalog.CardInput
	if err := request.Decode(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	card, err := h.cards.Create(r.Context(), req)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, response.CardDetailFromModel(card))
}

// Update handles PATCH /api/v1/cards/{id}
func (h *CardHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID[model.CardID](r, "id")
	if err != nil {
		WriteError(w, r, err)
		return
	}
	var req catalog.CardPatch
	if err := request.Decode(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	card, err := h.cards.Update(r.Context(), id, req)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.CardDetailFromModel(card))
}

// Delete handles DELETE /api/v1/cards/{id}
func (h *CardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID[model.CardID](r, "id")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	if err := h.cards.Delete(r.Context(), id); err != nil {
		WriteError(w, r, err)
		return
	}
	response.NoContent(w)
}

// SetImage handles PUT /api/v1/cards/{id}/images/{side}
func (h *CardHandler) SetImage(w http.ResponseWriter, r *http.Request) {
	id, side, err := cardImagePath(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	upload, err := request.Upload(w, r, h.maxFileSize)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	card, err := h.cards.SetImage(r.Context(), id, side, upload)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.CardDetailFromModel(card))
}

// DeleteImage handles DELETE /api/v1/cards/{id}/images/{side}
func (h *CardHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	id, side, err := cardImagePath(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	card, err := h.cards.DeleteImage(r.Context(), id, side)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.CardDetailFromModel(card))
}

func cardImagePath(r *http.Request) (model.CardID, model.CardSide, error) {
	id, err := pathID[model.CardID](r, "id")
	if err != nil {
		return 0, "", err
	}
	side := model.CardSide(mux.Vars(r)["side"])
	if side != model.CardSideFront && side != model.CardSideBack {
		return 0, "", apierr.NewInvalidRequestError(fmt.Sprintf("invalid image side %q", side))
	}
	return id, side, nil
}

// AddTranslation handles POST /api/v1/cards/{id}/translations
func (h *CardHandler) AddTranslation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID[model.CardID](r, "id")
	if err != nil {
		WriteError(w, r, err)
		return
	}
	var req catalog.CardTranslationInput
	if err := request.Decode(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	card, err := h.cards.AddTranslation(r.Context(), id, req)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, response.CardDetailFromModel(card))
}

// EditTranslation handles PATCH /api/v1/cards/{id}/translations/{locale}
func (h *CardHandler) EditTranslation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID[model.CardID](r, "id")
	if err != nil {
		WriteError(w, r, err)
		return
	}
	var req catalog.CardTranslationPatch
	if err := request.Decode(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	card, err := h.cards.EditTranslation(r.Context(), id, pathLocale(r), req)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.CardDetailFromModel(card))
}

// DeleteTranslation handles DELETE /api/v1/cards/{id}/translations/{locale}
func (h *CardHandler) DeleteTranslation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID[model.CardID](r, "id")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	card, err := h.cards.DeleteTranslation(r.Context(), id, pathLocale(r))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.CardDetailFromModel(card))
}
