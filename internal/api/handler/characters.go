package handler

import (
	"net/http"

	"github.com/mcoot/arkham-companion/internal/api/middleware"
	"github.com/mcoot/arkham-companion/internal/api/request"
	"github.com/mcoot/arkham-companion/internal/api/response"
	"github.com/mcoot/arkham-companion/internal/model"
	"github.com/mcoot/arkham-companion/internal/services/catalog"
)

// CharacterHandler handles character catalog endpoints
type CharacterHandler struct {
	characters  *catalog.CharacterService
	maxFileSize int64
}

// NewCharacterHandler creates a new character handler
func NewCharacterHandler(characters *catalog.CharacterService, maxFileSize int64) *CharacterHandler {
	return &CharacterHandler{characters: characters, maxFileSize: maxFileSize}
}

// List handles GET /api/v1/characters
func (h *CharacterHandler) List(w http.ResponseWriter, r *http.Request) {
	characters, err := h.characters.FindAll(r.Context(), middleware.LocaleFrom(r.Context()))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.CharactersFromModel(characters))
}

// Get handles GET /api/v1/characters/{id}
func (h *CharacterHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID[model.CharacterID](r, "id")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	character, err := h.characters.FindOne(r.Context(), id, middleware.LocaleFrom(r.Context()))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.CharacterDetailFromModel(character))
}

// Create handles POST /api/v1/characters
func (h *CharacterHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req catalog.CharacterInput
	if err := request.Decode(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	character, err := h.characters.Create(r.Context(), req)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, response.CharacterDetailFromModel(character))
}

// Update handles PATCH /api/v1/characters/{id}
func (h *CharacterHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID[model.CharacterID](r, "id")
	if err != nil {
		WriteError(w, r, err)
		return
	}
	var req catalog.CharacterPatch
	if err := request.Decode(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	character, err := h.characters.Update(r.Context(), id, req)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.CharacterDetailFromModel(character))
}

// Delete handles DELETE /api/v1/characters/{id}
func (h *CharacterHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID[model.CharacterID](r, "id")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	if err := h.characters.Delete(r.Context(), id); err != nil {
		WriteError(w, r, err)
		return
	}
	response.NoContent(w)
}

// SetPhoto handles PUT /api/v1/characters/{id}/photo
func (h *CharacterHandler) SetPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := pathID[model.CharacterID](r, "id")
	if err != nil {
		WriteError(w, r, err)
		return
	}
	upload, err := request.Upload(w, r, h.maxFileSize)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	character, err := h.characters.SetPhoto(r.Context(), id, upload)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.CharacterDetailFromModel(character))
}

// DeletePhoto handles DELETE /api/v1/characters/{id}/photo
func (h *CharacterHandler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	id, err := pathID[model.CharacterID](r, "id")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	character, err := h.characters.DeletePhoto(r.Context(), id)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.CharacterDetailFromModel(character))
}

// AddTranslation handles POST /api/v1/characters/{id}/translations
func (h *CharacterHandler) AddTranslation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID[model.CharacterID](r, "id")
	if err != nil {
		WriteError(w, r, err)
		return
	}
	var req catalog.CharacterTranslationInput
	if err := request.Decode(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	character, err := h.characters.AddTranslation(r.Context(), id, req)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, response.CharacterDetailFromModel(character))
}

// EditTranslation handles PATCH /api/v1/characters/{id}/translations/{locale}
func (h *CharacterHandler) EditTranslation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID[model.CharacterID](r, "id")
	if err != nil {
		WriteError(w, r, err)
		return
	}
	var req catalog.CharacterTranslationPatch
	if err := request.Decode(w, r, &req); err != nil {
		WriteError(w, r, err)
		return
	}

	character, err := h.characters.EditTranslation(r.Context(), id, pathLocale(r), req)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.CharacterDetailFromModel(character))
}

// DeleteTranslation handles DELETE /api/v1/characters/{id}/translations/{locale}
func (h *CharacterHandler) DeleteTranslation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID[model.CharacterID](r, "id")
	if err != nil {
		WriteError(w, r, err)
		return
	}

	character, err := h.characters.DeleteTranslation(r.Context(), id, pathLocale(r))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.CharacterDetailFromModel(character))
}
