package handlers

import (
	"net/http"

	"github.com/jsonzilla/template-go-mongodb/internal/apperrors"
	"github.com/jsonzilla/template-go-mongodb/internal/models"
	"github.com/jsonzilla/template-go-mongodb/internal/services"
	"github.com/jsonzilla/template-go-mongodb/internal/utils"
)

type DataHandler struct {
	identityService services.IdentityService
}

func NewDataHandler(identityService services.IdentityService) *DataHandler {
	return &DataHandler{identityService: identityService}
}

func respondWithData(w http.ResponseWriter, data *models.ApplicationData, entity string) {
	if data == nil {
		utils.WriteError(w, apperrors.EntityNotFound(entity))
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, data)
}

func decodeDataInput(r *http.Request) (map[string]interface{}, error) {
	var input models.DataInput
	if err := utils.DecodeJSONBody(r, &input, true); err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	return input.Data, nil
}

func (h *DataHandler) GetClientData(w http.ResponseWriter, r *http.Request) {
	data, err := h.identityService.FindClientDataByHeader(r.Context(), r.Header)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	respondWithData(w, data, "data")
}

func (h *DataHandler) CreateClientData(w http.ResponseWriter, r *http.Request) {
	input, err := decodeDataInput(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	created, err := h.identityService.CreateClientData(r.Context(), r.Header, input)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, created)
}

func (h *DataHandler) UpdateClientData(w http.ResponseWriter, r *http.Request) {
	var patch models.ApplicationDataUpdate
	if err := utils.DecodeJSONBody(r, &patch, true); err != nil {
		utils.WriteError(w, err)
		return
	}

	updated, err := h.identityService.UpdateClientData(r.Context(), r.Header, patch)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, updated)
}

func (h *DataHandler) GetDefaultData(w http.ResponseWriter, r *http.Request) {
	data, err := h.identityService.FindDefaultDataByHeader(r.Context(), r.Header)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	respondWithData(w, data, "default data")
}

func (h *DataHandler) CreateDefaultData(w http.ResponseWriter, r *http.Request) {
	input, err := decodeDataInput(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	created, err := h.identityService.CreateDefaultData(r.Context(), r.Header, input)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, created)
}

func (h *DataHandler) DefaultDataExists(w http.ResponseWriter, r *http.Request) {
	exists, err := h.identityService.ExistDefaultDataByHeader(r.Context(), r.Header)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]bool{"exists": exists})
}
