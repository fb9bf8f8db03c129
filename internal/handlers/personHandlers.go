package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/jsonzilla/template-go-mongodb/internal/models"
	"github.com/jsonzilla/template-go-mongodb/internal/services"
	"github.com/jsonzilla/template-go-mongodb/internal/utils"
)

type PersonHandler struct {
	personService services.PersonService
}

func NewPersonHandler(personService services.PersonService) *PersonHandler {
	return &PersonHandler{personService: personService}
}

func parsePersonFilter(r *http.Request) (models.PersonFilter, services.ListOptions, error) {
	q := r.URL.Query()
	filter := models.PersonFilter{
		Name:       q.Get("name"),
		Occupation: q.Get("occupation"),
		Hobby:      q.Get("hobby"),
		FriendName: q.Get("friend_name"),
	}
	var opts services.ListOptions
	var err error

	if filter.Age, err = utils.QueryInt(r, "age"); err != nil {
		return filter, opts, err
	}
	if filter.CreatedAt, err = utils.QueryTime(r, "created_at"); err != nil {
		return filter, opts, err
	}
	if filter.LastUpdate, err = utils.QueryTime(r, "last_update"); err != nil {
		return filter, opts, err
	}

	opts.Sort = q.Get("sort")
	if opts.Page, err = utils.QueryInt(r, "page"); err != nil {
		return filter, opts, err
	}
	if opts.PerPage, err = utils.QueryInt(r, "per_page"); err != nil {
		return filter, opts, err
	}
	return filter, opts, nil
}

func (h *PersonHandler) ListPersons(w http.ResponseWriter, r *http.Request) {
	filter, opts, err := parsePersonFilter(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	persons, err := h.personService.ListPersons(r.Context(), filter, opts)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, persons)
}

func (h *PersonHandler) GetPerson(w http.ResponseWriter, r *http.Request) {
	id, err := utils.GetIDFromVars(w, r, "id")
	if err != nil {
		return
	}

	person, err := h.personService.GetPerson(r.Context(), id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, person)
}

func (h *PersonHandler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	var person models.Person
	if err := utils.DecodeJSONBody(r, &person, false); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("Invalid person payload")
		utils.WriteError(w, err)
		return
	}

	created, err := h.personService.CreatePerson(r.Context(), person)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, created)
}

func (h *PersonHandler) CreatePersons(w http.ResponseWriter, r *http.Request) {
	var persons []models.Person
	if err := utils.DecodeJSONBody(r, &persons, false); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("Invalid person list payload")
		utils.WriteError(w, err)
		return
	}

	created, err := h.personService.CreatePersons(r.Context(), persons)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, created)
}

func (h *PersonHandler) UpdatePerson(w http.ResponseWriter, r *http.Request) {
	id, err := utils.GetIDFromVars(w, r, "id")
	if err != nil {
		return
	}

	var patch models.PersonUpdate
	if err := utils.DecodeJSONBody(r, &patch, false); err != nil {
		utils.WriteError(w, err)
		return
	}

	updated, err := h.personService.UpdatePerson(r.Context(), id, patch)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, updated)
}

func (h *PersonHandler) UpdatePersons(w http.ResponseWriter, r *http.Request) {
	var patches []models.PersonUpdate
	if err := utils.DecodeJSONBody(r, &patches, false); err != nil {
		utils.WriteError(w, err)
		return
	}

	updated, err := h.personService.UpdatePersons(r.Context(), patches)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, updated)
}

func (h *PersonHandler) DeletePerson(w http.ResponseWriter, r *http.Request) {
	id, err := utils.GetIDFromVars(w, r, "id")
	if err != nil {
		return
	}

	if err := h.personService.DeletePerson(r.Context(), id); err != nil {
		utils.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
