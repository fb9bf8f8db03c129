package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/jsonzilla/template-go-mongodb/internal/models"
	"github.com/jsonzilla/template-go-mongodb/internal/services"
	"github.com/jsonzilla/template-go-mongodb/internal/utils"
)

// UserHandler serves the admin user API. Every response goes through
// models.User.Show so password hashes never leave the service.
type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (u *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var input models.CreateUser
	if err := utils.DecodeJSONBody(r, &input, true); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("Invalid user data input for CreateUser")
		utils.WriteError(w, err)
		return
	}

	created, err := u.userService.CreateUser(r.Context(), input)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, created.Show())
}

func (u *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := u.userService.ListUsers(r.Context())
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, models.ShowUsers(users))
}

func (u *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := utils.GetIDFromVars(w, r, "id")
	if err != nil {
		return
	}

	user, err := u.userService.GetUser(r.Context(), id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, user.Show())
}

func (u *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := utils.GetIDFromVars(w, r, "id")
	if err != nil {
		return
	}

	var patch models.UserUpdate
	if err := utils.DecodeJSONBody(r, &patch, true); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Str("user_id", id).Msg("Invalid user data input for UpdateUser")
		utils.WriteError(w, err)
		return
	}

	updated, err := u.userService.UpdateUser(r.Context(), id, patch)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, updated.Show())
}

func (u *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := utils.GetIDFromVars(w, r, "id")
	if err != nil {
		return
	}

	if err := u.userService.DeleteUser(r.Context(), id); err != nil {
		utils.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
