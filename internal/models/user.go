package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// User is the stored form. Password holds a bcrypt hash and must never be
// written to a response; use Show.
type User struct {
	ID                 string    `json:"_id" bson:"_id"`
	Username           string    `json:"username" bson:"username"`
	Password           string    `json:"password" bson:"password"`
	Email              string    `json:"email" bson:"email"`
	LastUpdateDatetime time.Time `json:"last_update_datetime" bson:"last_update_datetime"`
}

func (u User) GetID() string {
	return u.ID
}

func (u User) Show() ShowUser {
	return ShowUser{
		ID:                 u.ID,
		Username:           u.Username,
		Email:              u.Email,
		LastUpdateDatetime: u.LastUpdateDatetime,
	}
}

type CreateUser struct {
	ID       string `json:"_id,omitempty"`
	Username string `json:"username" validate:"required,min=3,max=50,alphanum"`
	Password string `json:"password" validate:"required,min=10,max=63"`
	Email    string `json:"email" validate:"required,email"`
}

type ShowUser struct {
	ID                 string    `json:"_id"`
	Username           string    `json:"username"`
	Email              string    `json:"email"`
	LastUpdateDatetime time.Time `json:"last_update_datetime"`
}

func ShowUsers(users []User) []ShowUser {
	shown := make([]ShowUser, 0, len(users))
	for _, u := range users {
		shown = append(shown, u.Show())
	}
	return shown
}

type UserUpdate struct {
	ID                 string              `json:"_id,omitempty"`
	Password           Optional[string]    `json:"password" validate:"omitnil,min=10,max=63"`
	LastUpdateDatetime Optional[time.Time] `json:"last_update_datetime"`
}

func (u UserUpdate) GetID() string {
	return u.ID
}

func (u UserUpdate) MergeDocument() bson.M {
	doc := bson.M{}
	u.Password.putInto(doc, "password")
	u.LastUpdateDatetime.putInto(doc, "last_update_datetime")
	return doc
}
