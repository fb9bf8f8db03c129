package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Friend struct {
	Name       string `json:"name" bson:"name" validate:"required,min=1,max=100"`
	Age        *int   `json:"age,omitempty" bson:"age,omitempty" validate:"omitempty,gte=0"`
	Occupation string `json:"occupation,omitempty" bson:"occupation,omitempty" validate:"omitempty,max=255"`
}

type Person struct {
	ID         string    `json:"_id" bson:"_id"`
	Name       string    `json:"name" bson:"name" validate:"required,min=1,max=255"`
	Age        int       `json:"age" bson:"age" validate:"gt=0"`
	Occupation string    `json:"occupation" bson:"occupation" validate:"required,min=1,max=255"`
	Hobbies    []string  `json:"hobbies" bson:"hobbies" validate:"required"`
	Friends    []Friend  `json:"friends" bson:"friends" validate:"required,dive"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
	LastUpdate time.Time `json:"last_update" bson:"last_update"`
}

func (p Person) GetID() string {
	return p.ID
}

// Prepare assigns an identifier and timestamps that the client left out.
func (p *Person) Prepare(now time.Time) {
	if p.ID == "" {
		p.ID = primitive.NewObjectID().Hex()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.LastUpdate.IsZero() {
		p.LastUpdate = now
	}
}

// PersonUpdate is a partial person. ID is only read by list updates.
type PersonUpdate struct {
	ID         string             `json:"_id,omitempty"`
	Name       Optional[string]   `json:"name" validate:"omitnil,min=1,max=255"`
	Age        Optional[int]      `json:"age" validate:"omitnil,gt=0"`
	Occupation Optional[string]   `json:"occupation" validate:"omitnil,min=1,max=255"`
	Hobbies    Optional[[]string] `json:"hobbies"`
	Friends    Optional[[]Friend] `json:"friends" validate:"omitnil,dive"`
	// LastUpdate is stamped by the server, never read from the request.
	LastUpdate time.Time `json:"-"`
}

func (p PersonUpdate) GetID() string {
	return p.ID
}

func (p PersonUpdate) MergeDocument() bson.M {
	doc := bson.M{}
	p.Name.putInto(doc, "name")
	p.Age.putInto(doc, "age")
	p.Occupation.putInto(doc, "occupation")
	p.Hobbies.putInto(doc, "hobbies")
	p.Friends.putInto(doc, "friends")
	if len(doc) > 0 && !p.LastUpdate.IsZero() {
		doc["last_update"] = p.LastUpdate
	}
	return doc
}

// PersonFilter holds the query-string filters of the person listing.
type PersonFilter struct {
	Name       string
	Age        int
	Occupation string
	Hobby      string
	FriendName string
	CreatedAt  time.Time
	LastUpdate time.Time
}

// Nested lays the filter out in document shape; empty fields are left for
// the filter formatter to drop.
func (f PersonFilter) Nested() map[string]any {
	return map[string]any{
		"name":        f.Name,
		"age":         f.Age,
		"occupation":  f.Occupation,
		"hobbies":     f.Hobby,
		"friends":     map[string]any{"name": f.FriendName},
		"created_at":  f.CreatedAt,
		"last_update": f.LastUpdate,
	}
}
