package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DataIdentification names a release of an application: "<application> <release> <name>".
type DataIdentification struct {
	Application string `json:"application" bson:"application"`
	Release     string `json:"release" bson:"release"`
	Name        string `json:"name" bson:"name"`
}

func (d DataIdentification) CreateFilter() bson.M {
	return bson.M{
		"application": d.Application,
		"release":     d.Release,
		"name":        d.Name,
	}
}

// ApplicationData is a free-form document stored per identification, either
// as the default for every client or for one client.
type ApplicationData struct {
	ID          string                 `json:"_id" bson:"_id"`
	Application string                 `json:"application" bson:"application"`
	Release     string                 `json:"release" bson:"release"`
	Name        string                 `json:"name" bson:"name"`
	Client      string                 `json:"client,omitempty" bson:"client,omitempty"`
	Data        map[string]interface{} `json:"data" bson:"data"`
	LastUpdate  time.Time              `json:"last_update" bson:"last_update"`
}

func NewApplicationData(identifier DataIdentification, client string, data map[string]interface{}, now time.Time) ApplicationData {
	if data == nil {
		data = map[string]interface{}{}
	}
	return ApplicationData{
		ID:          primitive.NewObjectID().Hex(),
		Application: identifier.Application,
		Release:     identifier.Release,
		Name:        identifier.Name,
		Client:      client,
		Data:        data,
		LastUpdate:  now,
	}
}

func (d ApplicationData) GetID() string {
	return d.ID
}

// DataInput is the body that creates application data.
type DataInput struct {
	Data map[string]interface{} `json:"data" validate:"required"`
}

type ApplicationDataUpdate struct {
	ID   string                           `json:"_id,omitempty"`
	Data Optional[map[string]interface{}] `json:"data"`
	// LastUpdate is stamped by the server, never read from the request.
	LastUpdate time.Time `json:"-"`
}

func (u ApplicationDataUpdate) GetID() string {
	return u.ID
}

func (u ApplicationDataUpdate) MergeDocument() bson.M {
	doc := bson.M{}
	u.Data.putInto(doc, "data")
	if len(doc) > 0 && !u.LastUpdate.IsZero() {
		doc["last_update"] = u.LastUpdate
	}
	return doc
}
