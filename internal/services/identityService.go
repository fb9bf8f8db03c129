package services

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/jsonzilla/template-go-mongodb/internal/apperrors"
	"github.com/jsonzilla/template-go-mongodb/internal/models"
	"github.com/jsonzilla/template-go-mongodb/internal/repositories"
)

const (
	IdentifierHeader = "identifier"
	ClientHeader     = "client"
)

// IdentityService resolves the application data addressed by the
// identifier and client request headers.
type IdentityService interface {
	ExtractIdentifier(header string) (models.DataIdentification, error)
	ExtractClient(header string, present bool) (string, error)
	FindClientDataByHeader(ctx context.Context, h http.Header) (*models.ApplicationData, error)
	FindDefaultDataByHeader(ctx context.Context, h http.Header) (*models.ApplicationData, error)
	ExistDefaultDataByHeader(ctx context.Context, h http.Header) (bool, error)
	ExistDefaultData(ctx context.Context, identifier models.DataIdentification) (bool, error)
	ExistUserData(ctx context.Context, identifier models.DataIdentification) (bool, error)
	CreateClientData(ctx context.Context, h http.Header, data map[string]interface{}) (*models.ApplicationData, error)
	CreateDefaultData(ctx context.Context, h http.Header, data map[string]interface{}) (*models.ApplicationData, error)
	UpdateClientData(ctx context.Context, h http.Header, patch models.ApplicationDataUpdate) (*models.ApplicationData, error)
}

type identityService struct {
	userData    *Routable[models.ApplicationData, models.ApplicationDataUpdate]
	defaultData *Routable[models.ApplicationData, models.ApplicationDataUpdate]
	now         func() time.Time
}

func NewIdentityService(userData, defaultData repositories.Repository[models.ApplicationData]) IdentityService {
	return &identityService{
		userData:    NewRoutable[models.ApplicationData, models.ApplicationDataUpdate](userData, "data"),
		defaultData: NewRoutable[models.ApplicationData, models.ApplicationDataUpdate](defaultData, "default data"),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// ExtractIdentifier parses "<application> <release> <name>", split on single spaces.
func (s *identityService) ExtractIdentifier(header string) (models.DataIdentification, error) {
	parts := strings.Split(header, " ")
	if len(parts) != 3 {
		return models.DataIdentification{}, apperrors.Validation("Invalid identifier: %s", header)
	}
	return models.DataIdentification{Application: parts[0], Release: parts[1], Name: parts[2]}, nil
}

func (s *identityService) ExtractClient(header string, present bool) (string, error) {
	if !present {
		return "", apperrors.Validation("Missing client identifier")
	}
	return header, nil
}

func headerValue(h http.Header, key string) (string, bool) {
	values := h.Values(key)
	if len(values) == 0 {
		return "", false
	}
	return values[0], true
}

func (s *identityService) fromHeaders(h http.Header) (models.DataIdentification, string, error) {
	client, err := s.ExtractClient(headerValue(h, ClientHeader))
	if err != nil {
		return models.DataIdentification{}, "", err
	}
	identifier, err := s.identifierFromHeaders(h)
	return identifier, client, err
}

func (s *identityService) identifierFromHeaders(h http.Header) (models.DataIdentification, error) {
	value, _ := headerValue(h, IdentifierHeader)
	return s.ExtractIdentifier(value)
}

func clientFilter(identifier models.DataIdentification, client string) bson.M {
	filter := identifier.CreateFilter()
	filter["client"] = client
	return filter
}

func firstOrNil(docs []models.ApplicationData) *models.ApplicationData {
	if len(docs) == 0 {
		return nil
	}
	return &docs[0]
}

// FindClientDataByHeader returns nil without error when the client has no data yet.
func (s *identityService) FindClientDataByHeader(ctx context.Context, h http.Header) (*models.ApplicationData, error) {
	identifier, client, err := s.fromHeaders(h)
	if err != nil {
		return nil, err
	}
	docs, err := s.userData.GetAllBy(ctx, clientFilter(identifier, client))
	if err != nil {
		return nil, err
	}
	return firstOrNil(docs), nil
}

func (s *identityService) FindDefaultDataByHeader(ctx context.Context, h http.Header) (*models.ApplicationData, error) {
	identifier, err := s.identifierFromHeaders(h)
	if err != nil {
		return nil, err
	}
	docs, err := s.defaultData.GetAllBy(ctx, identifier.CreateFilter())
	if err != nil {
		return nil, err
	}
	return firstOrNil(docs), nil
}

func (s *identityService) ExistDefaultDataByHeader(ctx context.Context, h http.Header) (bool, error) {
	identifier, err := s.identifierFromHeaders(h)
	if err != nil {
		return false, err
	}
	return s.ExistDefaultData(ctx, identifier)
}

func (s *identityService) ExistDefaultData(ctx context.Context, identifier models.DataIdentification) (bool, error) {
	return s.defaultData.Exists(ctx, identifier.CreateFilter())
}

// ExistUserData reports whether any client stored data for identifier.
func (s *identityService) ExistUserData(ctx context.Context, identifier models.DataIdentification) (bool, error) {
	return s.userData.Exists(ctx, identifier.CreateFilter())
}

func (s *identityService) CreateClientData(ctx context.Context, h http.Header, data map[string]interface{}) (*models.ApplicationData, error) {
	identifier, client, err := s.fromHeaders(h)
	if err != nil {
		return nil, err
	}
	exists, err := s.userData.Exists(ctx, clientFilter(identifier, client))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.Conflict("Already exists")
	}
	return s.userData.Create(ctx, models.NewApplicationData(identifier, client, data, s.now()))
}

func (s *identityService) CreateDefaultData(ctx context.Context, h http.Header, data map[string]interface{}) (*models.ApplicationData, error) {
	identifier, err := s.identifierFromHeaders(h)
	if err != nil {
		return nil, err
	}
	exists, err := s.ExistDefaultData(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.Conflict("Already exists")
	}
	return s.defaultData.Create(ctx, models.NewApplicationData(identifier, "", data, s.now()))
}

func (s *identityService) UpdateClientData(ctx context.Context, h http.Header, patch models.ApplicationDataUpdate) (*models.ApplicationData, error) {
	current, err := s.FindClientDataByHeader(ctx, h)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, apperrors.EntityNotFound(s.userData.Name())
	}
	patch.LastUpdate = s.now()
	return s.userData.UpdateOne(ctx, current.ID, patch)
}
