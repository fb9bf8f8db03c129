package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsonzilla/template-go-mongodb/internal/apperrors"
	"github.com/jsonzilla/template-go-mongodb/internal/models"
	"github.com/jsonzilla/template-go-mongodb/internal/repositories/repotest"
)

func newTestIdentityService() IdentityService {
	return NewIdentityService(repotest.NewMemory[models.ApplicationData](), repotest.NewMemory[models.ApplicationData]())
}

func identityHeaders(identifier, client string) http.Header {
	h := http.Header{}
	h.Set(IdentifierHeader, identifier)
	if client != "" {
		h.Set(ClientHeader, client)
	}
	return h
}

func TestExtractIdentifier(t *testing.T) {
	svc := newTestIdentityService()

	id, err := svc.ExtractIdentifier("app 1.0 main")
	require.NoError(t, err)
	assert.Equal(t, models.DataIdentification{Application: "app", Release: "1.0", Name: "main"}, id)

	for _, header := range []string{"", "app 1.0", "app 1.0 main extra", "app  1.0 main"} {
		_, err := svc.ExtractIdentifier(header)
		assert.ErrorIs(t, err, apperrors.ErrValidation, header)
	}
	_, err = svc.ExtractIdentifier("app 1.0")
	assert.EqualError(t, err, "Invalid identifier: app 1.0")
}

func TestExtractClient(t *testing.T) {
	svc := newTestIdentityService()

	client, err := svc.ExtractClient("desktop", true)
	require.NoError(t, err)
	assert.Equal(t, "desktop", client)

	_, err = svc.ExtractClient("", false)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestClientData(t *testing.T) {
	ctx := context.Background()
	svc := newTestIdentityService()
	h := identityHeaders("app 1.0 main", "desktop")

	found, err := svc.FindClientDataByHeader(ctx, h)
	require.NoError(t, err)
	assert.Nil(t, found)

	created, err := svc.CreateClientData(ctx, h, map[string]interface{}{"theme": "dark"})
	require.NoError(t, err)
	assert.Equal(t, "desktop", created.Client)

	_, err = svc.CreateClientData(ctx, h, nil)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	found, err = svc.FindClientDataByHeader(ctx, h)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "dark", found.Data["theme"])

	other, err := svc.FindClientDataByHeader(ctx, identityHeaders("app 1.0 main", "mobile"))
	require.NoError(t, err)
	assert.Nil(t, other)

	exists, err := svc.ExistUserData(ctx, models.DataIdentification{Application: "app", Release: "1.0", Name: "main"})
	require.NoError(t, err)
	assert.True(t, exists)

	updated, err := svc.UpdateClientData(ctx, h, models.ApplicationDataUpdate{Data: models.Some(map[string]interface{}{"theme": "light"})})
	require.NoError(t, err)
	assert.Equal(t, "light", updated.Data["theme"])

	_, err = svc.FindClientDataByHeader(ctx, identityHeaders("app 1.0 main", ""))
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.UpdateClientData(ctx, identityHeaders("app 2.0 main", "desktop"), models.ApplicationDataUpdate{Data: models.Some(map[string]interface{}{})})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDefaultData(t *testing.T) {
	ctx := context.Background()
	svc := newTestIdentityService()
	h := identityHeaders("app 1.0 main", "")

	exists, err := svc.ExistDefaultDataByHeader(ctx, h)
	require.NoError(t, err)
	assert.False(t, exists)

	created, err := svc.CreateDefaultData(ctx, h, map[string]interface{}{"lang": "en"})
	require.NoError(t, err)
	assert.Empty(t, created.Client)

	_, err = svc.CreateDefaultData(ctx, h, nil)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	exists, err = svc.ExistDefaultDataByHeader(ctx, h)
	require.NoError(t, err)
	assert.True(t, exists)

	found, err := svc.FindDefaultDataByHeader(ctx, h)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "en", found.Data["lang"])

	_, err = svc.ExistDefaultDataByHeader(ctx, identityHeaders("bad", ""))
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
