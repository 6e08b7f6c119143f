package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/escolinha-api/internal/models"
	appErrors "github.com/noah-isme/escolinha-api/pkg/errors"
)

type fakeAccessSrv struct {
	resp *models.LoginResponse
	err  error
	got  string
}

func (f *fakeAccessSrv) Login(_ context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	f.got = req.Password
	return f.resp, f.err
}

func loginRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestLoginSuccess(t *testing.T) {
	svc := &fakeAccessSrv{resp: &models.LoginResponse{
		Authenticated: true,
		Message:       "Login bem-sucedido!",
		Token:         "signed",
		Role:          models.RoleOwner,
		ExpiresAt:     time.Now().Add(time.Hour),
	}}
	c, rec := newTestContext(loginRequest(`{"password":"segredo"}`))

	NewAuthHandler(svc).Login(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "segredo", svc.got)
	var envelope responseEnvelope
	decode(t, rec, &envelope)
	assert.Equal(t, true, envelope.Data["authenticated"])
	assert.Equal(t, "signed", envelope.Data["token"])
	assert.Equal(t, "owner", envelope.Data["role"])
}

func TestLoginInvalidCredentialsCarriesFlag(t *testing.T) {
	svc := &fakeAccessSrv{err: appErrors.Clone(appErrors.ErrInvalidCredentials, "")}
	c, rec := newTestContext(loginRequest(`{"password":"errado"}`))

	NewAuthHandler(svc).Login(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var envelope responseEnvelope
	decode(t, rec, &envelope)
	assert.Equal(t, false, envelope.Meta["authenticated"])
	assert.Equal(t, "Código de acesso incorreto.", envelope.Error["message"])
}

func TestLoginMalformedBody(t *testing.T) {
	svc := &fakeAccessSrv{}
	c, rec := newTestContext(loginRequest(`{"password":`))

	NewAuthHandler(svc).Login(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var envelope responseEnvelope
	decode(t, rec, &envelope)
	assert.Equal(t, false, envelope.Meta["authenticated"])
	assert.Empty(t, svc.got)
}
