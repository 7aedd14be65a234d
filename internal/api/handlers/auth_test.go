package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/harborlabs/docvault/internal/domain"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) CreateUser(ctx context.Context, username, email string, role domain.Role) (*domain.User, error) {
	args := m.Called(ctx, username, email, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAuthService) CreateAPIKey(ctx context.Context, userID, name string) (string, error) {
	args := m.Called(ctx, userID, name)
	return args.String(0), args.Error(1)
}

func TestAuthHandler_CreateUser(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		auth := new(MockAuthService)
		auth.On("CreateUser", mock.Anything, "alice", "alice@example.com", domain.RoleFinance).
			Return(&domain.User{
				ID:       "u-1",
				Username: "alice",
				Email:    "alice@example.com",
				Role:     domain.RoleFinance,
			}, nil)

		handler := NewAuthHandler(auth)

		body, _ := json.Marshal(CreateUserRequest{Username: "alice", Email: "alice@example.com", Role: "finance"})
		req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewReader(body))
		w := httptest.NewRecorder()

		handler.CreateUser(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var resp UserResponse
		decodeData(t, w, &resp)
		assert.Equal(t, "u-1", resp.ID)
		assert.Equal(t, "alice", resp.Username)
		assert.Equal(t, "finance", resp.Role)
		auth.AssertExpectations(t)
	})

	t.Run("duplicate username maps to conflict", func(t *testing.T) {
		auth := new(MockAuthService)
		auth.On("CreateUser", mock.Anything, "alice", "", domain.RoleFinance).
			Return(nil, domain.ErrUserAlreadyExists)

		handler := NewAuthHandler(auth)

		body, _ := json.Marshal(CreateUserRequest{Username: "alice", Role: "finance"})
		req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewReader(body))
		w := httptest.NewRecorder()

		handler.CreateUser(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("invalid role maps to bad request", func(t *testing.T) {
		auth := new(MockAuthService)
		auth.On("CreateUser", mock.Anything, "bob", "", domain.Role("superuser")).
			Return(nil, domain.ErrInvalidRole)

		handler := NewAuthHandler(auth)

		body, _ := json.Marshal(CreateUserRequest{Username: "bob", Role: "superuser"})
		req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewReader(body))
		w := httptest.NewRecorder()

		handler.CreateUser(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid body", func(t *testing.T) {
		handler := NewAuthHandler(new(MockAuthService))

		req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewReader([]byte("not json")))
		w := httptest.NewRecorder()

		handler.CreateUser(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthHandler_CreateAPIKey(t *testing.T) {
	t.Run("returns plaintext token once", func(t *testing.T) {
		auth := new(MockAuthService)
		auth.On("CreateAPIKey", mock.Anything, "u-1", "ci key").
			Return("dvt_0123456789abcdef", nil)

		handler := NewAuthHandler(auth)

		body, _ := json.Marshal(CreateAPIKeyRequest{UserID: "u-1", Name: "ci key"})
		req := httptest.NewRequest(http.MethodPost, "/apikeys", bytes.NewReader(body))
		w := httptest.NewRecorder()

		handler.CreateAPIKey(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var resp CreateAPIKeyResponse
		decodeData(t, w, &resp)
		assert.Equal(t, "dvt_0123456789abcdef", resp.APIKey)
		auth.AssertExpectations(t)
	})

	t.Run("unknown user maps to not found", func(t *testing.T) {
		auth := new(MockAuthService)
		auth.On("CreateAPIKey", mock.Anything, "missing", "ci key").
			Return("", domain.ErrUserNotFound)

		handler := NewAuthHandler(auth)

		body, _ := json.Marshal(CreateAPIKeyRequest{UserID: "missing", Name: "ci key"})
		req := httptest.NewRequest(http.MethodPost, "/apikeys", bytes.NewReader(body))
		w := httptest.NewRecorder()

		handler.CreateAPIKey(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("invalid body", func(t *testing.T) {
		handler := NewAuthHandler(new(MockAuthService))

		req := httptest.NewRequest(http.MethodPost, "/apikeys", bytes.NewReader([]byte("{")))
		w := httptest.NewRecorder()

		handler.CreateAPIKey(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
