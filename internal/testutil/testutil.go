// Package testutil provides mocks and fixtures shared by the store tests.
package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/GriffinCanCode/erpshell/internal/api/client"
	"github.com/GriffinCanCode/erpshell/internal/shared/types"
)

// MockBackend is a mock of the auth endpoints used by the session store.
type MockBackend struct {
	mock.Mock
}

// Login mocks the Login method.
func (m *MockBackend) Login(ctx context.Context, req client.LoginRequest) (*client.LoginResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.LoginResponse), args.Error(1)
}

// Validate mocks the Validate method.
func (m *MockBackend) Validate(ctx context.Context) (*client.ValidateResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.ValidateResponse), args.Error(1)
}

// Logout mocks the Logout method.
func (m *MockBackend) Logout(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// NewMockBackend creates a mock whose calls must all be declared by the test.
func NewMockBackend(t *testing.T) *MockBackend {
	t.Helper()
	m := new(MockBackend)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// AdminUser is the identity used across store tests.
func AdminUser() *types.User {
	return &types.User{ID: "1", Login: "admin", Name: "Administrator", Email: "admin@erp.test", Role: "admin"}
}

// LoginWith matches a LoginRequest by login and conflict action.
func LoginWith(login, action string) any {
	return mock.MatchedBy(func(req client.LoginRequest) bool {
		return req.Login == login && req.Action == action
	})
}
