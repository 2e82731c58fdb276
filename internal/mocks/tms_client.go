// Package mocks holds test doubles for the TMS API client.
package mocks

import (
	"context"

	"transit-admin/internal/domain"
	"transit-admin/internal/tmsapi"

	"github.com/stretchr/testify/mock"
)

// TMSClient is a mock implementation of tmsapi.Client.
type TMSClient struct {
	mock.Mock
}

func (m *TMSClient) Login(ctx context.Context, email, password string) (*tmsapi.Credentials, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tmsapi.Credentials), args.Error(1)
}

func (m *TMSClient) GetUser(ctx context.Context, token, id string) (*domain.User, error) {
	args := m.Called(ctx, token, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *TMSClient) UpdateUser(ctx context.Context, token, id string, update domain.UserUpdate) (*domain.User, error) {
	args := m.Called(ctx, token, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *TMSClient) ListUsers(ctx context.Context, token string, opts tmsapi.ListOptions) (*tmsapi.UserPage, error) {
	args := m.Called(ctx, token, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tmsapi.UserPage), args.Error(1)
}

func (m *TMSClient) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
