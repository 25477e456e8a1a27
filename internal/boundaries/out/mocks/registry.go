// Package mocks provides testify mocks of the output ports.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/bnema/eolkeeper/internal/domain"
)

// MockCredentialProvider is a mock implementation of out.CredentialProvider
type MockCredentialProvider struct {
	mock.Mock
}

func (m *MockCredentialProvider) GetCredentials(ctx context.Context, registry string) (*domain.RegistryCredentials, error) {
	args := m.Called(ctx, registry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RegistryCredentials), args.Error(1)
}

// MockRegistrySession is a mock implementation of out.RegistrySession
type MockRegistrySession struct {
	mock.Mock
}

func (m *MockRegistrySession) Login(ctx context.Context, creds *domain.RegistryCredentials, registry string) error {
	args := m.Called(ctx, creds, registry)
	return args.Error(0)
}

func (m *MockRegistrySession) Logout(ctx context.Context, registry string) error {
	args := m.Called(ctx, registry)
	return args.Error(0)
}

// MockAnnotator is a mock implementation of out.Annotator
type MockAnnotator struct {
	mock.Mock
}

func (m *MockAnnotator) IsAnnotated(ctx context.Context, reference string) (bool, error) {
	args := m.Called(ctx, reference)
	return args.Bool(0), args.Error(1)
}

func (m *MockAnnotator) Annotate(ctx context.Context, reference string, date domain.Date) error {
	args := m.Called(ctx, reference, date)
	return args.Error(0)
}

// MockHostPlatformProvider is a mock implementation of out.HostPlatformProvider
type MockHostPlatformProvider struct {
	mock.Mock
}

func (m *MockHostPlatformProvider) HostPlatform(ctx context.Context) (domain.HostPlatform, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.HostPlatform), args.Error(1)
}
