package registry

import (
	"context"

	"github.com/algopoap/poap-service/interfaces"
	"github.com/stretchr/testify/mock"
)

// MockRegistry mocks the CertificateRegistry interface
type MockRegistry struct {
	mock.Mock
}

// Register mocks the Register method
func (m *MockRegistry) Register(ctx context.Context, hash interfaces.CertificateHash) error {
	args := m.Called(ctx, hash)
	return args.Error(0)
}

// Verify mocks the Verify method
func (m *MockRegistry) Verify(ctx context.Context, hash interfaces.CertificateHash) (interfaces.OwnerIdentity, error) {
	args := m.Called(ctx, hash)
	if args.Get(0) == nil {
		return interfaces.NoOwner, args.Error(1)
	}
	return args.Get(0).(interfaces.OwnerIdentity), args.Error(1)
}

// Transfer mocks the Transfer method
func (m *MockRegistry) Transfer(ctx context.Context, hash interfaces.CertificateHash, newOwner interfaces.OwnerIdentity) error {
	args := m.Called(ctx, hash, newOwner)
	return args.Error(0)
}

// MockBoxStore mocks the BoxStore interface
type MockBoxStore struct {
	mock.Mock
}

// Get mocks the Get method
func (m *MockBoxStore) Get(ctx context.Context, key []byte) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// Put mocks the Put method
func (m *MockBoxStore) Put(ctx context.Context, key []byte, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

// Has mocks the Has method
func (m *MockBoxStore) Has(ctx context.Context, key []byte) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}
