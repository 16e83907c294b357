// Package mocks holds testify mocks for the gsm package.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockFilter is a mock implementation of gsm.Filter.
type MockFilter struct {
	mock.Mock
}

// NewMockFilter creates a MockFilter whose expectations are asserted when the test ends.
func NewMockFilter(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockFilter {
	m := &MockFilter{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockFilter) Check(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockFilter) Encode(ctx context.Context, inPath, artifactPath string, normalize bool) error {
	args := m.Called(ctx, inPath, artifactPath, normalize)
	return args.Error(0)
}

func (m *MockFilter) Decode(ctx context.Context, artifactPath, outPath string) error {
	args := m.Called(ctx, artifactPath, outPath)
	return args.Error(0)
}
