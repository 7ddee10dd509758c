// Package testutil provides mock implementations of the interfaces the
// batch runner depends on, plus filesystem helpers for tests.
package testutil

import (
	"time"

	"github.com/stackvity/json2csv/pkg/converter"
	"github.com/stretchr/testify/mock"
)

// MockEncodingHandler provides a mock implementation of the encoding.EncodingHandler interface.
// Configure expectations using testify/mock methods (e.g., .On("DetectAndDecode", ...).Return(...)).
type MockEncodingHandler struct {
	mock.Mock
}

// DetectAndDecode mocks the DetectAndDecode method.
func (m *MockEncodingHandler) DetectAndDecode(content []byte) (utf8Content []byte, detectedEncoding string, certainty bool, err error) {
	args := m.Called(content)
	utf8Content, _ = args.Get(0).([]byte)
	detectedEncoding, _ = args.Get(1).(string)
	certainty, _ = args.Get(2).(bool)
	err = args.Error(3)
	return
}

// DecodeAs mocks the DecodeAs method.
func (m *MockEncodingHandler) DecodeAs(content []byte, name string) ([]byte, error) {
	args := m.Called(content, name)
	out, _ := args.Get(0).([]byte)
	return out, args.Error(1)
}

// IsBinary mocks the IsBinary method.
func (m *MockEncodingHandler) IsBinary(content []byte) bool {
	args := m.Called(content)
	isBinary, _ := args.Get(0).(bool)
	return isBinary
}

// MockHooks provides a mock implementation of the converter.Hooks interface.
// The runner calls hooks from several goroutines; testify/mock records
// calls under its own lock, but any extra state a test adds must be
// protected by the test itself.
type MockHooks struct {
	mock.Mock
}

// OnFileStatusUpdate mocks the OnFileStatusUpdate method.
func (m *MockHooks) OnFileStatusUpdate(path string, status converter.Status, message string, duration time.Duration) error {
	args := m.Called(path, status, message, duration)
	return args.Error(0)
}

// OnRunComplete mocks the OnRunComplete method.
func (m *MockHooks) OnRunComplete(report converter.Report) error {
	args := m.Called(report)
	return args.Error(0)
}

// ExpectAnyStatus allows any number of status updates.
func (m *MockHooks) ExpectAnyStatus() *MockHooks {
	m.On("OnFileStatusUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	return m
}
