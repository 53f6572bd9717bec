package adapter

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// mockClient is a testify mock of device.Client. Read-style methods take
// their canned payload from the first return value and report the second as
// the error.
type mockClient struct {
	mock.Mock
}

func (m *mockClient) Write(ctx context.Context, p []byte) (int, error) {
	args := m.Called(ctx, p)
	if err := args.Error(1); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (m *mockClient) ReadInto(ctx context.Context, buf []byte) (int, error) {
	args := m.Called(ctx, buf)
	n := 0
	if data, ok := args.Get(0).([]byte); ok {
		n = copy(buf, data)
	}
	return n, args.Error(1)
}

func (m *mockClient) ReadReg(ctx context.Context, reg byte) (byte, error) {
	args := m.Called(ctx, reg)
	value, _ := args.Get(0).(byte)
	return value, args.Error(1)
}

func (m *mockClient) ReadRegInto(ctx context.Context, reg byte, buf []byte) (int, error) {
	args := m.Called(ctx, reg, buf)
	n := 0
	if data, ok := args.Get(0).([]byte); ok {
		n = copy(buf, data)
	}
	return n, args.Error(1)
}

func (m *mockClient) ReadBlock(ctx context.Context, reg byte, buf []byte) (int, error) {
	args := m.Called(ctx, reg, buf)
	n := 0
	if data, ok := args.Get(0).([]byte); ok {
		n = copy(buf, data)
	}
	return n, args.Error(1)
}
