package i2cbridge

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mklimuk/i2cbridge/device"
)

var allCodes = []device.Code{
	device.CodeSuccess,
	device.CodeAddressNackEarly,
	device.CodeAddressNackLate,
	device.CodeDataNack,
	device.CodeBusError,
	device.CodeArbitrationLost,
	device.CodeBusLocked,
	device.CodeBusTimeout,
	device.CodeNoDevice,
	device.CodeBadResponse,
}

func TestError_KindTotality(t *testing.T) {
	tests := []struct {
		code     device.Code
		expected Kind
	}{
		{device.CodeSuccess, KindOther}, // caller defect, still classified
		{device.CodeAddressNackEarly, KindAddressNack},
		{device.CodeAddressNackLate, KindAddressNack},
		{device.CodeDataNack, KindDataNack},
		{device.CodeBusError, KindBus},
		{device.CodeArbitrationLost, KindArbitrationLoss},
		{device.CodeBusLocked, KindOther},
		{device.CodeBusTimeout, KindOther},
		{device.CodeNoDevice, KindOther},
		{device.CodeBadResponse, KindOther},
	}
	assert.Len(t, tests, len(allCodes))
	for _, test := range tests {
		t.Run(test.code.String(), func(t *testing.T) {
			err := &Error{Code: test.code, Op: "read"}
			assert.Equal(t, test.expected, err.Kind())
		})
	}
}

func TestError_NotFoundAndTemporaryDisjoint(t *testing.T) {
	for _, code := range allCodes {
		err := &Error{Code: code, Op: "read"}
		assert.False(t, err.DeviceNotFound() && err.Temporary(),
			"%s classified as both absent and temporary", code)
	}
}

func TestError_DeviceNotFound(t *testing.T) {
	notFound := map[device.Code]bool{
		device.CodeAddressNackEarly: true,
		device.CodeAddressNackLate:  true,
		device.CodeNoDevice:         true,
	}
	for _, code := range allCodes {
		err := &Error{Code: code, Op: "read"}
		assert.Equal(t, notFound[code], err.DeviceNotFound(), code.String())
	}
}

func TestError_RetryDelay(t *testing.T) {
	tests := []struct {
		code      device.Code
		expected  time.Duration
		suggested bool
	}{
		{device.CodeBusLocked, 10 * time.Millisecond, true},
		{device.CodeBusTimeout, 100 * time.Millisecond, true},
		{device.CodeArbitrationLost, time.Millisecond, true},
		{device.CodeBusError, 0, false},
		{device.CodeDataNack, 0, false},
	}
	for _, test := range tests {
		t.Run(test.code.String(), func(t *testing.T) {
			err := &Error{Code: test.code, Op: "write"}
			delay, ok := err.RetryDelay()
			assert.Equal(t, test.suggested, ok)
			assert.Equal(t, test.expected, delay)
		})
	}
}

func TestError_Rendering(t *testing.T) {
	err := &Error{Code: device.CodeDataNack, Op: "write_read_reg"}
	assert.Equal(t, "i2c write_read_reg operation failed: data NACK", err.Error())
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindBus, KindOf(&Error{Code: device.CodeBusError, Op: "read"}))
	assert.Equal(t, KindAddressNack,
		KindOf(fmt.Errorf("wrapped: %w", &Error{Code: device.CodeAddressNackLate, Op: "write"})))
	assert.Equal(t, KindOther, KindOf(errors.New("not a bus error")))
}
