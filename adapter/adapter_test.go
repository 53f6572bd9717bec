package adapter

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mklimuk/i2cbridge"
	"github.com/mklimuk/i2cbridge/device"
)

var boundAddr = i2cbridge.SevenBit(0x48)

func TestAdapter_Read(t *testing.T) {
	client := &mockClient{}
	client.On("ReadInto", mock.Anything, mock.Anything).Return([]byte{0x17, 0x00}, nil)

	a := New(client)
	buf := make([]byte, 2)
	err := a.Read(context.Background(), boundAddr, buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x17, 0x00}, buf)
	client.AssertExpectations(t)
}

func TestAdapter_Read_IgnoresPerCallAddress(t *testing.T) {
	// the client binding is authoritative for 7-bit targets: a different
	// per-call address still reaches the same device
	client := &mockClient{}
	client.On("ReadInto", mock.Anything, mock.Anything).Return([]byte{0xAB}, nil)

	a := New(client)
	buf := make([]byte, 1)
	require.NoError(t, a.Read(context.Background(), i2cbridge.SevenBit(0x21), buf))
	assert.Equal(t, []byte{0xAB}, buf)
}

func TestAdapter_Read_WrapsFailure(t *testing.T) {
	client := &mockClient{}
	client.On("ReadInto", mock.Anything, mock.Anything).Return(nil, device.CodeBusError)

	a := New(client)
	err := a.Read(context.Background(), boundAddr, make([]byte, 1))
	var adapterErr *i2cbridge.Error
	require.ErrorAs(t, err, &adapterErr)
	assert.Equal(t, device.CodeBusError, adapterErr.Code)
	assert.Equal(t, "read", adapterErr.Op)
	assert.Equal(t, i2cbridge.KindBus, adapterErr.Kind())
}

func TestAdapter_Write(t *testing.T) {
	client := &mockClient{}
	client.On("Write", mock.Anything, []byte{0x01, 0x02}).Return(2, nil)

	a := New(client)
	require.NoError(t, a.Write(context.Background(), boundAddr, []byte{0x01, 0x02}))
	client.AssertExpectations(t)
}

func TestAdapter_Write_WrapsFailure(t *testing.T) {
	client := &mockClient{}
	client.On("Write", mock.Anything, mock.Anything).Return(0, device.CodeDataNack)

	a := New(client)
	err := a.Write(context.Background(), boundAddr, []byte{0x01})
	var adapterErr *i2cbridge.Error
	require.ErrorAs(t, err, &adapterErr)
	assert.Equal(t, "write", adapterErr.Op)
	assert.Equal(t, i2cbridge.KindDataNack, adapterErr.Kind())
}

func TestAdapter_Write_UncodedClientError(t *testing.T) {
	// a client failure without a status code counts as a bad response
	client := &mockClient{}
	client.On("Write", mock.Anything, mock.Anything).Return(0, errors.New("usb detached"))

	a := New(client)
	err := a.Write(context.Background(), boundAddr, []byte{0x01})
	var adapterErr *i2cbridge.Error
	require.ErrorAs(t, err, &adapterErr)
	assert.Equal(t, device.CodeBadResponse, adapterErr.Code)
	assert.Equal(t, i2cbridge.KindOther, adapterErr.Kind())
}

func TestAdapter_WriteRead_SingleByteUsesRegisterPrimitive(t *testing.T) {
	client := &mockClient{}
	client.On("ReadRegInto", mock.Anything, byte(0x00), mock.Anything).Return([]byte{0x17, 0x00}, nil)

	a := New(client)
	buf := make([]byte, 2)
	require.NoError(t, a.WriteRead(context.Background(), boundAddr, []byte{0x00}, buf))
	assert.Equal(t, []byte{0x17, 0x00}, buf)
	client.AssertNotCalled(t, "Write", mock.Anything, mock.Anything)
	client.AssertNotCalled(t, "ReadInto", mock.Anything, mock.Anything)
}

func TestAdapter_WriteRead_MultiByteFallsBack(t *testing.T) {
	client := &mockClient{}
	client.On("Write", mock.Anything, []byte{0x10, 0x20}).Return(2, nil)
	client.On("ReadInto", mock.Anything, mock.Anything).Return([]byte{0x55}, nil)

	a := New(client)
	buf := make([]byte, 1)
	require.NoError(t, a.WriteRead(context.Background(), boundAddr, []byte{0x10, 0x20}, buf))
	assert.Equal(t, []byte{0x55}, buf)
	client.AssertExpectations(t)
}

func TestAdapter_WriteRead_PhaseTags(t *testing.T) {
	tests := []struct {
		name       string
		writeErr   error
		readErr    error
		expectedOp string
	}{
		{"write phase", device.CodeAddressNackEarly, nil, "write_read_write_phase"},
		{"read phase", nil, device.CodeBusTimeout, "write_read_read_phase"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			client := &mockClient{}
			client.On("Write", mock.Anything, mock.Anything).Return(0, test.writeErr)
			client.On("ReadInto", mock.Anything, mock.Anything).Return(nil, test.readErr)

			a := New(client)
			err := a.WriteRead(context.Background(), boundAddr, []byte{0x10, 0x20}, make([]byte, 1))
			var adapterErr *i2cbridge.Error
			require.ErrorAs(t, err, &adapterErr)
			assert.Equal(t, test.expectedOp, adapterErr.Op)
		})
	}
}

func TestAdapter_Transaction_Sequential(t *testing.T) {
	client := &mockClient{}
	client.On("Write", mock.Anything, []byte{0x01}).Return(1, nil)
	client.On("ReadInto", mock.Anything, mock.Anything).Return([]byte{0xAA, 0xBB}, nil)

	a := New(client)
	buf := make([]byte, 2)
	ops := []i2cbridge.Operation{
		i2cbridge.WriteOp([]byte{0x01}),
		i2cbridge.ReadOp(buf),
	}
	require.NoError(t, a.Transaction(context.Background(), boundAddr, ops))
	assert.Equal(t, []byte{0xAA, 0xBB}, buf)
	client.AssertExpectations(t)
}

func TestAdapter_Transaction_StopsOnFirstFailure(t *testing.T) {
	client := &mockClient{}
	client.On("Write", mock.Anything, mock.Anything).Return(0, device.CodeAddressNackEarly)

	a := New(client)
	ops := []i2cbridge.Operation{
		i2cbridge.WriteOp([]byte{0x01}),
		i2cbridge.ReadOp(make([]byte, 2)),
	}
	err := a.Transaction(context.Background(), boundAddr, ops)
	var adapterErr *i2cbridge.Error
	require.ErrorAs(t, err, &adapterErr)
	assert.Equal(t, "transaction_write", adapterErr.Op)
	assert.Equal(t, i2cbridge.KindAddressNack, adapterErr.Kind())
	client.AssertNotCalled(t, "ReadInto", mock.Anything, mock.Anything)
}

func TestAdapter_TenBitWrite_HeaderBytes(t *testing.T) {
	// 0x123 >> 7 = 0x02 folded into 0xF0 gives 0xF2, low byte 0x23
	client := &mockClient{}
	client.On("Write", mock.Anything, []byte{0xF2, 0x23, 0xAA}).Return(3, nil)

	a := New(client)
	addr, err := i2cbridge.NewTenBit(0x123)
	require.NoError(t, err)
	require.NoError(t, a.Write(context.Background(), addr, []byte{0xAA}))
	client.AssertExpectations(t)
}

func TestAdapter_TenBitWrite_PayloadBound(t *testing.T) {
	client := &mockClient{}

	a := New(client)
	addr, err := i2cbridge.NewTenBit(0x123)
	require.NoError(t, err)

	// 256 bytes still fits the 258-byte outgoing buffer
	client.On("Write", mock.Anything, mock.Anything).Return(258, nil).Once()
	require.NoError(t, a.Write(context.Background(), addr, make([]byte, 256)))

	err = a.Write(context.Background(), addr, make([]byte, 257))
	var adapterErr *i2cbridge.Error
	require.ErrorAs(t, err, &adapterErr)
	assert.Equal(t, "10bit_write_buffer_overflow", adapterErr.Op)
	assert.Equal(t, i2cbridge.KindOther, adapterErr.Kind())
	client.AssertNumberOfCalls(t, "Write", 1)
}

func TestAdapter_TenBitRead_EmulatedSequence(t *testing.T) {
	client := &mockClient{}
	client.On("Write", mock.Anything, []byte{0xF2, 0x23}).Return(2, nil)
	client.On("ReadInto", mock.Anything, mock.Anything).Return([]byte{0x01, 0x02}, nil)

	a := New(client)
	addr, err := i2cbridge.NewTenBit(0x123)
	require.NoError(t, err)
	buf := make([]byte, 2)
	require.NoError(t, a.Read(context.Background(), addr, buf))
	assert.Equal(t, []byte{0x01, 0x02}, buf)
	client.AssertExpectations(t)
}

func TestAdapter_TenBitRead_SetupTag(t *testing.T) {
	client := &mockClient{}
	client.On("Write", mock.Anything, mock.Anything).Return(0, device.CodeAddressNackEarly)

	a := New(client)
	addr, err := i2cbridge.NewTenBit(0x123)
	require.NoError(t, err)
	err = a.Read(context.Background(), addr, make([]byte, 2))
	var adapterErr *i2cbridge.Error
	require.ErrorAs(t, err, &adapterErr)
	assert.Equal(t, "10bit_address_setup", adapterErr.Op)
	client.AssertNotCalled(t, "ReadInto", mock.Anything, mock.Anything)
}

func TestAdapter_ReadRegister(t *testing.T) {
	client := &mockClient{}
	client.On("ReadReg", mock.Anything, byte(0x0F)).Return(byte(0x17), nil)

	a := New(client)
	v, err := a.ReadRegister(context.Background(), 0x0F)
	require.NoError(t, err)
	assert.Equal(t, byte(0x17), v)
}

func TestAdapter_ReadBlock(t *testing.T) {
	client := &mockClient{}
	client.On("ReadBlock", mock.Anything, byte(0x20), mock.Anything).Return([]byte{0x01, 0x02, 0x03}, nil)

	a := New(client)
	buf := make([]byte, 8)
	n, err := a.ReadBlock(context.Background(), 0x20, buf)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, buf[:n])
}

func TestAdapter_ReadBlock_Tag(t *testing.T) {
	client := &mockClient{}
	client.On("ReadBlock", mock.Anything, mock.Anything, mock.Anything).Return(nil, device.CodeNoDevice)

	a := New(client)
	_, err := a.ReadBlock(context.Background(), 0x20, make([]byte, 8))
	var adapterErr *i2cbridge.Error
	require.ErrorAs(t, err, &adapterErr)
	assert.Equal(t, "smbus_block_read", adapterErr.Op)
	assert.True(t, adapterErr.DeviceNotFound())
}
