package i2cbridge

import "fmt"

// Addr is a per-operation target address. Two widths exist on an I2C bus:
// classic 7-bit addressing and the extended 10-bit scheme. Concrete values
// are SevenBit and TenBit.
type Addr interface {
	// Value returns the raw address bits.
	Value() uint16
	// Bits returns the address width, 7 or 10.
	Bits() int
}

// SevenBit is a 7-bit device address.
type SevenBit uint8

// NewSevenBit validates value against the I2C specification: addresses
// below 0x08 and above 0x77 are reserved and rejected. Use a plain type
// conversion for pre-validated inputs.
func NewSevenBit(value byte) (SevenBit, error) {
	if value > 0x7F {
		return 0, &InvalidAddressError{Value: uint16(value), Fault: FaultSevenBitRange}
	}
	if value < 0x08 || value > 0x77 {
		return 0, &InvalidAddressError{Value: uint16(value), Fault: FaultReserved}
	}
	return SevenBit(value), nil
}

func (a SevenBit) Value() uint16 {
	return uint16(a)
}

func (a SevenBit) Bits() int {
	return 7
}

// TenBit is a 10-bit device address.
type TenBit uint16

// NewTenBit validates that value fits in 10 bits.
func NewTenBit(value uint16) (TenBit, error) {
	if value > 0x3FF {
		return 0, &InvalidAddressError{Value: value, Fault: FaultTenBitRange}
	}
	return TenBit(value), nil
}

func (a TenBit) Value() uint16 {
	return uint16(a)
}

func (a TenBit) Bits() int {
	return 10
}

// AddrEqual compares two addresses structurally: same width, same bits.
func AddrEqual(a, b Addr) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Bits() == b.Bits() && a.Value() == b.Value()
}

// AddressFault tags the reason an address was rejected.
type AddressFault int

const (
	// FaultSevenBitRange means the value does not fit in 7 bits.
	FaultSevenBitRange AddressFault = iota
	// FaultTenBitRange means the value does not fit in 10 bits.
	FaultTenBitRange
	// FaultReserved means the value falls in a range reserved by the
	// I2C specification.
	FaultReserved
)

// InvalidAddressError is returned by the validating address constructors.
// It carries the offending value for diagnostics.
type InvalidAddressError struct {
	Value uint16
	Fault AddressFault
}

func (e *InvalidAddressError) Error() string {
	switch e.Fault {
	case FaultSevenBitRange:
		return fmt.Sprintf("address 0x%02X exceeds 7-bit range (0x00-0x7F)", e.Value)
	case FaultTenBitRange:
		return fmt.Sprintf("address 0x%03X exceeds 10-bit range (0x000-0x3FF)", e.Value)
	default:
		return fmt.Sprintf("address 0x%02X is in reserved range", e.Value)
	}
}
