package i2cbridge

import (
	"errors"
	"fmt"
	"time"

	"github.com/mklimuk/i2cbridge/device"
)

// Kind is the semantic classification of a bus failure.
type Kind int

const (
	// KindOther covers every status not otherwise named, including
	// conditions local to the adaptation layer itself.
	KindOther Kind = iota
	// KindAddressNack means the target did not acknowledge its address.
	KindAddressNack
	// KindDataNack means the target did not acknowledge a data byte.
	KindDataNack
	// KindBus means an electrical or framing level bus fault.
	KindBus
	// KindArbitrationLoss means another master took the bus.
	KindArbitrationLoss
)

func (k Kind) String() string {
	switch k {
	case KindAddressNack:
		return "address NACK"
	case KindDataNack:
		return "data NACK"
	case KindBus:
		return "bus error"
	case KindArbitrationLoss:
		return "arbitration loss"
	default:
		return "other"
	}
}

// BusError is the error contract every layer exposes to callers.
type BusError interface {
	error
	Kind() Kind
}

// Error pairs a low-level status code with the internal step that produced
// it. The operation tag is advisory context; classification depends on the
// code alone.
type Error struct {
	Code device.Code
	Op   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("i2c %s operation failed: %s", e.Op, e.Code)
}

// Kind maps the status code to its semantic classification. CodeSuccess
// should never reach an Error value; it classifies as KindOther, flagging a
// defect in the caller rather than a new condition.
func (e *Error) Kind() Kind {
	switch e.Code {
	case device.CodeAddressNackEarly, device.CodeAddressNackLate:
		return KindAddressNack
	case device.CodeDataNack:
		return KindDataNack
	case device.CodeBusError:
		return KindBus
	case device.CodeArbitrationLost:
		return KindArbitrationLoss
	default:
		return KindOther
	}
}

// DeviceNotFound reports whether the failure signals that the target is
// absent from the bus, a terminal condition for that address.
func (e *Error) DeviceNotFound() bool {
	switch e.Code {
	case device.CodeAddressNackEarly, device.CodeAddressNackLate, device.CodeNoDevice:
		return true
	}
	return false
}

// Temporary reports whether the bus is transiently unusable, as opposed to
// the target being absent.
func (e *Error) Temporary() bool {
	switch e.Code {
	case device.CodeBusLocked, device.CodeBusTimeout, device.CodeArbitrationLost:
		return true
	}
	return false
}

// RetryDelay suggests a base wait before retrying temporary conditions.
// The retry layer treats it as a floor, not a schedule.
func (e *Error) RetryDelay() (time.Duration, bool) {
	switch e.Code {
	case device.CodeBusLocked:
		return 10 * time.Millisecond, true
	case device.CodeBusTimeout:
		return 100 * time.Millisecond, true
	case device.CodeArbitrationLost:
		return time.Millisecond, true
	}
	return 0, false
}

// KindOf extracts the semantic kind from any error. Errors that do not
// implement BusError fall into the unclassified bucket.
func KindOf(err error) Kind {
	var be BusError
	if errors.As(err, &be) {
		return be.Kind()
	}
	return KindOther
}
