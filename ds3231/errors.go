package ds3231

import "fmt"

// Status classifies the errors returned by the driver.
type Status int

// Error codes
const (
	InvalidArgument Status = iota + 1 // malformed input, out of range field, failed render
	NoMemory                          // output buffer too small
	BusBusy                           // bus gate not acquired in time
	Timeout                           // transport did not finish in time
	TransportNack                     // device did not acknowledge the transfer
	NotInitialized                    // operation before Configure
)

func (s Status) String() string {
	switch s {
	case InvalidArgument:
		return "invalid argument"
	case NoMemory:
		return "no memory"
	case BusBusy:
		return "bus busy"
	case Timeout:
		return "timeout"
	case TransportNack:
		return "transport nack"
	case NotInitialized:
		return "not initialized"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// StatusErr is the error type of every driver operation. Two StatusErr values
// match under errors.Is when their Status is equal, so callers can test a
// returned error against the Err* values below.
type StatusErr struct {
	Status  Status
	Message string
	Err     error
}

func (se *StatusErr) Error() string {
	msg := se.Message
	if msg == "" {
		msg = se.Status.String()
	}
	if se.Err != nil {
		return "ds3231: " + msg + ": " + se.Err.Error()
	}
	return "ds3231: " + msg
}

func (se *StatusErr) Unwrap() error {
	return se.Err
}

func (se *StatusErr) Is(target error) bool {
	t, ok := target.(*StatusErr)
	return ok && t.Status == se.Status
}

var (
	ErrInvalidArgument = &StatusErr{Status: InvalidArgument}
	ErrNoMemory        = &StatusErr{Status: NoMemory}
	ErrBusBusy         = &StatusErr{Status: BusBusy}
	ErrTimeout         = &StatusErr{Status: Timeout}
	ErrTransportNack   = &StatusErr{Status: TransportNack}
	ErrNotInitialized  = &StatusErr{Status: NotInitialized}
)

func invalidArgument(format string, args ...interface{}) error {
	return &StatusErr{Status: InvalidArgument, Message: fmt.Sprintf(format, args...)}
}
