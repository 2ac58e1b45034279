package ds3231

// PowerState tracks what is known about the oscillator stop flag during one
// power cycle.
type PowerState uint8

const (
	PowerUnknown      PowerState = iota // not checked yet
	PowerChecked                        // status register read
	PowerAcknowledged                   // flag cleared by AcknowledgePowerLoss
	PowerSuperseded                     // a new time was written after the check
)

func (s PowerState) String() string {
	switch s {
	case PowerChecked:
		return "checked"
	case PowerAcknowledged:
		return "acknowledged"
	case PowerSuperseded:
		return "superseded"
	}
	return "unknown"
}

// PowerLossStatus is the result of a power loss check. It is owned by the
// caller, who passes it back to AcknowledgePowerLoss.
type PowerLossStatus struct {
	// Raw is the status register as read.
	Raw   uint8
	State PowerState
}

// Stopped reports whether the oscillator stop flag is set in Raw.
func (s PowerLossStatus) Stopped() bool {
	return OscillatorStopped(s.Raw)
}

// Suspect reports whether the time on the device is still untrusted: the flag
// was found set and neither an acknowledgement nor a new time followed.
func (s PowerLossStatus) Suspect() bool {
	return s.State == PowerChecked && s.Stopped()
}

// Supersede records that a new time was written successfully. A suspect
// status moves to PowerSuperseded; any other status is returned unchanged.
func (s PowerLossStatus) Supersede() PowerLossStatus {
	if s.Suspect() {
		s.State = PowerSuperseded
	}
	return s
}

// PowerLost reads the status register.
func (d *Device) PowerLost() (PowerLossStatus, error) {
	bus, err := d.conn()
	if err != nil {
		return PowerLossStatus{}, err
	}
	var data [1]byte
	if err := bus.ReadRegisters(RegStatus, data[:]); err != nil {
		return PowerLossStatus{}, err
	}
	return PowerLossStatus{Raw: data[0], State: PowerChecked}, nil
}

// AcknowledgePowerLoss confirms that the time on the device is good by
// writing back the status register from s with the oscillator stop flag
// cleared. The other bits are written as they were read.
func (d *Device) AcknowledgePowerLoss(s PowerLossStatus) (PowerLossStatus, error) {
	if s.State == PowerUnknown {
		return s, invalidArgument("power loss status not checked")
	}
	bus, err := d.conn()
	if err != nil {
		return s, err
	}
	data := [1]byte{s.Raw &^ osfFlag}
	if err := bus.WriteRegisters(RegStatus, data[:]); err != nil {
		return s, err
	}
	return PowerLossStatus{Raw: data[0], State: PowerAcknowledged}, nil
}
