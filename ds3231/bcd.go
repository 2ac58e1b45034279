package ds3231

// DecodeBCD converts a BCD register value to decimal. Both nibbles must be in
// 0-9; anything else gives an undefined result.
func DecodeBCD(value uint8) uint8 {
	return value - 6*(value>>4)
}

// EncodeBCD converts a decimal value in 0-99 to BCD.
func EncodeBCD(value uint8) uint8 {
	return value + 6*(value/10)
}

// DecodeHour converts the hours register to an hour in 0-23. In 12-hour mode
// the register digits count from 1, so they are shifted down by one before the
// PM offset is applied.
func DecodeHour(value uint8) uint8 {
	if value&hour12Flag == 0 {
		return DecodeBCD(value)
	}
	hour := DecodeBCD(value&hour12Mask) - 1
	if value&pmFlag != 0 {
		hour += 12
	}
	return hour
}

// EncodeHour12 returns the 12-hour mode register value that DecodeHour maps
// back to hour.
func EncodeHour12(hour uint8) uint8 {
	value := hour12Flag | EncodeBCD(hour%12+1)
	if hour >= 12 {
		value |= pmFlag
	}
	return value
}

// DecodeMonth converts the month register to 1-12, dropping the century bit.
func DecodeMonth(value uint8) uint8 {
	return DecodeBCD(value & monthMask)
}

// OscillatorStopped reports whether the oscillator stop flag is set in the
// status register value.
func OscillatorStopped(status uint8) bool {
	return status&osfFlag != 0
}
