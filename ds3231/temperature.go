package ds3231

import "strconv"

// Temperature is a reading of the onboard sensor in steps of 0.25 °C.
type Temperature int16

// Celsius returns the temperature in degrees Celsius.
func (t Temperature) Celsius() float32 {
	return float32(t) * 0.25
}

// MilliCelsius returns the temperature in thousandths of a degree Celsius.
func (t Temperature) MilliCelsius() int32 {
	return int32(t) * 250
}

func (t Temperature) String() string {
	return strconv.FormatFloat(float64(t.Celsius()), 'f', 2, 32) + "°C"
}

// ReadTemperature reads the temperature registers. The MSB is the signed
// integer part and the top two bits of the LSB are the fraction.
func (d *Device) ReadTemperature() (Temperature, error) {
	bus, err := d.conn()
	if err != nil {
		return 0, err
	}
	var data [2]byte
	if err := bus.ReadRegisters(RegTemp, data[:]); err != nil {
		return 0, err
	}
	return Temperature(int16(int8(data[0]))<<2 | int16(data[1]>>6)), nil
}
