package ds3231

const (
	Address = 0x68 // I2C address for DS3231

	RegTime     = 0x00 // Time registers starting with seconds
	RegSeconds  = 0x00 // Seconds, BCD 0-59
	RegMinutes  = 0x01 // Minutes, BCD 0-59
	RegHours    = 0x02 // Hours, 12/24 flag, PM flag, BCD
	RegWeekday  = 0x03 // Day of week, BCD 1-7
	RegDate     = 0x04 // Day of month, BCD 1-31
	RegMonth    = 0x05 // Century flag and month, BCD 1-12
	RegYear     = 0x06 // Year, BCD 0-99
	RegControl  = 0x0E // Control register
	RegStatus   = 0x0F // Control/status register
	RegTemp     = 0x11 // Temperature MSB, LSB follows at 0x12
)

// Bits and masks.
const (
	secondsMask = 0x7F // & RegSeconds
	hour12Flag  = 0x40 // RegHours: 12-hour mode
	pmFlag      = 0x20 // RegHours: PM, 12-hour mode only
	hour12Mask  = 0x1F // RegHours: hour digits in 12-hour mode
	centuryFlag = 0x80 // RegMonth: century, ignored
	monthMask   = 0x7F // & RegMonth
	osfFlag     = 0x80 // RegStatus: oscillator stop flag
	eoscFlag    = 0x80 // RegControl: oscillator disabled on battery
)

// timeRegisters is the length of the contiguous time block at RegTime.
const timeRegisters = 7
