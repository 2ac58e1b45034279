package main

import (
	"periph.io/x/conn/v3/i2c"
)

// periphBus adapts a periph I2C bus to the drivers.I2C interface of the
// driver.
type periphBus struct {
	i2c.Bus
}

func (b periphBus) ReadRegister(addr uint8, r uint8, buf []byte) error {
	return b.Tx(uint16(addr), []byte{r}, buf)
}

func (b periphBus) WriteRegister(addr uint8, r uint8, buf []byte) error {
	return b.Tx(uint16(addr), append([]byte{r}, buf...), nil)
}
