package bus

import "syscall"

func init() {
	// i2c-dev reports a data phase NACK as EREMOTEIO.
	nackErrors = append(nackErrors, syscall.EREMOTEIO)
}
