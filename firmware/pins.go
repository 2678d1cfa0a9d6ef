//go:build tinygo

package main

import "machine"

const (
	// ADC configuration
	ADC_REFERENCE_MV = 3300 // Reference voltage in millivolts (3.3V)
	ADC_RESOLUTION   = 12   // ADC resolution in bits (12-bit = 0-4095)
	ADC_SHIFT        = 4    // machine.ADC.Get returns 16-bit left-justified values

	// ADC pin wired to the phone line through the coupling circuit
	PIN_ADC = machine.A1

	// Serial configuration
	// Baud rate calculation: format "reading\n", e.g. "4095\n" = 5 bytes.
	// UART 8N1: 10 bits/byte = 50 bits per reading, so the wire carries
	// baud/50 readings per second. The host needs several thousand
	// samples/sec to clear Nyquist for the 1633 Hz high tone; 115200
	// baud only sustains ~2300 readings/sec, so run the UART at 460800
	// (~9200 readings/sec). The host's calibration settles to whatever
	// rate actually arrives.
	UART_BAUD_RATE = 460800
)
