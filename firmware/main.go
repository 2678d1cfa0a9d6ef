//go:build tinygo

//go:generate tinygo flash -target=xiao

package main

import (
	"machine"
	"strconv"
)

var (
	adc  machine.ADC
	uart = machine.UART0

	// Line buffer for the decimal reading plus newline
	lineBuffer [8]byte
)

func main() {
	// Configure ADC pin and set up the ADC with highest resolution
	PIN_ADC.Configure(machine.PinConfig{Mode: machine.PinInput})

	adc = machine.ADC{Pin: PIN_ADC}
	adc.Configure(machine.ADCConfig{
		Reference:  ADC_REFERENCE_MV,
		Resolution: ADC_RESOLUTION,
	})

	uart.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})

	// Sample the line as fast as the UART can drain. The host keeps
	// only the latest reading and does its own pacing, so there is no
	// sample timer here; a timer would just cap the rate the host's
	// calibration could reach.
	for {
		value := adc.Get() >> ADC_SHIFT
		writeLine(uint32(value))
	}
}

// writeLine sends one unsigned decimal reading followed by newline.
func writeLine(value uint32) {
	out := strconv.AppendUint(lineBuffer[:0], uint64(value), 10)
	out = append(out, '\n')
	_, _ = uart.Write(out)
}
