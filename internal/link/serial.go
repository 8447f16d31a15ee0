package link

import (
	"fmt"
	"log/slog"
	"strconv"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

const (
	// STM32 USB CDC virtual COM port
	STM32VID = 0x0483
	CDCPID   = 0x5740

	// CDC ignores the line rate; it is only set because the port API requires one.
	DefaultBaudRate = 115200
)

// SerialPort is the sensor's CDC-ACM virtual COM port.
type SerialPort struct {
	serial.Port
	name string
}

// FindPort returns the name of the first serial port whose USB VID/PID match.
func FindPort(vendorID, productID uint16) (string, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return "", fmt.Errorf("list serial ports: %w", err)
	}
	name, ok := matchPort(ports, vendorID, productID)
	if !ok {
		return "", fmt.Errorf("sensor not found (VID:0x%04X PID:0x%04X); found %d other serial ports", vendorID, productID, len(ports))
	}
	return name, nil
}

func matchPort(ports []*enumerator.PortDetails, vendorID, productID uint16) (string, bool) {
	for _, p := range ports {
		if p == nil || !p.IsUSB {
			continue
		}
		vid, err := strconv.ParseUint(p.VID, 16, 16)
		if err != nil {
			continue
		}
		pid, err := strconv.ParseUint(p.PID, 16, 16)
		if err != nil {
			continue
		}
		if uint16(vid) == vendorID && uint16(pid) == productID {
			return p.Name, true
		}
	}
	return "", false
}

// OpenSerial opens the named port, asserts DTR and discards whatever the driver buffered before
// the port was opened.
func OpenSerial(name string, baudRate int) (*SerialPort, error) {
	if baudRate <= 0 {
		baudRate = DefaultBaudRate
	}
	p, err := serial.Open(name, &serial.Mode{BaudRate: baudRate})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", name, err)
	}

	if err := p.SetDTR(true); err != nil {
		slog.Warn("set DTR failed", slog.String("port", name), slog.Any("error", err))
	}
	if err := p.ResetInputBuffer(); err != nil {
		slog.Warn("reset input buffer failed", slog.String("port", name), slog.Any("error", err))
	}

	slog.Info("serial port opened", slog.String("port", name), slog.Int("baud", baudRate))
	return &SerialPort{Port: p, name: name}, nil
}

func (p *SerialPort) Read(b []byte) (int, error) {
	n, err := p.Port.Read(b)
	if err != nil {
		return n, fmt.Errorf("serial read %s: %w", p.name, err)
	}
	return n, nil
}

func (p *SerialPort) Write(b []byte) (int, error) {
	n, err := p.Port.Write(b)
	if err != nil {
		return n, fmt.Errorf("serial write %s: %w", p.name, err)
	}
	return n, nil
}
