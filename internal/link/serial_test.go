package link

import (
	"testing"

	"go.bug.st/serial/enumerator"
)

func TestMatchPort(t *testing.T) {
	ports := []*enumerator.PortDetails{
		{Name: "/dev/ttyS0"},
		{Name: "/dev/ttyUSB0", IsUSB: true, VID: "0403", PID: "6001"},
		nil,
		{Name: "/dev/ttyACM9", IsUSB: true, VID: "zz", PID: "5740"},
		{Name: "/dev/ttyACM0", IsUSB: true, VID: "0483", PID: "5740"},
		{Name: "COM7", IsUSB: true, VID: "0483", PID: "5740"},
	}

	tests := []struct {
		name     string
		vid, pid uint16
		want     string
		found    bool
	}{
		{name: "stm32 cdc", vid: STM32VID, pid: CDCPID, want: "/dev/ttyACM0", found: true},
		{name: "ftdi", vid: 0x0403, pid: 0x6001, want: "/dev/ttyUSB0", found: true},
		{name: "absent", vid: 0x1234, pid: 0x5678},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := matchPort(ports, tt.vid, tt.pid)
			if ok != tt.found || got != tt.want {
				t.Fatalf("matchPort = %q, %v; want %q, %v", got, ok, tt.want, tt.found)
			}
		})
	}
}

func TestMatchPortUppercaseIDs(t *testing.T) {
	// Windows reports hex IDs in upper case.
	ports := []*enumerator.PortDetails{{Name: "COM3", IsUSB: true, VID: "ABCD", PID: "00EF"}}
	if got, ok := matchPort(ports, 0xABCD, 0x00EF); !ok || got != "COM3" {
		t.Fatalf("matchPort = %q, %v", got, ok)
	}
}
