// Package command implements the host side of the sensor's ASCII control protocol: newline
// terminated commands answered by a single newline terminated response line on the same link
// that carries the binary frame stream.
package command

import (
	"errors"
	"fmt"
	"strings"
)

const (
	ResponseOK     = "OK:"
	ResponseError  = "ERROR:"
	ResponseStatus = "STATUS:"

	// From command_layer.c; longer responses are not produced by the firmware.
	MaxResponseLength = 128
)

var (
	ErrTimeout         = errors.New("command: timed out waiting for response")
	ErrUnexpected      = errors.New("command: unexpected response")
	ErrMalformedStatus = errors.New("command: malformed status response")
)

// Command is one control line without its terminator.
type Command string

func (c Command) Bytes() []byte {
	return []byte(string(c) + "\n")
}

// DeviceError is an ERROR:<code>[:<detail>] response.
type DeviceError struct {
	Code   string
	Detail string
}

func (e *DeviceError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("device error: %s", e.Code)
	}
	return fmt.Sprintf("device error: %s: %s", e.Code, e.Detail)
}

const (
	CodeUnknownCommand = "UNKNOWN_CMD"
	CodeCommandTooLong = "CMD_TOO_LONG"
	CodeNotImplemented = "NOT_IMPLEMENTED"
	CodeInvalidParam   = "INVALID_PARAM"
)

func parseDeviceError(line string) *DeviceError {
	rest := strings.TrimPrefix(line, ResponseError)
	code, detail, _ := strings.Cut(rest, ":")
	return &DeviceError{Code: code, Detail: detail}
}

// expectOK returns nil when line is exactly OK:<want>.
func expectOK(line, want string) error {
	if line == ResponseOK+want {
		return nil
	}
	return fmt.Errorf("%w: %q, want %q", ErrUnexpected, line, ResponseOK+want)
}
