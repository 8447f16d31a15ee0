package command

import (
	"context"
	"errors"
	"fmt"
)

const setIntTimePrefix = "SET_INT_TIME:"

// Integration time limits enforced by the firmware.
const (
	MinIntegrationTimeUS = 10
	MaxIntegrationTimeUS = 100000
)

var ErrInvalidIntegrationTime = errors.New("command: integration time out of range")

func SetIntTime(us uint32) Command {
	return Command(fmt.Sprintf("%s%d", setIntTimePrefix, us))
}

// SetIntegrationTime requests a new integration time. Current firmware stores the value but
// answers ERROR:NOT_IMPLEMENTED; that surfaces as a *DeviceError with CodeNotImplemented.
func (c *Client) SetIntegrationTime(ctx context.Context, us uint32) error {
	if us < MinIntegrationTimeUS || us > MaxIntegrationTimeUS {
		return fmt.Errorf("%w: %d not in %d..%d", ErrInvalidIntegrationTime, us, MinIntegrationTimeUS, MaxIntegrationTimeUS)
	}

	line, err := c.Do(ctx, SetIntTime(us))
	if err != nil {
		return err
	}
	return expectOK(line, "INT_TIME_SET")
}
