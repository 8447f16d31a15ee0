package command

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

const CmdStatus Command = "STATUS"

const (
	StateRunning = "RUNNING"
	StateIdle    = "IDLE"
)

// StatusResponse is the parsed STATUS:<state>,INT_TIME:<us> line.
type StatusResponse struct {
	State             string
	IntegrationTimeUS uint32
}

func (s StatusResponse) Running() bool { return s.State == StateRunning }

func (c *Client) Status(ctx context.Context) (StatusResponse, error) {
	line, err := c.Do(ctx, CmdStatus)
	if err != nil {
		return StatusResponse{}, err
	}
	return ParseStatus(line)
}

func ParseStatus(line string) (StatusResponse, error) {
	rest, ok := strings.CutPrefix(line, ResponseStatus)
	if !ok {
		return StatusResponse{}, fmt.Errorf("%w: %q", ErrUnexpected, line)
	}

	state, intTime, ok := strings.Cut(rest, ",")
	if !ok || (state != StateRunning && state != StateIdle) {
		return StatusResponse{}, fmt.Errorf("%w: %q", ErrMalformedStatus, line)
	}

	raw, ok := strings.CutPrefix(intTime, "INT_TIME:")
	if !ok {
		return StatusResponse{}, fmt.Errorf("%w: %q", ErrMalformedStatus, line)
	}
	us, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return StatusResponse{}, fmt.Errorf("%w: integration time %q: %v", ErrMalformedStatus, raw, err)
	}

	return StatusResponse{State: state, IntegrationTimeUS: uint32(us)}, nil
}
