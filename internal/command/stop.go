package command

import "context"

const CmdStop Command = "STOP"

// Stop halts frame emission. Frames already in flight still arrive after the response.
func (c *Client) Stop(ctx context.Context) error {
	line, err := c.Do(ctx, CmdStop)
	if err != nil {
		return err
	}
	return expectOK(line, "STOPPED")
}
