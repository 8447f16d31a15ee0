package command

import "context"

const CmdStart Command = "START"

// Start begins frame emission.
func (c *Client) Start(ctx context.Context) error {
	line, err := c.Do(ctx, CmdStart)
	if err != nil {
		return err
	}
	return expectOK(line, "STARTED")
}
