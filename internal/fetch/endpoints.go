package fetch

import "fmt"

// /bootstrap-static/
func (c *Client) BootstrapStatic(force bool) ([]byte, error) {
	return c.FetchRaw("/bootstrap-static/", "bootstrap/bootstrap-static.json", force)
}

// /fixtures/?event={gw}
func (c *Client) EventFixtures(gw int, force bool) ([]byte, error) {
	return c.FetchRaw(
		fmt.Sprintf("/fixtures/?event=%d", gw),
		fmt.Sprintf("fixtures/event_%d.json", gw),
		force,
	)
}
