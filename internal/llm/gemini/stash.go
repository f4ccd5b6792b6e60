package gemini

// Discovery probes carry a real extraction request, so the invocation
// that won the probe already holds its answer. The response is stashed
// under that invocation's request ID; losers of the shared probe miss
// here and issue their own call with the adopted identifier, since the
// probe's response belongs to a different document.

func (c *Client) stashProbeResult(rid, raw string) {
	c.probeMu.Lock()
	defer c.probeMu.Unlock()
	if c.probeResults == nil {
		c.probeResults = make(map[string]string)
	}
	c.probeResults[rid] = raw
}

func (c *Client) takeProbeResult(rid string) (string, bool) {
	c.probeMu.Lock()
	defer c.probeMu.Unlock()
	raw, ok := c.probeResults[rid]
	if ok {
		delete(c.probeResults, rid)
	}
	return raw, ok
}
