package api

import "github.com/meridian-compute/flowscale/flowscale/structs"

// Status is used to query all status related endpoints.
type Status struct {
	client *Client
}

// Status returns a handle on the status related endpoints.
func (c *Client) Status() *Status {
	return &Status{client: c}
}

// Agent is used to query information regarding the running Flowscale agent.
func (s *Status) Agent() (structs.StatusResponse, error) {
	var resp structs.StatusResponse

	err := s.client.query("/v1/status", &resp)
	if err != nil {
		return resp, err
	}

	return resp, nil
}

// Decisions is used to query the scaling decisions taken on the most recent
// evaluation cycle.
func (s *Status) Decisions() (structs.DecisionsResponse, error) {
	var resp structs.DecisionsResponse

	err := s.client.query("/v1/status/decisions", &resp)
	if err != nil {
		return resp, err
	}

	return resp, nil
}
