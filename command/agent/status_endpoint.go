package agent

import (
	"net/http"

	"github.com/meridian-compute/flowscale/flowscale/structs"
	"github.com/meridian-compute/flowscale/version"
)

// StatusRequest is used to perform the Status API request and reports the
// agent version along with the scaling strategy in force.
func (s *HTTPServer) StatusRequest(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	if req.Method != "GET" {
		return nil, CodedError(405, ErrInvalidMethod)
	}

	status := structs.StatusResponse{
		Version: version.Get(),
		Mode:    s.Runner().Strategy().Mode().String(),
	}
	return status, nil
}

// StatusDecisionsRequest is used to perform the Status.Decisions API request
// and reports the scaling decisions taken on the most recent evaluation
// cycle.
func (s *HTTPServer) StatusDecisionsRequest(resp http.ResponseWriter, req *http.Request) (interface{}, error) {
	if req.Method != "GET" {
		return nil, CodedError(405, ErrInvalidMethod)
	}

	decisions := structs.DecisionsResponse{
		Decisions: s.Runner().Strategy().LastDecisions(),
	}
	return decisions, nil
}
