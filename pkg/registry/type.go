package registry

import (
	"net/http"

	"go.uber.org/zap"
)

// ReportRequest is submitted to the registry for every reachability report.
type ReportRequest struct {
	ID        string `json:"id"`
	Reporter  string `json:"reporter"`
	PubKey    string `json:"pubkey"`
	Reachable bool   `json:"reachable"`
	Timestamp int64  `json:"timestamp"`
}

type ServiceNode struct {
	PubKey string `json:"pubkey"`
	Active bool   `json:"active"`
}

type ServiceNodesResponse struct {
	ServiceNodes []ServiceNode `json:"service_nodes"`
}

type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
	Logger  *zap.Logger

	self string
}
