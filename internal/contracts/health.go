package contracts

// HealthStatus is the GET /health record shared by all three services.
type HealthStatus struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// OK reports whether the service considers itself healthy. The services
// disagree on the exact wording, so both common forms are accepted.
func (h HealthStatus) OK() bool {
	return h.Status == "healthy" || h.Status == "ok"
}
