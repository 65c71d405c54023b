package model

import "encoding/json"

// VerdictStatus registry classification of a plate
type VerdictStatus string

const (
	VerdictActive     VerdictStatus = "ACTIVE"
	VerdictNotActive  VerdictStatus = "NOT_ACTIVE"
	VerdictUnverified VerdictStatus = "UNVERIFIED"
)

// Verdict result of the external registry lookup for one query
type Verdict struct {
	Status  VerdictStatus   `json:"status"`
	Plate   string          `json:"plate"`
	Payload json.RawMessage `json:"payload,omitempty"` // raw "data" node when ACTIVE
	Detail  string          `json:"detail,omitempty"`  // why the lookup did not confirm
}

// Active reports whether the registry confirmed the plate.
func (v Verdict) Active() bool {
	return v.Status == VerdictActive
}
