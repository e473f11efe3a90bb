package model

import "time"

// InputUnit is one source file tracked for change across runs.
//
// Path and Status are the join keys the next run uses to correlate prior and
// current state; renaming either field breaks incremental processing.
type InputUnit struct {
	Path         string     `json:"path"`
	Fingerprint  string     `json:"fingerprint"`
	Status       UnitStatus `json:"status"`
	LastModified time.Time  `json:"last_modified"`
}

// UnitError records a unit that could not be read this run.
// The failure is isolated: other units classify normally.
type UnitError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}
