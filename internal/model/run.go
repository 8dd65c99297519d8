package model

// RunStats counts what happened to the items of one pipeline run
type RunStats struct {
	Items               int `json:"items"`
	Duplicates          int `json:"duplicates"`
	ExtractionMisses    int `json:"extraction_misses"`
	ResolutionMisses    int `json:"resolution_misses"`
	SynthesisMisses     int `json:"synthesis_misses"`
	Panics              int `json:"panics"`
	Cancelled           int `json:"cancelled"`   // Never processed because the run was cancelled
	Assumptions         int `json:"assumptions"` // Survivors after merging
	Superseded          int `json:"superseded"`
	Saved               int `json:"saved"`
	Kept                int `json:"kept"` // Stored assumption outranked the new one
	PersistenceFailures int `json:"persistence_failures"`
	TriggerFailures     int `json:"trigger_failures"`
}

// Run summarizes one completed pipeline run
type Run struct {
	ID       string   `json:"run_id"`
	Started  string   `json:"started"`
	Finished string   `json:"finished"`
	Stats    RunStats `json:"stats"`
}
