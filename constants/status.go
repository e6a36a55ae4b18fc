package constants

// JobStatus is the canonical status for rows in extraction_jobs.
type JobStatus string

// Stable values (store these exact strings in the DB).
const (
	JobStatusQueued    JobStatus = "QUEUED"    // accepted, not started
	JobStatusRunning   JobStatus = "RUNNING"   // in progress
	JobStatusExtracted JobStatus = "EXTRACTED" // stage 1 completed (fields extracted)
	JobStatusValidated JobStatus = "VALIDATED" // stage 2 completed (extraction scored)
	JobStatusFailed    JobStatus = "FAILED"    // terminal failure
)
