package workpaper

// JobStatus represents the lifecycle status of a WorkpaperJob or ModuleInstance
type JobStatus string

const (
	JobStatusNotStarted          JobStatus = "not_started"
	JobStatusInProgress          JobStatus = "in_progress"
	JobStatusAwaitingClient      JobStatus = "awaiting_client"
	JobStatusReadyForReview      JobStatus = "ready_for_review"
	JobStatusReadyForFinalReview JobStatus = "ready_for_final_review"
	JobStatusCompleted           JobStatus = "completed"
	JobStatusFrozen              JobStatus = "frozen"
	JobStatusNA                  JobStatus = "na" // module does not apply to this client
)

// statusPriority orders statuses from least to most complete. A job's derived
// status is the least complete status among its applicable modules.
var statusPriority = map[JobStatus]int{
	JobStatusNotStarted:          1,
	JobStatusInProgress:          2,
	JobStatusAwaitingClient:      3,
	JobStatusReadyForReview:      4,
	JobStatusReadyForFinalReview: 5,
	JobStatusCompleted:           6,
	JobStatusFrozen:              7,
	JobStatusNA:                  100, // never drives the derived status
}

// IsValid checks if the status is a valid JobStatus
func (s JobStatus) IsValid() bool {
	_, ok := statusPriority[s]
	return ok
}

// String returns the string representation of JobStatus
func (s JobStatus) String() string {
	return string(s)
}

// IsFrozen returns true if the status is frozen
func (s JobStatus) IsFrozen() bool {
	return s == JobStatusFrozen
}

// CanFreeze returns true if an entity in this status may be frozen
func (s JobStatus) CanFreeze() bool {
	return s.IsValid() && s != JobStatusFrozen && s != JobStatusNA
}

// DeriveJobStatus derives a job's status from its modules: the applicable
// module with the least complete status wins. NA modules are ignored; a job
// with no applicable modules is not_started.
func DeriveJobStatus(modules []ModuleInstance) JobStatus {
	minPriority := 0
	derived := JobStatusNotStarted
	for i := range modules {
		st := modules[i].Status
		if st == JobStatusNA {
			continue
		}
		p, ok := statusPriority[st]
		if !ok {
			p = statusPriority[JobStatusNotStarted]
			st = JobStatusNotStarted
		}
		if minPriority == 0 || p < minPriority {
			minPriority = p
			derived = st
		}
	}
	return derived
}
