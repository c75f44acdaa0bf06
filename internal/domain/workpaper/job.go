package workpaper

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/fdccore/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// MinReopenReasonLen is the minimum length of the mandatory reason when
// reopening a frozen job or module.
const MinReopenReasonLen = 10

// taxYearPattern matches Australian tax year labels like "2024-25"
var taxYearPattern = regexp.MustCompile(`^(\d{4})-(\d{2})$`)

// WorkpaperJob represents one tax period for one client. It owns the job's
// module instances and derived tasks.
type WorkpaperJob struct {
	shared.BaseAggregateRoot
	ClientID uuid.UUID  `json:"client_id"`
	Year     string     `json:"year"`                // e.g. "2024-25"
	Status   JobStatus  `json:"status"`
	Notes    string     `json:"notes,omitempty"`
	FrozenAt *time.Time `json:"frozen_at,omitempty"`
}

// NewWorkpaperJob creates a new workpaper job for a client and tax year
func NewWorkpaperJob(clientID uuid.UUID, year, notes string, actor shared.Actor) (*WorkpaperJob, error) {
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_FAILED", "Client ID cannot be empty")
	}
	if _, _, err := ParseTaxYear(year); err != nil {
		return nil, err
	}

	job := &WorkpaperJob{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ClientID:          clientID,
		Year:              year,
		Status:            JobStatusNotStarted,
		Notes:             notes,
	}
	job.AddDomainEvent(NewJobCreatedEvent(job, actor))
	return job, nil
}

// IsFrozen returns true if the job is frozen
func (j *WorkpaperJob) IsFrozen() bool {
	return j.Status.IsFrozen()
}

// UpdateNotes replaces the job notes. Rejected while frozen.
func (j *WorkpaperJob) UpdateNotes(notes string) error {
	if j.IsFrozen() {
		return shared.NewInvalidStateError("Job", j.ID, j.Status.String())
	}
	j.Notes = notes
	j.Touch()
	return nil
}

// SetStatus moves the job to an admin-selected workflow status. Freezing and
// reopening go through Freeze/Reopen, not here.
func (j *WorkpaperJob) SetStatus(status JobStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError("VALIDATION_FAILED", fmt.Sprintf("Unknown job status: %s", status))
	}
	if status == JobStatusFrozen {
		return shared.NewDomainError("INVALID_STATE", "Jobs are frozen through the freeze operation, not a status update")
	}
	if j.IsFrozen() {
		return shared.NewInvalidStateError("Job", j.ID, j.Status.String())
	}
	j.Status = status
	j.Touch()
	return nil
}

// ApplyDerivedStatus recomputes the job status from its modules. Frozen jobs
// keep their status until explicitly reopened.
func (j *WorkpaperJob) ApplyDerivedStatus(modules []ModuleInstance) {
	if j.IsFrozen() {
		return
	}
	derived := DeriveJobStatus(modules)
	if derived != j.Status && derived != JobStatusFrozen {
		j.Status = derived
		j.Touch()
	}
}

// Freeze marks the job frozen. The snapshot is assembled and persisted by the
// freeze service in the same storage transaction.
func (j *WorkpaperJob) Freeze(actor shared.Actor, snapshotID uuid.UUID, reason string) error {
	if !j.Status.CanFreeze() {
		return shared.NewInvalidStateError("Job", j.ID, j.Status.String())
	}
	now := time.Now()
	j.Status = JobStatusFrozen
	j.FrozenAt = &now
	j.UpdatedAt = now
	j.AddDomainEvent(NewJobFrozenEvent(j, actor, snapshotID, reason))
	return nil
}

// Reopen returns a frozen job to in_progress. Admin-only at the caller; a
// substantive reason is mandatory. Existing snapshots are never touched.
func (j *WorkpaperJob) Reopen(actor shared.Actor, reason string) error {
	if !j.IsFrozen() {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Job %s is not frozen (status %q)", j.ID, j.Status))
	}
	if len(reason) < MinReopenReasonLen {
		return shared.NewDomainError("VALIDATION_FAILED",
			fmt.Sprintf("Reopen reason must be at least %d characters", MinReopenReasonLen))
	}
	now := time.Now()
	j.Status = JobStatusInProgress
	j.FrozenAt = nil
	j.UpdatedAt = now
	j.AddDomainEvent(NewJobReopenedEvent(j, actor, reason))
	return nil
}

// ParseTaxYear parses a tax year label like "2024-25" into its period
// boundaries: 1 July of the first year to 30 June of the following year.
func ParseTaxYear(year string) (time.Time, time.Time, error) {
	m := taxYearPattern.FindStringSubmatch(year)
	if m == nil {
		return time.Time{}, time.Time{}, shared.NewDomainError("VALIDATION_FAILED",
			fmt.Sprintf("Tax year must look like 2024-25, got %q", year))
	}
	first, _ := strconv.Atoi(m[1])
	second, _ := strconv.Atoi(m[2])
	if (first+1)%100 != second {
		return time.Time{}, time.Time{}, shared.NewDomainError("VALIDATION_FAILED",
			fmt.Sprintf("Tax year %q is not a consecutive year pair", year))
	}
	start := time.Date(first, time.July, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(first+1, time.June, 30, 0, 0, 0, 0, time.UTC)
	return start, end, nil
}
