package mirror

// Status is the outcome of syncing one repository.
type Status string

const (
	StatusCloned       Status = "cloned"
	StatusUpdated      Status = "updated"
	StatusCloneFailed  Status = "clone_failed"
	StatusUpdateFailed Status = "update_failed"
	StatusError        Status = "error"
)

// IsFailure reports whether s is one of the failure statuses.
func (s Status) IsFailure() bool {
	switch s {
	case StatusCloneFailed, StatusUpdateFailed, StatusError:
		return true
	default:
		return false
	}
}

// Result is produced exactly once per repository by the engine.
// Error is set iff Status.IsFailure().
type Result struct {
	FullName  string
	LocalPath string
	Status    Status
	Error     string
}
