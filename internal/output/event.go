package output

import (
	"ghmirror/internal/discovery"
	"ghmirror/internal/mirror"
)

// Event types, in the order a run emits them.
const (
	EventRunStarted  = "run.started"
	EventRunWarning  = "run.warning"
	EventRepoPlanned = "repo.planned"
	EventRepoSynced  = "repo.synced"
	EventRunFinished = "run.finished"
)

// Event is a lifecycle record. Sinks receive every event; NDJSON sinks write
// one object per line, JSON sinks aggregate repo.synced and repo.planned
// records into a single array.
type Event struct {
	Type string `json:"type"`

	// run.started
	Viewer        string   `json:"viewer,omitempty"`
	Organizations []string `json:"organizations,omitempty"`
	Target        string   `json:"target,omitempty"`
	Repos         *int     `json:"repos,omitempty"`

	// run.warning
	Message string `json:"message,omitempty"`

	// repo.planned, repo.synced
	Record *RepoRecord `json:"result,omitempty"`

	// run.finished
	Summary *SummaryRecord `json:"summary,omitempty"`
}

// RepoRecord is the serialized form of one repository outcome or plan entry.
type RepoRecord struct {
	Repo    string `json:"repo"`
	Path    string `json:"path"`
	Status  string `json:"status"`
	Private bool   `json:"private,omitempty"`
	Error   string `json:"error,omitempty"`
}

type SummaryRecord struct {
	Target   string       `json:"target"`
	Total    int          `json:"total"`
	Cloned   int          `json:"cloned"`
	Updated  int          `json:"updated"`
	Failed   int          `json:"failed"`
	Failures []RepoRecord `json:"failures,omitempty"`
}

func RunStarted(inv *discovery.Inventory, target string) Event {
	n := len(inv.Repositories)
	return Event{
		Type:          EventRunStarted,
		Viewer:        inv.Viewer,
		Organizations: inv.Organizations,
		Target:        target,
		Repos:         &n,
	}
}

func Warning(msg string) Event {
	return Event{Type: EventRunWarning, Message: msg}
}

func RepoPlanned(p mirror.Planned) Event {
	return Event{Type: EventRepoPlanned, Record: &RepoRecord{
		Repo:    p.Repository.FullName,
		Path:    p.LocalPath,
		Status:  string(p.Action),
		Private: p.Repository.IsPrivate,
		Error:   p.Conflict,
	}}
}

func RepoSynced(r mirror.Result) Event {
	rec := recordFromResult(r)
	return Event{Type: EventRepoSynced, Record: &rec}
}

func RunFinished(s mirror.Summary, target string) Event {
	rec := &SummaryRecord{
		Target:  target,
		Total:   s.Total,
		Cloned:  s.Cloned,
		Updated: s.Updated,
		Failed:  s.Failed,
	}
	for _, f := range s.Failures {
		rec.Failures = append(rec.Failures, recordFromResult(f))
	}
	return Event{Type: EventRunFinished, Summary: rec}
}

func recordFromResult(r mirror.Result) RepoRecord {
	return RepoRecord{
		Repo:   r.FullName,
		Path:   r.LocalPath,
		Status: string(r.Status),
		Error:  r.Error,
	}
}
