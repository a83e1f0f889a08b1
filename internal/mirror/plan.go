package mirror

import "ghmirror/internal/discovery"

// PlanAction is what SyncAll would do with a repository.
type PlanAction string

const (
	ActionClone  PlanAction = "clone"
	ActionUpdate PlanAction = "update"
	ActionSkip   PlanAction = "skip"
)

// Planned describes the action SyncAll would take for one repository.
type Planned struct {
	Repository discovery.Repository
	LocalPath  string
	Action     PlanAction

	// Conflict explains an ActionSkip.
	Conflict string
}

// Plan reports, in input order, what SyncAll would do for each repository
// without running git or touching the filesystem.
func (e *Engine) Plan(repos []discovery.Repository) []Planned {
	plan := make([]Planned, 0, len(repos))
	claimed := make(map[string]string, len(repos))
	for _, repo := range repos {
		path := e.opts.Layout.Path(e.opts.TargetDir, repo)
		p := Planned{Repository: repo, LocalPath: path}
		switch owner, ok := claimed[path]; {
		case ok:
			p.Action, p.Conflict = ActionSkip, collisionMessage(path, owner)
		case isCheckout(path):
			p.Action = ActionUpdate
		default:
			p.Action = ActionClone
		}
		if _, ok := claimed[path]; !ok {
			claimed[path] = repo.FullName
		}
		plan = append(plan, p)
	}
	return plan
}
