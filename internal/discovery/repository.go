package discovery

import "strings"

// Repository describes one remote repository to mirror. FullName (owner/name)
// is the identity; values are never mutated after enumeration.
type Repository struct {
	FullName  string
	Name      string
	SSHURL    string
	Owner     string
	IsPrivate bool
}

// Inventory is the outcome of a successful enumeration.
type Inventory struct {
	// Viewer is the login of the authenticated user.
	Viewer string

	// Organizations lists the organization logins that were walked.
	Organizations []string

	// Repositories holds one entry per distinct FullName, sorted by FullName.
	Repositories []Repository
}

type repoNode struct {
	Name          string `json:"name"`
	NameWithOwner string `json:"nameWithOwner"`
	SSHURL        string `json:"sshUrl"`
	IsPrivate     bool   `json:"isPrivate"`
	Owner         struct {
		Login string `json:"login"`
	} `json:"owner"`
}

func (n repoNode) toRepository() Repository {
	r := Repository{
		FullName:  n.NameWithOwner,
		Name:      n.Name,
		SSHURL:    n.SSHURL,
		Owner:     n.Owner.Login,
		IsPrivate: n.IsPrivate,
	}
	if r.Owner == "" {
		if owner, _, ok := strings.Cut(r.FullName, "/"); ok {
			r.Owner = owner
		}
	}
	return r
}
