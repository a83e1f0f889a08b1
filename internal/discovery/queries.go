package discovery

const repoFields = `nodes {
        name
        nameWithOwner
        sshUrl
        isPrivate
        owner { login }
      }
      pageInfo { hasNextPage endCursor }`

const viewerReposQuery = `query($first: Int!, $cursor: String) {
  viewer {
    login
    repositories(first: $first, after: $cursor, affiliations: [OWNER, COLLABORATOR, ORGANIZATION_MEMBER]) {
      ` + repoFields + `
    }
  }
}`

// Only the first page of organizations is read; see Enumerator.Enumerate.
const viewerOrgsQuery = `query($first: Int!) {
  viewer {
    login
    organizations(first: $first) {
      nodes { login }
    }
  }
}`

const orgReposQuery = `query($login: String!, $first: Int!, $cursor: String) {
  organization(login: $login) {
    login
    repositories(first: $first, after: $cursor) {
      ` + repoFields + `
    }
  }
}`

type pageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

type repoConnection struct {
	Nodes    []repoNode `json:"nodes"`
	PageInfo pageInfo   `json:"pageInfo"`
}

func (c repoConnection) page() Page[repoNode] {
	return Page[repoNode]{
		Nodes:       c.Nodes,
		HasNextPage: c.PageInfo.HasNextPage,
		EndCursor:   c.PageInfo.EndCursor,
	}
}

type viewerReposData struct {
	Viewer struct {
		Login        string         `json:"login"`
		Repositories repoConnection `json:"repositories"`
	} `json:"viewer"`
}

type viewerOrgsData struct {
	Viewer struct {
		Login         string `json:"login"`
		Organizations struct {
			Nodes []struct {
				Login string `json:"login"`
			} `json:"nodes"`
		} `json:"organizations"`
	} `json:"viewer"`
}

type orgReposData struct {
	Organization *struct {
		Login        string         `json:"login"`
		Repositories repoConnection `json:"repositories"`
	} `json:"organization"`
}
