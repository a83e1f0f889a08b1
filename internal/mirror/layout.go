package mirror

import (
	"path/filepath"
	"strings"

	"ghmirror/internal/discovery"

	"github.com/cockroachdb/errors"
)

// Layout decides where a repository lives under the target directory.
type Layout string

const (
	// LayoutFlat places every repository at <target>/<name>. Two owners with
	// the same repository name map to the same directory.
	LayoutFlat Layout = "flat"

	// LayoutOwner places every repository at <target>/<owner>/<name>.
	LayoutOwner Layout = "owner"
)

func ParseLayout(raw string) (Layout, error) {
	switch Layout(strings.ToLower(strings.TrimSpace(raw))) {
	case "", LayoutFlat:
		return LayoutFlat, nil
	case LayoutOwner:
		return LayoutOwner, nil
	default:
		return "", errors.Newf("unsupported layout %q (must be one of: flat, owner)", raw)
	}
}

func (l Layout) Path(root string, r discovery.Repository) string {
	if l == LayoutOwner && r.Owner != "" {
		return filepath.Join(root, r.Owner, r.Name)
	}
	return filepath.Join(root, r.Name)
}

// Collisions maps every local path claimed by more than one repository to the
// claiming full names, in input order.
func Collisions(l Layout, root string, repos []discovery.Repository) map[string][]string {
	claims := make(map[string][]string)
	for _, r := range repos {
		p := l.Path(root, r)
		claims[p] = append(claims[p], r.FullName)
	}
	for p, names := range claims {
		if len(names) < 2 {
			delete(claims, p)
		}
	}
	return claims
}
