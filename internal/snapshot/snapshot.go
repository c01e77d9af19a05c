// Package snapshot models a fully-fetched capture of repository metadata.
package snapshot

// FileEntry is a single file in the repository tree.
type FileEntry struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// Issue is an open issue at fetch time.
type Issue struct {
	Number   int      `json:"number"`
	Title    string   `json:"title"`
	Body     string   `json:"body"`
	Comments int      `json:"comments"`
	Labels   []string `json:"labels"`
}

// PullRequest is an open pull request at fetch time.
type PullRequest struct {
	Number    int    `json:"number"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Comments  int    `json:"comments"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
}

// Snapshot is an immutable capture of repository metadata at one point in
// time. It is complete or it does not exist: the fetch client never hands out
// a partially-populated snapshot. The generator only reads it.
type Snapshot struct {
	Owner    string           `json:"owner"`
	Name     string           `json:"name"`
	README   string           `json:"readme"`
	Files    []FileEntry      `json:"files"`
	Langs    map[string]int64 `json:"langs"` // language -> bytes
	Stars    int              `json:"stars"`
	Forks    int              `json:"forks"`
	Watchers int              `json:"watchers"`
	Issues   []Issue          `json:"issues"`
	Pulls    []PullRequest    `json:"pulls"`
}

// Identity returns the stable "owner/name" identity string. All seed
// derivation and persistence is keyed by this value.
func (s *Snapshot) Identity() string {
	return s.Owner + "/" + s.Name
}
