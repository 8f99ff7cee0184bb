package build

import (
	git "github.com/go-git/go-git/v5"
)

// VCSInfo is the git state of the package being built, for build logs.
type VCSInfo struct {
	Branch string
	SHA    string
}

// DetectVCS opens the git repository containing dir, if any.
// Returns nil when dir is not inside a repository or HEAD is unborn.
func DetectVCS(dir string) *VCSInfo {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil
	}
	head, err := repo.Head()
	if err != nil {
		return nil
	}

	info := &VCSInfo{SHA: head.Hash().String()}
	if len(info.SHA) > 7 {
		info.SHA = info.SHA[:7]
	}
	if head.Name().IsBranch() {
		info.Branch = head.Name().Short()
	}
	return info
}
