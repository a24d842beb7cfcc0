package gitlab

import (
	"fmt"

	"github.com/xanzy/go-gitlab"
)

// CommitSummary is the trimmed commit shape handed to the model. Full commit
// objects carry far more than a review needs.
type CommitSummary struct {
	ID         string `json:"id"`
	ShortID    string `json:"short_id"`
	Title      string `json:"title"`
	Message    string `json:"message"`
	AuthorName string `json:"author_name"`
	CreatedAt  string `json:"created_at"`
}

// BranchInfo describes a branch and its head commit.
type BranchInfo struct {
	Name   string        `json:"name"`
	Commit CommitSummary `json:"commit"`
}

// ProjectInfo returns the project's attributes
func (c *Client) ProjectInfo(projectID int) (*gitlab.Project, error) {
	project, _, err := c.Projects.GetProject(projectID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get project %d: %w", projectID, err)
	}
	return project, nil
}

// BranchNames returns the names of all branches in the project
func (c *Client) BranchNames(projectID int) ([]string, error) {
	names := []string{}
	opts := &gitlab.ListBranchesOptions{
		ListOptions: gitlab.ListOptions{PerPage: 100},
	}
	for {
		branches, resp, err := c.Branches.ListBranches(projectID, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list branches: %w", err)
		}
		for _, b := range branches {
			names = append(names, b.Name)
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return names, nil
}

// Tree returns the repository file tree at the given ref. An empty ref means
// the default branch.
func (c *Client) Tree(projectID int, ref string) ([]*gitlab.TreeNode, error) {
	nodes := []*gitlab.TreeNode{}
	opts := &gitlab.ListTreeOptions{
		Recursive:   gitlab.Bool(true),
		ListOptions: gitlab.ListOptions{PerPage: 100},
	}
	if ref != "" {
		opts.Ref = gitlab.String(ref)
	}
	for {
		page, resp, err := c.Repositories.ListTree(projectID, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list tree: %w", err)
		}
		nodes = append(nodes, page...)
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return nodes, nil
}

// FileContent returns the raw content of a file at the given ref
func (c *Client) FileContent(projectID int, ref, filePath string) (string, error) {
	raw, _, err := c.RepositoryFiles.GetRawFile(projectID, filePath, &gitlab.GetRawFileOptions{
		Ref: gitlab.String(ref),
	})
	if err != nil {
		return "", fmt.Errorf("failed to get file %s: %w", filePath, err)
	}
	return string(raw), nil
}

// Commits returns commit summaries for a ref, limited to perPage entries
func (c *Client) Commits(projectID int, refName string, perPage int) ([]CommitSummary, error) {
	if perPage <= 0 {
		perPage = 20
	}
	opts := &gitlab.ListCommitsOptions{
		ListOptions: gitlab.ListOptions{PerPage: perPage},
	}
	if refName != "" {
		opts.RefName = gitlab.String(refName)
	}
	commits, _, err := c.Client.Commits.ListCommits(projectID, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list commits: %w", err)
	}
	summaries := make([]CommitSummary, 0, len(commits))
	for _, commit := range commits {
		summaries = append(summaries, summarizeCommit(commit))
	}
	return summaries, nil
}

// CommitDetails returns the full detail of one commit, stats included
func (c *Client) CommitDetails(projectID int, sha string) (*gitlab.Commit, error) {
	commit, _, err := c.Client.Commits.GetCommit(projectID, sha)
	if err != nil {
		return nil, fmt.Errorf("failed to get commit %s: %w", sha, err)
	}
	return commit, nil
}

// Compare returns the diff between two commits
func (c *Client) Compare(projectID int, beforeSHA, afterSHA string) (*gitlab.Compare, error) {
	compare, _, err := c.Repositories.Compare(projectID, &gitlab.CompareOptions{
		From: gitlab.String(beforeSHA),
		To:   gitlab.String(afterSHA),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to compare %s..%s: %w", beforeSHA, afterSHA, err)
	}
	return compare, nil
}

// Branch returns a branch and its head commit
func (c *Client) Branch(projectID int, branchName string) (*BranchInfo, error) {
	branch, _, err := c.Branches.GetBranch(projectID, branchName)
	if err != nil {
		return nil, fmt.Errorf("failed to get branch %s: %w", branchName, err)
	}
	info := &BranchInfo{Name: branch.Name}
	if branch.Commit != nil {
		info.Commit = summarizeCommit(branch.Commit)
	}
	return info, nil
}

// MergeRequestChanges returns the merge request with its change list
func (c *Client) MergeRequestChanges(projectID, mrIID int) (*gitlab.MergeRequest, error) {
	mr, _, err := c.MergeRequests.GetMergeRequestChanges(projectID, mrIID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get merge request %d changes: %w", mrIID, err)
	}
	return mr, nil
}

func summarizeCommit(commit *gitlab.Commit) CommitSummary {
	s := CommitSummary{
		ID:         commit.ID,
		ShortID:    commit.ShortID,
		Title:      commit.Title,
		Message:    commit.Message,
		AuthorName: commit.AuthorName,
	}
	if commit.CreatedAt != nil {
		s.CreatedAt = commit.CreatedAt.String()
	}
	return s
}
