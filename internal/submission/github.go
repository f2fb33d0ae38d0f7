// Package submission fetches the (buggy, reference) code pair for one
// exercise from a GitHub-Classroom-style submission, so the rest of
// this repository never has to talk to GitHub directly.
//
// It fetches an arbitrary exercise file at a commit, since a classroom
// assignment repo can contain any number of exercise files rather than
// one well-known data file.
package submission

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/go-github/v63/github"
	"github.com/natefinch/atomic"
)

// Client fetches submission file pairs from a single GitHub classroom
// assignment repository. The zero value is unusable; construct with
// NewClient.
type Client struct {
	Owner string // GitHub account or org that owns the assignment repo
	Repo  string // assignment repository name

	client *github.Client
}

// NewClient returns a Client for owner/repo, authenticated with the
// GITHUB_TOKEN environment variable if set.
func NewClient(owner, repo string) *Client {
	return &Client{Owner: owner, Repo: repo}
}

func (c *Client) apiClient() *github.Client {
	if c.client == nil {
		c.client = github.NewClient(nil)
		if token := os.Getenv("GITHUB_TOKEN"); token != "" {
			c.client = c.client.WithAuthToken(token)
		}
	}
	return c.client
}

// Pair is one student's buggy submission and the instructor's
// reference solution for the same exercise file, as of one pull
// request.
type Pair struct {
	Buggy     []byte
	Reference []byte
}

// FetchPair fetches the exercise file at exercisePath as it stood
// before prNum was merged (Buggy) and after (Reference).
func (c *Client) FetchPair(ctx context.Context, prNum int, exercisePath string) (Pair, error) {
	if buggy, reference, ok := getCachedPair(c.Owner, c.Repo, exercisePath, prNum); ok {
		return Pair{Buggy: buggy, Reference: reference}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pr, _, err := c.apiClient().PullRequests.Get(ctx, c.Owner, c.Repo, prNum)
	if err != nil {
		return Pair{}, fmt.Errorf("fetching PR %d: %w", prNum, err)
	}

	mergeCommit := pr.GetMergeCommitSHA()
	if mergeCommit == "" {
		return Pair{}, fmt.Errorf("no merge commit available for PR %d", prNum)
	}
	commitInfo, _, err := c.apiClient().Git.GetCommit(ctx, c.Owner, c.Repo, mergeCommit)
	if err != nil {
		return Pair{}, fmt.Errorf("getting info for merge SHA %q: %w", mergeCommit, err)
	}

	var beforeMergeCommit string
	switch {
	case pr.GetMerged() && len(commitInfo.Parents) == 1:
		// Squash-and-merge: the pre-PR commit is simply the merge
		// commit's parent.
		beforeMergeCommit = commitInfo.Parents[0].GetSHA()
	case !pr.GetMerged() && !pr.GetMergeable():
		return Pair{}, fmt.Errorf("cannot diff PR %d, needs rebase", prNum)
	default:
		// Open PR: GetMergeCommitSHA is a "trial merge" commit with two
		// parents, the PR head and the target branch without the PR.
		if numParents := len(commitInfo.Parents); numParents != 2 {
			return Pair{}, fmt.Errorf("unexpected parent count %d for trial merge commit on PR %d, expected 2", numParents, prNum)
		}
		prHeadCommit := pr.GetHead().GetSHA()
		if prHeadCommit == "" {
			return Pair{}, fmt.Errorf("no commit SHA available for head of PR %d", prNum)
		}
		if commitInfo.Parents[0].GetSHA() == prHeadCommit {
			beforeMergeCommit = commitInfo.Parents[1].GetSHA()
		} else {
			beforeMergeCommit = commitInfo.Parents[0].GetSHA()
		}
	}

	buggy, err := c.FileAtHash(ctx, beforeMergeCommit, exercisePath)
	if err != nil {
		return Pair{}, err
	}
	reference, err := c.FileAtHash(ctx, mergeCommit, exercisePath)
	if err != nil {
		return Pair{}, err
	}
	if pr.GetMerged() {
		// Only cache merged PRs; an in-progress PR's diff can still change.
		putCachedPair(c.Owner, c.Repo, exercisePath, prNum, buggy, reference)
	}
	return Pair{Buggy: buggy, Reference: reference}, nil
}

// FileAtHash returns the contents of path at the given git commit hash.
func (c *Client) FileAtHash(ctx context.Context, hash, path string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := &github.RepositoryContentGetOptions{Ref: hash}
	content, _, _, err := c.apiClient().Repositories.GetContents(ctx, c.Owner, c.Repo, path, opts)
	if err != nil {
		return nil, fmt.Errorf("getting %q at commit %q: %w", path, hash, err)
	}
	text, err := content.GetContent()
	if err != nil {
		return nil, err
	}
	return []byte(text), nil
}

type cacheEntry struct {
	Buggy, Reference []byte
}

func cachePath(owner, repo, exercisePath string, prNum int) (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("%s-%s-%s-%d.json.gz", owner, repo, filepath.Base(exercisePath), prNum)
	return filepath.Join(cacheDir, "patchtrace/submissions", key), nil
}

func getCachedPair(owner, repo, exercisePath string, prNum int) (buggy, reference []byte, ok bool) {
	path, err := cachePath(owner, repo, exercisePath, prNum)
	if err != nil {
		return nil, nil, false
	}
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, false
	}
	gr, err := gzip.NewReader(bytes.NewReader(bs))
	if err != nil {
		return nil, nil, false
	}
	var ent cacheEntry
	if err := json.NewDecoder(gr).Decode(&ent); err != nil {
		return nil, nil, false
	}
	return ent.Buggy, ent.Reference, true
}

func putCachedPair(owner, repo, exercisePath string, prNum int, buggy, reference []byte) {
	path, err := cachePath(owner, repo, exercisePath, prNum)
	if err != nil {
		return
	}
	if _, err := os.Stat(path); err == nil {
		return // already cached
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return
	}

	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	if err := json.NewEncoder(gw).Encode(cacheEntry{Buggy: buggy, Reference: reference}); err != nil {
		return
	}
	if err := gw.Close(); err != nil {
		return
	}
	atomic.WriteFile(path, &buf)
}
