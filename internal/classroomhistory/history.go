// Package classroomhistory finds, in a local clone of a classroom's
// git repository, the commits that closed a given exercise issue
// number — pairing a student's buggy submission commit with the
// instructor's reference-solution commit without calling the GitHub
// API.
//
// It greps `git log` for a conventional commit-message marker and
// shells out to the local `git` binary rather than hitting the
// network.
package classroomhistory

import (
	"bytes"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// ExerciseInfo records which commit closed a given exercise issue.
type ExerciseInfo struct {
	IssueNum int
	// CommitHash is the commit in which the reference solution for
	// this exercise landed.
	CommitHash string
	// ParentHash is the commit immediately before the reference
	// solution was added — typically the student's last buggy attempt
	// or the assignment's initial scaffold.
	ParentHash string
}

// History is exercise-closing commit metadata extracted from a local
// classroom repository clone.
type History struct {
	GitPath   string // top level of the local git clone
	Exercises map[int]ExerciseInfo
}

// Matches "Closes #123", "Fixes #123", "Resolves #123" (any case, any
// of the three verbs GitHub recognizes for auto-closing issues) at the
// end of a commit subject line. A merge commit's default subject
// ("Merge pull request #N ...") does not match.
var closesRe = regexp.MustCompile(`(?i)(?:clos|fix|resolv)(?:e|es|ed)?\s+#(\d+)$`)

// GetExerciseHistory extracts exercise-closing commit metadata from
// the git repository at gitPath.
func GetExerciseHistory(gitPath string) (*History, error) {
	toplevel, err := gitToplevel(gitPath)
	if err != nil {
		return nil, err
	}

	log, err := gitStdout(toplevel, "log", "--perl-regexp",
		`--grep=(?i)(clos|fix|resolv)(e|es|ed)?\s+#\d+$`,
		"--pretty=%H@%P@%s", "HEAD")

	ret := &History{GitPath: toplevel, Exercises: map[int]ExerciseInfo{}}
	for _, line := range strings.Split(string(log), "\n") {
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, "@", 3)
		if len(fields) != 3 {
			return nil, fmt.Errorf("unexpected git log line format %q", line)
		}
		commit, parentsStr, subject := fields[0], fields[1], fields[2]
		parents := strings.Split(parentsStr, " ")

		ms := closesRe.FindStringSubmatch(subject)
		if len(ms) != 2 {
			continue // grep false positive; marker wasn't at line end
		}
		issueNum, err := strconv.Atoi(ms[1])
		if err != nil {
			return nil, fmt.Errorf("unexpected non-numeric issue reference %q", ms[1])
		}

		ret.Exercises[issueNum] = ExerciseInfo{
			IssueNum:   issueNum,
			CommitHash: commit,
			ParentHash: parents[0],
		}
	}

	return ret, err
}

// FileAtCommit returns the contents of path at the given commit hash
// in the git repository at gitPath.
func FileAtCommit(gitPath, hash, path string) ([]byte, error) {
	toplevel, err := gitToplevel(gitPath)
	if err != nil {
		return nil, err
	}
	return gitStdout(toplevel, "show", fmt.Sprintf("%s:%s", hash, path))
}

func gitToplevel(path string) (string, error) {
	bs, err := gitStdout(path, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("finding top level of git repo %q: %w", path, err)
	}
	return string(bs), nil
}

func gitStdout(repoPath string, args ...string) ([]byte, error) {
	args = append([]string{"-C", repoPath}, args...)
	c := exec.Command("git", args...)
	var stderr bytes.Buffer
	c.Stderr = &stderr
	bs, err := c.Output()
	if err != nil {
		cmdline := append([]string{"git"}, args...)
		var stderrStr string
		if stderr.Len() != 0 {
			stderrStr = "stderr:\n" + stderr.String()
		}
		return nil, fmt.Errorf("running %q: %w. %s", strings.Join(cmdline, " "), err, stderrStr)
	}
	return bytes.TrimSpace(bs), nil
}
