package runtimecompare

import "fmt"

// Less implements a total order over repair quality: c is "less than"
// other (a worse repair) iff, in priority order, c's run didn't
// complete when other's did; c didn't pass the test when other did;
// or neither passed and c's deviation point is earlier than other's.
// Both RuntimeComparisons are assumed to share the same Dest tree and
// TestExpr.
func (c *RuntimeComparison) Less(other *RuntimeComparison) bool {
	if other.RunCompleted && !c.RunCompleted {
		return true
	}
	if c.RunCompleted && !other.RunCompleted {
		return false
	}
	if other.TestPassed && !c.TestPassed {
		return true
	}
	if c.TestPassed && !other.TestPassed {
		return false
	}
	if c.TestPassed && other.TestPassed {
		return false
	}
	return c.LastMatchingValDest < other.LastMatchingValDest
}

// Equal reports whether c and other are equally good repairs: either
// both pass the test, or all three priority keys from Less tie.
func (c *RuntimeComparison) Equal(other *RuntimeComparison) bool {
	if c.TestPassed && other.TestPassed {
		return true
	}
	return c.RunCompleted == other.RunCompleted &&
		c.TestPassed == other.TestPassed &&
		c.LastMatchingValDest == other.LastMatchingValDest
}

// DescribeImprovement describes, in prose, how c is an improvement
// over other — assuming the caller has already established that it
// is. Returns "" if neither of the three improvement reasons apply
// (which should not happen for a genuine Less relationship, but is
// not itself checked here).
func (c *RuntimeComparison) DescribeImprovement(other *RuntimeComparison, selfName, otherName string) string {
	if c.RunCompleted && !other.RunCompleted {
		return fmt.Sprintf("The run completed in %s, but did not complete in %s (%s).", selfName, otherName, other.RunStatus)
	}
	if c.TestPassed && !other.TestPassed {
		return fmt.Sprintf("The test passed in %s, but not in %s.", selfName, otherName)
	}
	if c.LastMatchingValDest > other.LastMatchingValDest {
		node := c.LastMatchingNode()
		return fmt.Sprintf(
			"The following expression evaluated correctly in %s, but %s deviated from the expected evaluation path before this expression:\n %s",
			selfName, otherName, node,
		)
	}
	return ""
}

// DescribeImprovementOrRegression describes whether newVersion is
// better, worse or the same as c.
func (c *RuntimeComparison) DescribeImprovementOrRegression(newVersion *RuntimeComparison) string {
	switch {
	case c.Equal(newVersion):
		return "The new version of the code performed the same as the old version."
	case c.Less(newVersion):
		return "The new version of the code performed better than the old version: \n" +
			newVersion.DescribeImprovement(c, "the new version", "the old version")
	default:
		return "The new version of the code performed worse than the old version: \n" +
			c.DescribeImprovement(newVersion, "the old version", "the new version")
	}
}

// Effect is the aggregate verdict produced by comparing two batteries
// of RuntimeComparisons run against the same battery of unit tests.
type Effect int

const (
	Worse Effect = iota
	Same
	Mixed
	Better
)

func (e Effect) String() string {
	switch e {
	case Worse:
		return "worse"
	case Same:
		return "the same"
	case Mixed:
		return "mixed"
	case Better:
		return "better"
	default:
		return "unknown"
	}
}

// CompareComparisons aggregates a battery of old-vs-new
// RuntimeComparison pairs (one per unit test, same Dest and same test
// in each pair) into a single verdict: BETTER (no regressions, at
// least one improvement), WORSE (the mirror), MIXED (both occur), or
// SAME (neither). orig and newComps must have equal length and be
// paired by index.
func CompareComparisons(orig, newComps []*RuntimeComparison) Effect {
	var better, worse int
	n := len(orig)
	if len(newComps) < n {
		n = len(newComps)
	}
	for i := 0; i < n; i++ {
		o, nw := orig[i], newComps[i]
		switch {
		case o.Less(nw):
			better++
		case nw.Less(o):
			worse++
		}
	}
	switch {
	case better+worse == 0:
		return Same
	case worse == 0:
		return Better
	case better == 0:
		return Worse
	default:
		return Mixed
	}
}
