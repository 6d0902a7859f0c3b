package cluster

import (
	"fmt"

	"github.com/typeforge/tfc/internal/jsast"
)

// Cluster groups residual expressions that are structurally isomorphic up
// to their literal values: every Members entry compares equal to Canonical
// (the first member seen) via CompareExprs, producing the same Holes set.
type Cluster struct {
	Signature string
	Canonical jsast.Expr
	Members   []jsast.Expr
	Holes     []Path
}

// BuildClusters groups exprs by Signature, then, within each signature
// group, validates that every member's hole set (against the group's first
// member) matches; a member whose holes disagree starts a new cluster
// under the same signature, per §4.6 ("members found structurally
// divergent despite a shared signature start a new cluster").
func BuildClusters(exprs []jsast.Expr) []*Cluster {
	bySignature := map[string][]*Cluster{}
	order := []string{}

	for _, e := range exprs {
		sig := Signature(e)
		groups, seen := bySignature[sig]
		if !seen {
			order = append(order, sig)
		}
		placed := false
		for _, cl := range groups {
			holes, ok := CompareExprs(cl.Canonical, e)
			if !ok {
				continue
			}
			if len(cl.Members) == 1 {
				// The second member fixes the cluster's hole set.
				cl.Holes = holes
			} else if !holeSetsEqual(holes, cl.Holes) {
				continue
			}
			cl.Members = append(cl.Members, e)
			placed = true
			break
		}
		if !placed {
			bySignature[sig] = append(bySignature[sig], &Cluster{
				Signature: sig,
				Canonical: e,
				Members:   []jsast.Expr{e},
				Holes:     selfHoles(e),
			})
		}
	}

	var out []*Cluster
	for _, sig := range order {
		out = append(out, bySignature[sig]...)
	}
	return out
}

// selfHoles computes a cluster's own hole set by comparing its canonical
// member against itself: every Lit position is trivially equal to itself,
// so this always yields an empty set; a canonical's hole set only grows
// once a second member is compared against it. It exists so a
// single-member cluster still has a well-defined (empty) Holes value.
func selfHoles(e jsast.Expr) []Path {
	holes, _ := CompareExprs(e, e)
	return holes
}

// ComputeParameterMapping assigns each hole in cl a parameter index,
// shared by every hole whose literal values agree across all members in
// the same member position, per §4.6 ("two holes whose literal values
// always agree across every member collapse onto one template
// parameter"). The result maps hole index -> parameter index; the number
// of distinct parameters is 1 + the maximum mapped value (or 0 if there
// are no holes).
func ComputeParameterMapping(cl *Cluster) ([]int, error) {
	vectors := make([][]any, len(cl.Holes))
	for hi, path := range cl.Holes {
		vec := make([]any, len(cl.Members))
		for mi, member := range cl.Members {
			node, ok := getAt(member, path)
			if !ok {
				return nil, &ExtractError{Path: path}
			}
			lit, ok := node.(*jsast.Lit)
			if !ok {
				return nil, &ExtractError{Path: path}
			}
			vec[mi] = lit.Value
		}
		vectors[hi] = vec
	}

	mapping := make([]int, len(cl.Holes))
	var reps [][]any
	for hi, vec := range vectors {
		found := -1
		for ri, rep := range reps {
			if vectorsEqual(rep, vec) {
				found = ri
				break
			}
		}
		if found == -1 {
			reps = append(reps, vec)
			found = len(reps) - 1
		}
		mapping[hi] = found
	}
	return mapping, nil
}

func vectorsEqual(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ApplyTemplate substitutes each hole in canonical with a Var referencing
// names[mapping[hi]], producing the parameterized template body shared by
// every member of the cluster.
func ApplyTemplate(canonical jsast.Expr, holes []Path, mapping []int, names []string) jsast.Expr {
	out := canonical
	for hi, path := range holes {
		pi := mapping[hi]
		if pi >= len(names) {
			panic(fmt.Sprintf("cluster: parameter index %d out of range for %d names", pi, len(names)))
		}
		out = replaceAt(out, path, &jsast.Var{Name: names[pi]})
	}
	return out
}

// ParamCount returns the number of distinct template parameters a mapping
// produced by ComputeParameterMapping requires.
func ParamCount(mapping []int) int {
	max := -1
	for _, m := range mapping {
		if m > max {
			max = m
		}
	}
	return max + 1
}

// FunctionTemplate builds the Arrow wrapping canonical's body as a
// deduplicated template function `(p0, p1, ...) => body`, matching
// §4.6's worked example of turning near-duplicate arrow bodies into one
// shared function parameterized over the positions where their literals
// diverge.
func FunctionTemplate(cl *Cluster, mapping []int) (*jsast.Arrow, error) {
	n := ParamCount(mapping)
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("p%d", i)
	}
	body := ApplyTemplate(cl.Canonical, cl.Holes, mapping, names)
	return &jsast.Arrow{Params: names, Body: body}, nil
}
