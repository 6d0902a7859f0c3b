package cluster

import (
	"fmt"

	"github.com/typeforge/tfc/internal/jsast"
)

// Cache lets Rewrite reuse a cluster's hole set and parameter mapping
// across compiler runs instead of recomputing them from scratch, keyed by
// the coarse Signature BuildClusters already groups by. It is satisfied by
// a thin adapter over internal/clustercache's on-disk cache; Rewrite
// itself stays free of that package to avoid an import cycle (clustercache
// already imports cluster for Path).
type Cache interface {
	Get(signature string) (holes []Path, mapping []int, ok bool)
	Put(signature string, holes []Path, mapping []int)
}

// Rewrite implements §4.6/§8's residual clustering pass: it clusters every
// top-level const's initializer, and for every cluster with at least two
// members and at least one hole, lifts the canonical member's shape into a
// single shared template function and rewrites each member's initializer
// into a call to it, carrying only the literal values at that member's own
// hole positions. Decls outside a qualifying cluster (including every
// single-member or zero-hole cluster) pass through unchanged. cache may be
// nil, in which case every cluster's mapping is recomputed.
func Rewrite(stmts []jsast.Stmt, cache Cache) ([]jsast.Stmt, error) {
	var inits []jsast.Expr
	var owners []int // index into stmts for each entry in inits
	for i, s := range stmts {
		if c, ok := s.(*jsast.Const); ok {
			inits = append(inits, c.Init)
			owners = append(owners, i)
		}
	}
	if len(inits) == 0 {
		return stmts, nil
	}

	clusters := BuildClusters(inits)
	out := append([]jsast.Stmt(nil), stmts...)
	var templates []jsast.Stmt
	templateN := 0

	for _, cl := range clusters {
		if len(cl.Members) < 2 || len(cl.Holes) == 0 {
			continue
		}

		holes, mapping, err := resolveMapping(cl, cache)
		if err != nil {
			return nil, err
		}

		fn, err := FunctionTemplate(&Cluster{Canonical: cl.Canonical, Holes: holes}, mapping)
		if err != nil {
			return nil, err
		}
		fnName := fmt.Sprintf("__cluster%d", templateN)
		templateN++
		templates = append(templates, &jsast.Const{Name: fnName, Init: fn})

		for _, member := range cl.Members {
			args, err := argsForMember(member, holes, mapping)
			if err != nil {
				return nil, err
			}
			idx, ok := indexOf(inits, owners, member)
			if !ok {
				continue
			}
			origConst := out[idx].(*jsast.Const)
			out[idx] = &jsast.Const{
				Name: origConst.Name,
				Init: &jsast.Call{Fn: &jsast.Var{Name: fnName}, Args: args},
			}
		}
	}

	return append(templates, out...), nil
}

// resolveMapping fetches a previously computed hole set and parameter
// mapping for cl's signature from cache, falling back to computing (and,
// if cache is non-nil, storing) a fresh one. A cache hit skips BuildClusters'
// own hole set entirely, trusting the cache's recorded one instead, since
// it was itself derived from CompareExprs against the same signature.
func resolveMapping(cl *Cluster, cache Cache) ([]Path, []int, error) {
	if cache != nil {
		if holes, mapping, ok := cache.Get(cl.Signature); ok {
			return holes, mapping, nil
		}
	}
	mapping, err := ComputeParameterMapping(cl)
	if err != nil {
		return nil, nil, err
	}
	if cache != nil {
		cache.Put(cl.Signature, cl.Holes, mapping)
	}
	return cl.Holes, mapping, nil
}

// argsForMember extracts, for each template parameter, the literal value
// of the first hole mapped to it, read out of member's own tree rather
// than the cluster's canonical member, so every member keeps its own
// values once rewritten into a call.
func argsForMember(member jsast.Expr, holes []Path, mapping []int) ([]jsast.Expr, error) {
	n := ParamCount(mapping)
	args := make([]jsast.Expr, n)
	filled := make([]bool, n)
	for hi, path := range holes {
		pi := mapping[hi]
		if filled[pi] {
			continue
		}
		node, ok := getAt(member, path)
		if !ok {
			return nil, &ExtractError{Path: path}
		}
		lit, ok := node.(*jsast.Lit)
		if !ok {
			return nil, &ExtractError{Path: path}
		}
		args[pi] = lit
		filled[pi] = true
	}
	return args, nil
}

// indexOf finds member's position among inits (by pointer identity) and
// returns the corresponding stmts index recorded in owners.
func indexOf(inits []jsast.Expr, owners []int, member jsast.Expr) (int, bool) {
	for i, e := range inits {
		if e == member {
			return owners[i], true
		}
	}
	return 0, false
}
