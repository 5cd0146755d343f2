package segment

import "github.com/theodesp/unionfind"

// forest is the part of the union-find API the relabel table uses.
type forest interface {
	Union(p, q int)
	Root(p int) int
}

// relabelTable records which region each merged region was folded into.
// It is indexed by initial region id; index 0 is unused.
type relabelTable struct {
	uf forest
	n  int
}

// newRelabelTable sizes the table for region ids [1, n).
func newRelabelTable(n int) *relabelTable {
	return &relabelTable{uf: unionfind.NewThreadSafeUnionFind(n), n: n}
}

// find returns the surviving region for id.
func (t *relabelTable) find(id int) (int, error) {
	if t == nil || id <= 0 || id >= t.n {
		n := 0
		if t != nil {
			n = t.n
		}
		return 0, internalErrorf("relabel", "region %d out of range [1,%d)", id, n)
	}
	root := t.uf.Root(id)
	if root <= 0 || root >= t.n {
		return 0, internalErrorf("relabel", "region %d resolves to %d", id, root)
	}
	return root, nil
}

// union joins the sets of a and b and returns the surviving id, which may
// be either of them.
func (t *relabelTable) union(a, b int) int {
	t.uf.Union(a, b)
	return t.uf.Root(a)
}
