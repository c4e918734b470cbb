package ir

// DomTree is an explicit dominator tree for one function: an array of
// immediate-dominator indices, computed once per validation run. Block A
// dominates block B when every path from the entry to B passes through A.
type DomTree struct {
	idom      []int // immediate dominator per block; -1 for entry and unreachable blocks
	postorder []int // postorder number per block, -1 when unreachable
	reachable []bool
	preds     [][]BlockID
}

// BuildDomTree computes the dominator tree of f from its entry block using
// the Cooper-Harvey-Kennedy iterative algorithm over reverse postorder.
// Blocks without a terminator contribute no successor edges; the tree is
// still total over the blocks that are reachable.
func BuildDomTree(f *Function) *DomTree {
	n := len(f.Blocks)
	d := &DomTree{
		idom:      make([]int, n),
		postorder: make([]int, n),
		reachable: make([]bool, n),
		preds:     make([][]BlockID, n),
	}
	for i := range d.idom {
		d.idom[i] = -1
		d.postorder[i] = -1
	}
	if n == 0 {
		return d
	}

	// Iterative DFS from the entry for postorder numbers and predecessors.
	type frame struct {
		block BlockID
		next  int
	}
	succs := make([][]BlockID, n)
	for i, blk := range f.Blocks {
		if blk.Term != nil {
			for _, s := range blk.Term.Successors() {
				if s >= 0 && int(s) < n {
					succs[i] = append(succs[i], s)
					d.preds[s] = append(d.preds[s], BlockID(i))
				}
			}
		}
	}
	var rpo []BlockID
	visited := make([]bool, n)
	stack := []frame{{block: 0}}
	visited[0] = true
	ponum := 0
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next < len(succs[top.block]) {
			s := succs[top.block][top.next]
			top.next++
			if !visited[s] {
				visited[s] = true
				stack = append(stack, frame{block: s})
			}
			continue
		}
		d.postorder[top.block] = ponum
		ponum++
		rpo = append(rpo, top.block)
		stack = stack[:len(stack)-1]
	}
	// rpo currently holds postorder; reverse it.
	for i, j := 0, len(rpo)-1; i < j; i, j = i+1, j-1 {
		rpo[i], rpo[j] = rpo[j], rpo[i]
	}
	copy(d.reachable, visited)

	d.idom[0] = 0
	changed := true
	for changed {
		changed = false
		for _, b := range rpo {
			if b == 0 {
				continue
			}
			newIdom := -1
			for _, p := range d.preds[b] {
				if d.idom[p] == -1 {
					continue
				}
				if newIdom == -1 {
					newIdom = int(p)
				} else {
					newIdom = d.intersect(int(p), newIdom)
				}
			}
			if newIdom != -1 && d.idom[b] != newIdom {
				d.idom[b] = newIdom
				changed = true
			}
		}
	}
	// The entry has no immediate dominator.
	d.idom[0] = -1
	return d
}

func (d *DomTree) intersect(a, b int) int {
	for a != b {
		for d.postorder[a] < d.postorder[b] {
			a = d.idom[a]
		}
		for d.postorder[b] < d.postorder[a] {
			b = d.idom[b]
		}
	}
	return a
}

// Reachable reports whether b is reachable from the entry block.
func (d *DomTree) Reachable(b BlockID) bool {
	return int(b) < len(d.reachable) && d.reachable[b]
}

// Idom returns the immediate dominator of b. ok is false for the entry
// block and for unreachable blocks.
func (d *DomTree) Idom(b BlockID) (BlockID, bool) {
	if int(b) >= len(d.idom) || d.idom[b] == -1 {
		return 0, false
	}
	return BlockID(d.idom[b]), true
}

// Dominates reports whether a dominates b. Every block dominates itself.
// Unreachable blocks are dominated by nothing but themselves.
func (d *DomTree) Dominates(a, b BlockID) bool {
	if a == b {
		return true
	}
	if !d.Reachable(a) || !d.Reachable(b) {
		return false
	}
	cur := int(b)
	for d.idom[cur] != -1 {
		cur = d.idom[cur]
		if cur == int(a) {
			return true
		}
	}
	return false
}

// Preds returns the predecessor blocks of b, in edge-discovery order.
func (d *DomTree) Preds(b BlockID) []BlockID {
	if int(b) >= len(d.preds) {
		return nil
	}
	return d.preds[b]
}
