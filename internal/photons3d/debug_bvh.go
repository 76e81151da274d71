package photons3d

import (
	"fmt"
	"io"
	"strings"
)

// BVHStats summarizes the shape of a hierarchy.
type BVHStats struct {
	Nodes     int
	Leaves    int
	Triangles int
	MaxDepth  int
	AvgLeaf   Real
}

func (b *BVH) Stats() BVHStats {
	s := BVHStats{Nodes: len(b.nodes), MaxDepth: b.maxDepth}
	for i := range b.nodes {
		if b.nodes[i].leaf() {
			s.Leaves++
			s.Triangles += int(b.nodes[i].count)
		}
	}
	if s.Leaves > 0 {
		s.AvgLeaf = Real(s.Triangles) / Real(s.Leaves)
	}
	return s
}

// Validate checks that every triangle sits in exactly one leaf and that every
// node box contains its children's boxes and its triangles' boxes.
func (b *BVH) Validate() error {
	n := len(b.geo.Triangles)
	if n == 0 {
		return nil
	}
	seen := make([]int, n)
	var walk func(idx int32) error
	walk = func(idx int32) error {
		node := &b.nodes[idx]
		if node.leaf() {
			for _, ti := range b.order[node.start : node.start+node.count] {
				seen[ti]++
				if !node.box.Contains(b.geo.Triangles[ti].bbox) {
					return fmt.Errorf("leaf %d does not contain triangle %d", idx, ti)
				}
			}
			return nil
		}
		for _, c := range []int32{node.left, node.right} {
			if !node.box.Contains(b.nodes[c].box) {
				return fmt.Errorf("node %d does not contain child %d", idx, c)
			}
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(0); err != nil {
		return err
	}
	for i, c := range seen {
		if c != 1 {
			return fmt.Errorf("triangle %d referenced %d times", i, c)
		}
	}
	return nil
}

// DumpBVH prints the tree with indentation (one space per level).
// It prints the node counts and the AABB min/max for each node.
func DumpBVH(w io.Writer, b *BVH) {
	if b == nil || len(b.nodes) == 0 {
		fmt.Fprintln(w, "[BVH] <empty>")
		return
	}
	s := b.Stats()
	fmt.Fprintf(w, "[BVH] root: nodes=%d leaves=%d tris=%d depth=%d avgLeaf=%.2f\n", s.Nodes, s.Leaves, s.Triangles, s.MaxDepth, s.AvgLeaf)
	var dump func(idx int32, depth int)
	dump = func(idx int32, depth int) {
		n := &b.nodes[idx]
		pad := strings.Repeat(" ", depth)
		if n.leaf() {
			fmt.Fprintf(w, "%sleaf #%d tris=%v min=%+v max=%+v\n", pad, idx, b.order[n.start:n.start+n.count], n.box.Min, n.box.Max)
			return
		}
		fmt.Fprintf(w, "%snode #%d min=%+v max=%+v\n", pad, idx, n.box.Min, n.box.Max)
		dump(n.left, depth+1)
		dump(n.right, depth+1)
	}
	dump(0, 0)
}
