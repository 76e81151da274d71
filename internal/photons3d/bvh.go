package photons3d

import (
	"sort"
	"time"
)

// bvhNode is either internal (count == 0, children at left/right) or a leaf
// covering order[start : start+count].
type bvhNode struct {
	box         AABB
	left, right int32
	start       int32
	count       int32
}

func (n *bvhNode) leaf() bool { return n.count > 0 }

// BVH is a bounding volume hierarchy over a Geometry's triangles.
// It is read-only after BuildBVH and safe to share between goroutines.
type BVH struct {
	geo      *Geometry
	nodes    []bvhNode
	order    []int32 // triangle ids, leaf-contiguous
	maxDepth int
}

type bvhPrim struct {
	tri int32
	box AABB
	c   Vector3
}

type bvhBin struct {
	box   AABB
	count int
}

// BuildBVH partitions the geometry's triangles with a binned surface area heuristic,
// falling back to a centroid median split when the heuristic cannot separate them.
func BuildBVH(geo *Geometry) *BVH {
	start := time.Now()
	n := len(geo.Triangles)
	b := &BVH{
		geo:   geo,
		nodes: make([]bvhNode, 0, imax(1, 2*n/BVHMaxLeafSize)),
		order: make([]int32, 0, n),
	}
	if n == 0 {
		return b
	}
	prims := make([]bvhPrim, n)
	for i := range geo.Triangles {
		box := geo.Triangles[i].bbox
		prims[i] = bvhPrim{tri: int32(i), box: box, c: box.Centroid()}
	}
	b.build(prims, 0)
	DebugLog("Built BVH: %d triangles, %d nodes, depth %d in %s", n, len(b.nodes), b.maxDepth, time.Since(start))
	return b
}

func (b *BVH) build(prims []bvhPrim, depth int) int32 {
	if depth > b.maxDepth {
		b.maxDepth = depth
	}
	idx := int32(len(b.nodes))
	b.nodes = append(b.nodes, bvhNode{})

	box := emptyAABB()
	cbox := emptyAABB()
	for i := range prims {
		box = box.Union(prims[i].box)
		cbox = cbox.Extend(prims[i].c)
	}
	b.nodes[idx].box = box

	if len(prims) <= BVHMaxLeafSize {
		b.makeLeaf(idx, prims)
		return idx
	}

	// Split along the axis of largest centroid spread.
	spread := cbox.Max.Sub(cbox.Min)
	axis := 0
	if spread.Y > spread.Axis(axis) {
		axis = 1
	}
	if spread.Z > spread.Axis(axis) {
		axis = 2
	}

	mid := -1
	if spread.Axis(axis) > 1e-18 {
		mid = partitionSAH(prims, axis, cbox.Min.Axis(axis), spread.Axis(axis))
	}
	if mid <= 0 || mid >= len(prims) {
		mid = partitionMedian(prims, axis)
	}

	left := b.build(prims[:mid], depth+1)
	right := b.build(prims[mid:], depth+1)
	b.nodes[idx].left = left
	b.nodes[idx].right = right
	return idx
}

func (b *BVH) makeLeaf(idx int32, prims []bvhPrim) {
	b.nodes[idx].start = int32(len(b.order))
	b.nodes[idx].count = int32(len(prims))
	for i := range prims {
		b.order = append(b.order, prims[i].tri)
	}
}

func binOf(c, lo, spread Real) int {
	k := int(BVHBins * (c - lo) / spread)
	if k < 0 {
		k = 0
	}
	if k >= BVHBins {
		k = BVHBins - 1
	}
	return k
}

// partitionSAH reorders prims (stable within each side) around the cheapest bin
// boundary and returns the split index, or -1 when one side would be empty.
func partitionSAH(prims []bvhPrim, axis int, lo, spread Real) int {
	var bins [BVHBins]bvhBin
	for i := range bins {
		bins[i].box = emptyAABB()
	}
	for i := range prims {
		k := binOf(prims[i].c.Axis(axis), lo, spread)
		bins[k].count++
		bins[k].box = bins[k].box.Union(prims[i].box)
	}

	// Right-to-left sweep for suffix areas, then left-to-right for the cost.
	var rightArea [BVHBins]Real
	var rightCount [BVHBins]int
	acc := emptyAABB()
	cnt := 0
	for k := BVHBins - 1; k > 0; k-- {
		acc = acc.Union(bins[k].box)
		cnt += bins[k].count
		rightArea[k] = acc.SurfaceArea()
		rightCount[k] = cnt
	}
	best, bestCost := -1, Real(0)
	acc = emptyAABB()
	cnt = 0
	for k := 1; k < BVHBins; k++ {
		acc = acc.Union(bins[k-1].box)
		cnt += bins[k-1].count
		if cnt == 0 || rightCount[k] == 0 {
			continue
		}
		cost := Real(cnt)*acc.SurfaceArea() + Real(rightCount[k])*rightArea[k]
		if best < 0 || cost < bestCost {
			best, bestCost = k, cost
		}
	}
	if best < 0 {
		return -1
	}

	left := make([]bvhPrim, 0, len(prims))
	right := make([]bvhPrim, 0, len(prims))
	for i := range prims {
		if binOf(prims[i].c.Axis(axis), lo, spread) < best {
			left = append(left, prims[i])
		} else {
			right = append(right, prims[i])
		}
	}
	copy(prims, left)
	copy(prims[len(left):], right)
	return len(left)
}

// partitionMedian sorts by centroid along axis (ties by triangle id) and splits in half.
func partitionMedian(prims []bvhPrim, axis int) int {
	sort.Slice(prims, func(i, j int) bool {
		ci, cj := prims[i].c.Axis(axis), prims[j].c.Axis(axis)
		if ci == cj {
			return prims[i].tri < prims[j].tri
		}
		return ci < cj
	})
	return len(prims) / 2
}

// Geometry returns the geometry the hierarchy was built over.
func (b *BVH) Geometry() *Geometry { return b.geo }
