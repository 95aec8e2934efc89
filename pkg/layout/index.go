package layout

import (
	"sort"

	"github.com/asim/quadtree"

	"github.com/OpenTraceLab/ringlayout/pkg/geom"
)

// indexEntry ties a node to its point in the tree. outside is set when the
// node lies beyond the tree's boundary and lives in the overflow list.
type indexEntry struct {
	point   *quadtree.Point
	outside bool
}

// nodeIndex answers "which placed nodes are near p" for the resolver
type nodeIndex struct {
	tree     *quadtree.QuadTree
	overflow []*Node
}

// newNodeIndex covers the square of half-size halfSize around center. Nodes
// placed outside it are still found, through a linear scan.
func newNodeIndex(center geom.Point, halfSize float64) *nodeIndex {
	aabb := quadtree.NewAABB(
		quadtree.NewPoint(center.X, center.Y, nil),
		quadtree.NewPoint(halfSize, halfSize, nil))
	return &nodeIndex{tree: quadtree.New(aabb, 0, nil)}
}

func (ix *nodeIndex) insert(n *Node) {
	pt := quadtree.NewPoint(n.Position.X, n.Position.Y, n)
	if ix.tree.Insert(pt) {
		n.entry = &indexEntry{point: pt}
		return
	}
	n.entry = &indexEntry{outside: true}
	ix.overflow = append(ix.overflow, n)
}

func (ix *nodeIndex) remove(n *Node) {
	if n.entry == nil {
		return
	}
	if n.entry.outside {
		for i, o := range ix.overflow {
			if o == n {
				ix.overflow = append(ix.overflow[:i], ix.overflow[i+1:]...)
				break
			}
		}
	} else {
		ix.tree.Remove(n.entry.point)
	}
	n.entry = nil
}

// move re-files n after its position changed
func (ix *nodeIndex) move(n *Node) {
	ix.remove(n)
	ix.insert(n)
}

// within returns the nodes closer than radius to p, in placement order
func (ix *nodeIndex) within(p geom.Point, radius float64) []*Node {
	box := quadtree.NewAABB(
		quadtree.NewPoint(p.X, p.Y, nil),
		quadtree.NewPoint(radius, radius, nil))

	var out []*Node
	for _, pt := range ix.tree.Search(box) {
		n := pt.Data().(*Node)
		if n.Position.Distance(p) < radius {
			out = append(out, n)
		}
	}
	for _, n := range ix.overflow {
		if n.Position.Distance(p) < radius {
			out = append(out, n)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}
