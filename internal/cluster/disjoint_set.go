package cluster

// DisjointSet is a union-find structure over the indexes [0, n).
type DisjointSet struct {
	parent []int
}

func NewDisjointSet(n int) *DisjointSet {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &DisjointSet{parent: parent}
}

// Find returns the root of x, compressing the path on the way.
func (d *DisjointSet) Find(x int) int {
	root := x
	for d.parent[root] != root {
		root = d.parent[root]
	}
	for d.parent[x] != root {
		next := d.parent[x]
		d.parent[x] = root
		x = next
	}
	return root
}

// Union merges the sets holding x and y. The root of x's set survives.
func (d *DisjointSet) Union(x, y int) {
	rx, ry := d.Find(x), d.Find(y)
	if rx != ry {
		d.parent[ry] = rx
	}
}

func (d *DisjointSet) Len() int {
	return len(d.parent)
}
