package transform

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ErrNoSamples is returned when clustering is asked for on an empty collection.
var ErrNoSamples = errors.New("no samples to cluster")

// Merge joins two clusters. Ids below n are leaves; merge k creates cluster n+k.
type Merge struct {
	Left     int
	Right    int
	Distance float64
	Size     int
}

// Segment is one straight dendrogram line in (leaf position, height) space.
type Segment struct {
	X0, Y0 float64
	X1, Y1 float64
}

// Dendrogram is the result of Cluster. Order holds input indices in leaf order; leaf i of
// the drawing sits at x = i.
type Dendrogram struct {
	Labels   []string
	Order    []int
	Merges   []Merge
	Segments []Segment
}

// OrderedLabels returns the labels in leaf order.
func (d *Dendrogram) OrderedLabels() []string {
	out := make([]string, len(d.Order))
	for i, idx := range d.Order {
		out[i] = d.Labels[idx]
	}
	return out
}

// Height is the distance of the final merge, 0 for a single leaf.
func (d *Dendrogram) Height() float64 {
	if len(d.Merges) == 0 {
		return 0
	}
	return d.Merges[len(d.Merges)-1].Distance
}

// DistanceMatrix returns the pairwise Euclidean distances between equal-length vectors.
func DistanceMatrix(vectors [][]float64) (*mat.SymDense, error) {
	n := len(vectors)
	if n == 0 {
		return nil, ErrNoSamples
	}
	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) != dim {
			return nil, errors.Errorf("vector %d has %d values, want %d", i, len(v), dim)
		}
	}
	d := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d.SetSym(i, j, floats.Distance(vectors[i], vectors[j], 2))
		}
	}
	return d, nil
}

type cluster struct {
	id     int
	leaves []int
	height float64
	x      float64
}

// Cluster runs agglomerative complete-linkage clustering. At every step the closest pair of
// active clusters is merged; equal distances go to the pair with the lowest ids, and the
// lower id becomes the left child.
func Cluster(labels []string, vectors [][]float64) (*Dendrogram, error) {
	if len(labels) != len(vectors) {
		return nil, errors.Errorf("%d labels for %d vectors", len(labels), len(vectors))
	}
	dist, err := DistanceMatrix(vectors)
	if err != nil {
		return nil, err
	}
	n := len(vectors)
	d := &Dendrogram{Labels: append([]string(nil), labels...)}

	// linkage distances between active cluster ids, indexed [id][id]
	size := 2*n - 1
	link := make([][]float64, size)
	for i := range link {
		link[i] = make([]float64, size)
	}
	active := make([]*cluster, n)
	for i := 0; i < n; i++ {
		active[i] = &cluster{id: i, leaves: []int{i}}
		for j := 0; j < n; j++ {
			link[i][j] = dist.At(i, j)
		}
	}

	for next := n; len(active) > 1; next++ {
		bi, bj := 0, 1
		best := math.Inf(1)
		// active stays sorted by id, so the first strict minimum is the lowest-id pair
		for i := 0; i < len(active); i++ {
			for j := i + 1; j < len(active); j++ {
				if v := link[active[i].id][active[j].id]; v < best {
					best, bi, bj = v, i, j
				}
			}
		}
		left, right := active[bi], active[bj]
		merged := &cluster{
			id:     next,
			leaves: append(append([]int(nil), left.leaves...), right.leaves...),
			height: best,
		}
		d.Merges = append(d.Merges, Merge{Left: left.id, Right: right.id, Distance: best, Size: len(merged.leaves)})

		rest := make([]*cluster, 0, len(active)-1)
		for k, c := range active {
			if k == bi || k == bj {
				continue
			}
			v := math.Max(link[left.id][c.id], link[right.id][c.id])
			link[next][c.id], link[c.id][next] = v, v
			rest = append(rest, c)
		}
		active = append(rest, merged)
	}

	d.Order = active[0].leaves
	d.Segments = segments(d, n)
	return d, nil
}

// segments draws every merge as a U: down to each child's height at the child's x, joined
// at the merge distance. A child's x is its leaf position or the centre of its own join.
func segments(d *Dendrogram, n int) []Segment {
	if len(d.Merges) == 0 {
		return nil
	}
	x := make([]float64, n+len(d.Merges))
	h := make([]float64, n+len(d.Merges))
	for pos, leaf := range d.Order {
		x[leaf] = float64(pos)
	}
	out := make([]Segment, 0, 3*len(d.Merges))
	for k, m := range d.Merges {
		id := n + k
		x[id] = (x[m.Left] + x[m.Right]) / 2
		h[id] = m.Distance
		out = append(out,
			Segment{X0: x[m.Left], Y0: h[m.Left], X1: x[m.Left], Y1: m.Distance},
			Segment{X0: x[m.Left], Y0: m.Distance, X1: x[m.Right], Y1: m.Distance},
			Segment{X0: x[m.Right], Y0: m.Distance, X1: x[m.Right], Y1: h[m.Right]},
		)
	}
	return out
}

// Reorder permutes values by a leaf order.
func Reorder[T any](values []T, order []int) []T {
	out := make([]T, len(order))
	for i, idx := range order {
		out[i] = values[idx]
	}
	return out
}
