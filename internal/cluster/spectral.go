// Package cluster groups authors by the shape of their activity series.
package cluster

import (
	"errors"
	"fmt"
	"math"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"gonum.org/v1/gonum/mat"
)

// Defaults mirror the usual spectral clustering settings.
const (
	DefaultClusters = 8
	DefaultGamma    = 1.0
)

var ErrTooFewRows = errors.New("cluster: fewer rows than clusters")

// Spectral clusters rows through an RBF affinity graph: the top eigenvectors of
// the normalized affinity embed every row, and k-means labels the embedding.
type Spectral struct {
	Clusters int
	Gamma    float64
}

func NewSpectral(k int) Spectral {
	if k <= 0 {
		k = DefaultClusters
	}
	return Spectral{Clusters: k, Gamma: DefaultGamma}
}

// FitPredict returns one label in [0, Clusters) per row of x.
func (s Spectral) FitPredict(x [][]float64) ([]int, error) {
	k := s.Clusters
	if k <= 0 {
		k = DefaultClusters
	}
	if len(x) < k {
		return nil, fmt.Errorf("%w: %d rows, %d clusters", ErrTooFewRows, len(x), k)
	}
	gamma := s.Gamma
	if gamma <= 0 {
		gamma = DefaultGamma
	}

	emb, err := Embed(x, k, gamma)
	if err != nil {
		return nil, err
	}

	obs := make(clusters.Observations, len(emb))
	for i, row := range emb {
		obs[i] = clusters.Coordinates(row)
	}
	cc, err := kmeans.New().Partition(obs, k)
	if err != nil {
		return nil, fmt.Errorf("kmeans: %w", err)
	}

	labels := make([]int, len(obs))
	for i, o := range obs {
		labels[i] = cc.Nearest(o)
	}
	return labels, nil
}

// Embed maps every row of x to k coordinates: the leading eigenvectors of
// D^-1/2 A D^-1/2, where A is the RBF affinity exp(-gamma*|xi-xj|^2), with each
// embedded row scaled to unit length.
func Embed(x [][]float64, k int, gamma float64) ([][]float64, error) {
	n := len(x)
	if n == 0 {
		return nil, ErrTooFewRows
	}
	for i, row := range x {
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("cluster: row %d has non-finite values", i)
			}
		}
	}

	aff := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		aff.SetSym(i, i, 1)
		for j := i + 1; j < n; j++ {
			aff.SetSym(i, j, math.Exp(-gamma*sqDist(x[i], x[j])))
		}
	}

	inv := make([]float64, n)
	for i := 0; i < n; i++ {
		var deg float64
		for j := 0; j < n; j++ {
			deg += aff.At(i, j)
		}
		inv[i] = 1 / math.Sqrt(deg)
	}
	norm := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			norm.SetSym(i, j, aff.At(i, j)*inv[i]*inv[j])
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(norm, true); !ok {
		return nil, errors.New("cluster: eigendecomposition failed")
	}
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	// eigenvalues come back ascending; keep the last k columns
	out := make([][]float64, n)
	for i := 0; i < n; i++ {
		row := make([]float64, k)
		var length float64
		for c := 0; c < k; c++ {
			row[c] = vecs.At(i, n-1-c)
			length += row[c] * row[c]
		}
		if length > 0 {
			length = math.Sqrt(length)
			for c := range row {
				row[c] /= length
			}
		}
		out[i] = row
	}
	return out, nil
}

func sqDist(a, b []float64) float64 {
	var s float64
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return s
}

// Sizes counts rows per label.
func Sizes(labels []int) []int {
	var out []int
	for _, l := range labels {
		for l >= len(out) {
			out = append(out, 0)
		}
		out[l]++
	}
	return out
}

// Members returns the row indexes carrying label.
func Members(labels []int, label int) []int {
	var out []int
	for i, l := range labels {
		if l == label {
			out = append(out, i)
		}
	}
	return out
}
