// Package density implements the two-stage SPH density evaluator:
// per-particle densities (Stage A) and the per-subdomain voxel scalar
// field (Stage B) Marching Cubes consumes.
package density

// ScalarField is the per-subdomain MC input: a (S+1)^3 array of density
// samples at background-grid vertices, plus a touched bitmap MC uses to
// skip cells no particle's support reached.
//
// Dense and Sparse are the two tagged-variant implementations; callers
// branch on which one a subdomain needs once, at the subdomain boundary,
// never per-voxel.
type ScalarField interface {
	Get(i, j, k int) float32
	Set(i, j, k int, v float32)
	Add(i, j, k int, v float32)
	Touched(i, j, k int) bool
	// Dims returns the number of vertices along each axis: S+1.
	Dims() int
}

// DenseField materializes the full (S+1)^3 array. Used for subdomains
// whose owned particle count is not flagged sparse.
type DenseField struct {
	dims    int
	values  []float32
	touched []bool
}

// NewDenseField allocates a zero-initialized dense field with dims
// vertices per axis.
func NewDenseField(dims int) *DenseField {
	n := dims * dims * dims
	return &DenseField{dims: dims, values: make([]float32, n), touched: make([]bool, n)}
}

func (f *DenseField) flat(i, j, k int) int { return i + f.dims*(j+f.dims*k) }

func (f *DenseField) Get(i, j, k int) float32 { return f.values[f.flat(i, j, k)] }
func (f *DenseField) Set(i, j, k int, v float32) {
	idx := f.flat(i, j, k)
	f.values[idx] = v
	f.touched[idx] = true
}
func (f *DenseField) Add(i, j, k int, v float32) {
	idx := f.flat(i, j, k)
	f.values[idx] += v
	f.touched[idx] = true
}
func (f *DenseField) Touched(i, j, k int) bool { return f.touched[f.flat(i, j, k)] }
func (f *DenseField) Dims() int                { return f.dims }

// SparseField keys density samples by local vertex index in an associative
// array; entries default to zero and are fetched lazily. Used for
// subdomains flagged sparse by the classifier (owned count < 5% of the
// per-reconstruction maximum), where a full dense allocation would mostly
// sit empty.
type SparseField struct {
	dims   int
	values map[int]float32
}

// NewSparseField allocates an empty sparse field with dims vertices per
// axis.
func NewSparseField(dims int) *SparseField {
	return &SparseField{dims: dims, values: make(map[int]float32)}
}

func (f *SparseField) flat(i, j, k int) int { return i + f.dims*(j+f.dims*k) }

func (f *SparseField) Get(i, j, k int) float32 {
	return f.values[f.flat(i, j, k)]
}
func (f *SparseField) Set(i, j, k int, v float32) {
	f.values[f.flat(i, j, k)] = v
}
func (f *SparseField) Add(i, j, k int, v float32) {
	f.values[f.flat(i, j, k)] += v
}
func (f *SparseField) Touched(i, j, k int) bool {
	_, ok := f.values[f.flat(i, j, k)]
	return ok
}
func (f *SparseField) Dims() int { return f.dims }
