package surfmesh

import (
	"io"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"

	"github.com/gekko3d/surfmesh/geom"
	"github.com/gekko3d/surfmesh/internal/rlog"
)

// CleanupMode selects the mesh-cleanup strategy. A tagged variant rather
// than an interface: branching happens once, at the post-processor
// boundary, never inside the per-triangle inner loop.
type CleanupMode int

const (
	CleanupNone CleanupMode = iota
	// CleanupSliverCollapse removes MC slivers by edge-collapse on the
	// shortest edge of triangles whose shortest edge is below a relative
	// epsilon of the voxel edge or whose aspect ratio exceeds a threshold.
	CleanupSliverCollapse
	// CleanupBarnacleDecimation removes only the specific "barnacle"
	// adjacency pattern: a single triangle wholly inside the star of one
	// vertex with two reflex neighbors.
	CleanupBarnacleDecimation
)

// NormalsMode selects how per-vertex normals are computed.
type NormalsMode int

const (
	NormalsNone NormalsMode = iota
	// NormalsAreaWeighted averages incident triangle normals weighted by
	// triangle area, then optionally smooths the normal field.
	NormalsAreaWeighted
	// NormalsSPHGradient computes the negated, normalized SPH density
	// gradient at each mesh vertex.
	NormalsSPHGradient
)

// Config is the immutable, validated bundle of reconstruction parameters.
// Build one with NewConfig and zero or more Options; Config is read-only
// for the duration of a reconstruction.
type Config struct {
	ParticleRadius      float32 // r
	RestDensity         float32 // rho0
	SmoothingLength     float32 // h, in units of r
	CubeSize            float32 // Delta, in units of r
	IsoSurfaceThreshold float32 // tau
	SubdomainCubes      int     // S

	ParticleAABB *geom.AABB // optional clip region

	MeshSmoothingIters    int
	MeshSmoothingWeights  bool
	MeshCleanup           CleanupMode
	Normals               NormalsMode
	NormalsSmoothingIters int

	MeshAABB           *geom.AABB // optional output clip
	MeshAABBClampVerts bool

	// GlobalDensitySync, when true, computes each owned particle's density
	// once in a global pass and carries the value along with ghost copies,
	// instead of the default of every subdomain recomputing ghost
	// densities independently.
	GlobalDensitySync bool

	// MaxWorkers bounds pipeline parallelism; 0 means "use GOMAXPROCS".
	MaxWorkers int

	Logger rlog.Logger
}

// Option mutates a Config during construction.
type Option func(*Config)

func WithIsoSurfaceThreshold(tau float32) Option {
	return func(c *Config) { c.IsoSurfaceThreshold = tau }
}

func WithSubdomainCubes(s int) Option {
	return func(c *Config) { c.SubdomainCubes = s }
}

func WithParticleAABB(box geom.AABB) Option {
	return func(c *Config) { c.ParticleAABB = &box }
}

func WithMeshSmoothing(iters int, weighted bool) Option {
	return func(c *Config) {
		c.MeshSmoothingIters = iters
		c.MeshSmoothingWeights = weighted
	}
}

func WithMeshCleanup(mode CleanupMode) Option {
	return func(c *Config) { c.MeshCleanup = mode }
}

func WithNormals(mode NormalsMode, smoothingIters int) Option {
	return func(c *Config) {
		c.Normals = mode
		c.NormalsSmoothingIters = smoothingIters
	}
}

func WithMeshAABB(box geom.AABB, clampVerts bool) Option {
	return func(c *Config) {
		c.MeshAABB = &box
		c.MeshAABBClampVerts = clampVerts
	}
}

func WithGlobalDensitySync(enabled bool) Option {
	return func(c *Config) { c.GlobalDensitySync = enabled }
}

func WithMaxWorkers(n int) Option {
	return func(c *Config) { c.MaxWorkers = n }
}

func WithLogger(l rlog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// NewConfig builds a Config with sensible defaults (tau=0.6, S=64,
// cleanup=sliver-collapse, no smoothing, no normals) and applies opts on
// top.
func NewConfig(particleRadius, restDensity, smoothingLength, cubeSize float32, opts ...Option) Config {
	c := Config{
		ParticleRadius:      particleRadius,
		RestDensity:         restDensity,
		SmoothingLength:     smoothingLength,
		CubeSize:            cubeSize,
		IsoSurfaceThreshold: 0.6,
		SubdomainCubes:      64,
		MeshCleanup:         CleanupSliverCollapse,
		Logger:              rlog.NewNopLogger(),
	}
	for _, o := range opts {
		o(&c)
	}
	return c
}

// CompactSupportRadius returns 2*h*r, the SPH kernel's compact support
// radius.
func (c Config) CompactSupportRadius() float32 {
	return 2 * c.SmoothingLength * c.ParticleRadius
}

// VoxelEdge returns the MC cube edge length, Delta*r.
func (c Config) VoxelEdge() float32 {
	return c.CubeSize * c.ParticleRadius
}

// ParticleMass returns m_p = (4/3)*pi*r^3*rho0, the rest-volume mass every
// particle carries.
func (c Config) ParticleMass() float32 {
	const fourThirdsPi = 4.0 / 3.0 * 3.14159265358979323846
	return float32(fourThirdsPi) * c.ParticleRadius * c.ParticleRadius * c.ParticleRadius * c.RestDensity
}

// Validate checks the configuration for invalid parameters before any
// particle is touched.
func (c Config) Validate() *ReconstructionError {
	if c.ParticleRadius <= 0 {
		return newErr(ErrConfigInvalid, "particle_radius must be > 0, got %v", c.ParticleRadius)
	}
	if c.RestDensity <= 0 {
		return newErr(ErrConfigInvalid, "rest_density must be > 0, got %v", c.RestDensity)
	}
	if c.SmoothingLength <= 0 {
		return newErr(ErrConfigInvalid, "smoothing_length must be > 0, got %v", c.SmoothingLength)
	}
	if c.CubeSize <= 0 {
		return newErr(ErrConfigInvalid, "cube_size must be > 0, got %v", c.CubeSize)
	}
	if c.SubdomainCubes <= 0 || c.SubdomainCubes > 256 {
		return newErr(ErrConfigInvalid, "subdomain_cubes must be in (0, 256], got %d", c.SubdomainCubes)
	}
	if c.ParticleAABB != nil && !c.ParticleAABB.Valid() {
		return newErr(ErrConfigInvalid, "particle_aabb min must be < max on every axis")
	}
	if c.MeshAABB != nil && !c.MeshAABB.Valid() {
		return newErr(ErrConfigInvalid, "mesh_aabb min must be < max on every axis")
	}
	if c.MeshSmoothingIters < 0 {
		return newErr(ErrConfigInvalid, "mesh_smoothing_iters must be >= 0, got %d", c.MeshSmoothingIters)
	}
	if c.NormalsSmoothingIters < 0 {
		return newErr(ErrConfigInvalid, "normals_smoothing_iters must be >= 0, got %d", c.NormalsSmoothingIters)
	}
	return nil
}

// yamlConfig mirrors the recognized configuration grammar for YAML
// loading; fields absent from the document keep NewConfig's defaults.
type yamlConfig struct {
	ParticleRadius        float32  `yaml:"particle_radius"`
	RestDensity           float32  `yaml:"rest_density"`
	SmoothingLength       float32  `yaml:"smoothing_length"`
	CubeSize              float32  `yaml:"cube_size"`
	IsoSurfaceThreshold   *float32 `yaml:"iso_surface_threshold"`
	SubdomainCubes        *int     `yaml:"subdomain_cubes"`
	MeshSmoothingIters    int      `yaml:"mesh_smoothing_iters"`
	MeshSmoothingWeights  bool     `yaml:"mesh_smoothing_weights"`
	MeshCleanup           string   `yaml:"mesh_cleanup"`
	DecimateBarnacles     bool     `yaml:"decimate_barnacles"`
	Normals               string   `yaml:"normals"`
	SPHNormals            bool     `yaml:"sph_normals"`
	NormalsSmoothingIters int      `yaml:"normals_smoothing_iters"`
	GlobalDensitySync     bool     `yaml:"octree_global_density"`
	ParticleAABBMin       *[3]float32 `yaml:"particle_aabb_min"`
	ParticleAABBMax       *[3]float32 `yaml:"particle_aabb_max"`
	MeshAABBMin           *[3]float32 `yaml:"mesh_aabb_min"`
	MeshAABBMax           *[3]float32 `yaml:"mesh_aabb_max"`
	MeshAABBClampVerts    bool     `yaml:"mesh_aabb_clamp_verts"`
}

// LoadConfigYAML parses the recognized configuration grammar from a YAML
// document, for callers that keep reconstruction parameters in a file
// alongside particle data.
func LoadConfigYAML(r io.Reader) (Config, error) {
	var yc yamlConfig
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&yc); err != nil {
		return Config{}, wrapErr(ErrConfigInvalid, err, "decode config yaml")
	}

	var opts []Option
	if yc.IsoSurfaceThreshold != nil {
		opts = append(opts, WithIsoSurfaceThreshold(*yc.IsoSurfaceThreshold))
	}
	if yc.SubdomainCubes != nil {
		opts = append(opts, WithSubdomainCubes(*yc.SubdomainCubes))
	}
	if yc.ParticleAABBMin != nil && yc.ParticleAABBMax != nil {
		opts = append(opts, WithParticleAABB(geom.AABB{
			Min: mgl32.Vec3(*yc.ParticleAABBMin),
			Max: mgl32.Vec3(*yc.ParticleAABBMax),
		}))
	}
	if yc.MeshSmoothingIters > 0 {
		opts = append(opts, WithMeshSmoothing(yc.MeshSmoothingIters, yc.MeshSmoothingWeights))
	}
	switch yc.MeshCleanup {
	case "barnacles":
		opts = append(opts, WithMeshCleanup(CleanupBarnacleDecimation))
	case "none":
		opts = append(opts, WithMeshCleanup(CleanupNone))
	}
	if yc.DecimateBarnacles {
		opts = append(opts, WithMeshCleanup(CleanupBarnacleDecimation))
	}
	normalsMode := NormalsNone
	switch {
	case yc.SPHNormals:
		normalsMode = NormalsSPHGradient
	case yc.Normals == "on" || yc.Normals == "true":
		normalsMode = NormalsAreaWeighted
	}
	if normalsMode != NormalsNone || yc.NormalsSmoothingIters > 0 {
		opts = append(opts, WithNormals(normalsMode, yc.NormalsSmoothingIters))
	}
	if yc.MeshAABBMin != nil && yc.MeshAABBMax != nil {
		opts = append(opts, WithMeshAABB(geom.AABB{
			Min: mgl32.Vec3(*yc.MeshAABBMin),
			Max: mgl32.Vec3(*yc.MeshAABBMax),
		}, yc.MeshAABBClampVerts))
	}
	if yc.GlobalDensitySync {
		opts = append(opts, WithGlobalDensitySync(true))
	}

	return NewConfig(yc.ParticleRadius, yc.RestDensity, yc.SmoothingLength, yc.CubeSize, opts...), nil
}
