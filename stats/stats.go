// Package stats collects the timing and per-subdomain statistics attached
// to a ReconstructionOutput and optionally marshals them to CSV for
// callers wiring up debug dashboards.
package stats

import (
	"bytes"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"
)

// StageTiming records how long one pipeline stage took.
type StageTiming struct {
	Stage    string        `csv:"stage"`
	Duration time.Duration `csv:"-"`
	Millis   float64       `csv:"duration_ms"`
}

// SubdomainStat records the size of one subdomain's working set and the
// patch it produced.
type SubdomainStat struct {
	I, J, K       int  `csv:"-"`
	Index         string `csv:"subdomain"`
	OwnedCount    int    `csv:"owned_particles"`
	GhostCount    int    `csv:"ghost_particles"`
	Sparse        bool   `csv:"sparse"`
	PatchVertices int    `csv:"patch_vertices"`
	PatchTriangles int   `csv:"patch_triangles"`
}

// Report is the statistics payload attached to ReconstructionOutput.
// RunID tags one reconstruction run so log lines and CSV exports from the
// same run can be correlated.
type Report struct {
	RunID      string
	Stages     []StageTiming
	Subdomains []SubdomainStat

	TotalParticles int
	ClippedOut     int
	TotalVertices  int
	TotalTriangles int
}

// NewReport starts a Report with a fresh run identity.
func NewReport() Report {
	return Report{RunID: uuid.NewString()}
}

// AddStage appends a timing entry.
func (r *Report) AddStage(stage string, d time.Duration) {
	r.Stages = append(r.Stages, StageTiming{Stage: stage, Duration: d, Millis: float64(d.Microseconds()) / 1000.0})
}

// MeanStageMillis returns the mean and standard deviation of per-stage
// durations in milliseconds.
func (r Report) MeanStageMillis() (mean, stddev float64) {
	if len(r.Stages) == 0 {
		return 0, 0
	}
	vals := make([]float64, len(r.Stages))
	for i, s := range r.Stages {
		vals[i] = s.Millis
	}
	mean = stat.Mean(vals, nil)
	stddev = stat.StdDev(vals, nil)
	return mean, stddev
}

// MarshalCSV serializes the per-stage timings as a CSV string, entirely in
// memory — the core never performs file I/O itself.
func (r Report) MarshalCSV() (string, error) {
	buf := &bytes.Buffer{}
	if err := gocsv.Marshal(r.Stages, buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// MarshalSubdomainsCSV serializes the per-subdomain statistics as CSV.
func (r Report) MarshalSubdomainsCSV() (string, error) {
	buf := &bytes.Buffer{}
	if err := gocsv.Marshal(r.Subdomains, buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
