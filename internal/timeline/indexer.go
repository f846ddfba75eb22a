// Package timeline maps calendar time onto the discrete period buckets that
// become the nested cube layers of a scene.
package timeline

import (
	"fmt"
	"time"

	"github.com/ppiankov/slangspace/internal/model"
)

// Indexer converts timestamps into period indices and derives per-period
// cube geometry. It is immutable and safe for concurrent use.
type Indexer struct {
	start           int // start year*12 + start month
	monthsPerPeriod int
	total           int
	inner, outer    float64
	twist           float64
}

// New builds an Indexer from timeline settings
func New(cfg model.TimelineConfig) *Indexer {
	mpp := cfg.MonthsPerPeriod
	if mpp <= 0 {
		mpp = 1
	}

	start := cfg.StartYear*12 + cfg.StartMonth
	end := cfg.EndYear*12 + cfg.EndMonth

	total := 1
	if span := end - start; span > 0 {
		total = (span + mpp - 1) / mpp
	}

	return &Indexer{
		start:           start,
		monthsPerPeriod: mpp,
		total:           total,
		inner:           cfg.InnerCubeSize,
		outer:           cfg.OuterCubeSize,
		twist:           cfg.CubeTwist,
	}
}

// TotalPeriods returns the number of buckets between the epoch and the horizon
func (ix *Indexer) TotalPeriods() int {
	return ix.total
}

// PeriodIndex returns the bucket for t, clamped into [0, TotalPeriods-1]
func (ix *Indexer) PeriodIndex(t time.Time) int {
	t = t.UTC()
	months := t.Year()*12 + int(t.Month())

	diff := months - ix.start
	idx := diff / ix.monthsPerPeriod
	if diff < 0 {
		// floor, not truncation
		idx = (diff - ix.monthsPerPeriod + 1) / ix.monthsPerPeriod
	}

	return ix.Clamp(idx)
}

// Clamp limits a period index to the configured range
func (ix *Indexer) Clamp(p int) int {
	if p < 0 {
		return 0
	}
	if p > ix.total-1 {
		return ix.total - 1
	}
	return p
}

// ClusterPeriodIndex returns the bucket of the average member timestamp.
// Clusters without any timestamped comment land in the newest bucket.
func (ix *Indexer) ClusterPeriodIndex(comments []model.Comment) int {
	var sum int64
	n := int64(0)
	for _, c := range comments {
		ts, ok := c.Timestamp()
		if !ok {
			continue
		}
		sum += ts.UnixMilli()
		n++
	}

	if n == 0 {
		return ix.total - 1
	}

	return ix.PeriodIndex(time.UnixMilli(sum / n))
}

// CubeSize interpolates the cube edge length between the inner and outer size
func (ix *Indexer) CubeSize(p int) float64 {
	if ix.total <= 1 {
		return ix.inner
	}
	p = ix.Clamp(p)
	frac := float64(p) / float64(ix.total-1)
	return ix.inner + (ix.outer-ix.inner)*frac
}

// CubeRotation returns the scalar twist of a period's cube group
func (ix *Indexer) CubeRotation(p int) float64 {
	return float64(p) * ix.twist
}

// PeriodStart returns the first month of a bucket as (year, month)
func (ix *Indexer) PeriodStart(p int) (int, int) {
	months := ix.start + p*ix.monthsPerPeriod
	return (months - 1) / 12, (months-1)%12 + 1
}

// PeriodLabel formats the bucket start as "YYYY.M"
func (ix *Indexer) PeriodLabel(p int) string {
	year, month := ix.PeriodStart(p)
	return fmt.Sprintf("%d.%d", year, month)
}
