package maintenance

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/qa-platform/fixturepool/domain"
)

// PoolReport aggregates one pool across every worker's processing list.
type PoolReport struct {
	Pool        string  `json:"pool"`
	Available   int64   `json:"available"`
	Processing  int64   `json:"processing"`
	Workers     int     `json:"workers"`
	Utilization float64 `json:"utilization"`
}

func (r PoolReport) Total() int64 { return r.Available + r.Processing }

// Report is a point-in-time view of every pool under the prefix, sorted by
// pool name.
type Report struct {
	Pools       []PoolReport `json:"pools"`
	Skipped     []string     `json:"skipped_keys,omitempty"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// Pool returns the report line for name.
func (r Report) Pool(name string) (PoolReport, bool) {
	for _, p := range r.Pools {
		if p.Pool == name {
			return p, true
		}
	}
	return PoolReport{}, false
}

// Collect scans all keys under the prefix and sums pool and processing
// list lengths per pool name. Keys under the prefix that do not hold a list
// are listed in Skipped.
func Collect(ctx context.Context, st Store) (Report, error) {
	keys, err := st.Keys(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("collect status: %w", err)
	}

	var skipped []string
	byPool := make(map[string]*PoolReport)
	for _, k := range keys {
		n, err := st.Len(ctx, k.Raw)
		if errors.Is(err, domain.ErrNotAList) {
			skipped = append(skipped, k.Raw)
			continue
		}
		if err != nil {
			return Report{}, fmt.Errorf("collect status: %w", err)
		}
		pr, ok := byPool[k.Pool]
		if !ok {
			pr = &PoolReport{Pool: k.Pool}
			byPool[k.Pool] = pr
		}
		if k.Processing {
			pr.Processing += n
			pr.Workers++
		} else {
			pr.Available += n
		}
	}

	sort.Strings(skipped)
	report := Report{Skipped: skipped, GeneratedAt: time.Now().UTC()}
	for _, pr := range byPool {
		if total := pr.Total(); total > 0 {
			pr.Utilization = float64(pr.Processing) / float64(total) * 100
		}
		report.Pools = append(report.Pools, *pr)
	}
	sort.Slice(report.Pools, func(i, j int) bool {
		return report.Pools[i].Pool < report.Pools[j].Pool
	})
	return report, nil
}
