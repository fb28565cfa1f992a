package reporter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/abdul-hamid-achik/assertkit/packages/db"
)

// maxRunTimeMicros is the longest run time tracked by the percentiles.
const maxRunTimeMicros = 3_600_000_000

// ErrNoBuilds is returned by LatestBuildID on an empty database.
var ErrNoBuilds = errors.New("no builds recorded")

// Stats summarizes the results stored for one build.
type Stats struct {
	BuildID int64
	Total   int
	Passed  int
	Failed  int
	P50     time.Duration
	P95     time.Duration
	P99     time.Duration
	Max     time.Duration
	Mean    time.Duration
}

// FailedTest is a failing result of a build.
type FailedTest struct {
	Method  Method
	Error   string
	RunTime time.Duration
}

// LatestBuildID returns the id of the most recently created build.
func LatestBuildID(ctx context.Context, client *db.Client) (int64, error) {
	var id sql.NullInt64
	if err := client.DB().QueryRowContext(ctx, `SELECT MAX(id) FROM builds`).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to find latest build: %w", err)
	}
	if !id.Valid {
		return 0, ErrNoBuilds
	}
	return id.Int64, nil
}

// BuildStats computes pass/fail counts and run-time percentiles for a build.
func BuildStats(ctx context.Context, client *db.Client, buildID int64) (*Stats, error) {
	result, err := client.Query(ctx, `SELECT run_time, failure FROM test_results WHERE build = ?`, buildID)
	if err != nil {
		return nil, err
	}

	// 1us to 1h, 3 significant digits. Longer runs are recorded as 1h in the
	// percentiles; Max and Mean use the exact values.
	histogram := hdrhistogram.New(1, maxRunTimeMicros, 3)
	stats := &Stats{BuildID: buildID}
	var total, longest int64
	for _, row := range result.Rows {
		stats.Total++
		if row["failure"] == nil {
			stats.Passed++
		} else {
			stats.Failed++
		}
		seconds, _ := row["run_time"].(float64)
		micros := max(int64(seconds*1e6), 1)
		total += micros
		longest = max(longest, micros)
		if err := histogram.RecordValue(min(micros, maxRunTimeMicros)); err != nil {
			return nil, fmt.Errorf("failed to record run time: %w", err)
		}
	}

	if stats.Total > 0 {
		stats.P50 = time.Duration(histogram.ValueAtQuantile(50)) * time.Microsecond
		stats.P95 = time.Duration(histogram.ValueAtQuantile(95)) * time.Microsecond
		stats.P99 = time.Duration(histogram.ValueAtQuantile(99)) * time.Microsecond
		stats.Max = time.Duration(longest) * time.Microsecond
		stats.Mean = time.Duration(total/int64(stats.Total)) * time.Microsecond
	}
	return stats, nil
}

// FailedTests lists the failing results of a build, slowest first.
func FailedTests(ctx context.Context, client *db.Client, buildID int64) ([]FailedTest, error) {
	result, err := client.Query(ctx, `
		SELECT t.package, t.suite, t.name, f.error, r.run_time
		FROM test_results r
		JOIN tests t ON t.id = r.test
		JOIN failures f ON f.id = r.failure
		WHERE r.build = ?
		ORDER BY r.run_time DESC, r.id`, buildID)
	if err != nil {
		return nil, err
	}

	failed := make([]FailedTest, 0, len(result.Rows))
	for _, row := range result.Rows {
		seconds, _ := row["run_time"].(float64)
		failed = append(failed, FailedTest{
			Method: Method{
				Package: asString(row["package"]),
				Suite:   asString(row["suite"]),
				Name:    asString(row["name"]),
			},
			Error:   asString(row["error"]),
			RunTime: time.Duration(seconds * float64(time.Second)),
		})
	}
	return failed, nil
}
