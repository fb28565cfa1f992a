package reporter

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/assertkit/packages/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildStats(t *testing.T) {
	ctx := context.Background()
	r := newTestReporter(t, filepath.Join(t.TempDir(), "results.db"), Options{})

	for i, runTime := range []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 30 * time.Millisecond} {
		r.TestComplete(Result{
			Method:  Method{Package: "calc", Name: "TestFast" + string(rune('A'+i))},
			RunTime: runTime,
			EndTime: time.Now(),
		})
	}
	r.TestComplete(Result{
		Method:  Method{Package: "calc", Suite: "TestDiv", Name: "by_zero"},
		Failure: []string{"    div_test.go:9: division by zero\n"},
		RunTime: time.Second,
		EndTime: time.Now(),
	})
	ok, err := r.Report(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	stats, err := BuildStats(ctx, r.Client(), r.BuildID())
	require.NoError(t, err)

	assert.Equal(t, r.BuildID(), stats.BuildID)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 3, stats.Passed)
	assert.Equal(t, 1, stats.Failed)
	assert.InDelta(t, float64(20*time.Millisecond), float64(stats.P50), float64(100*time.Microsecond))
	assert.InDelta(t, float64(time.Second), float64(stats.P99), float64(time.Millisecond))
	assert.InDelta(t, float64(time.Second), float64(stats.Max), float64(time.Millisecond))
	assert.Greater(t, stats.Mean, 20*time.Millisecond)

	failed, err := FailedTests(ctx, r.Client(), r.BuildID())
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, Method{Package: "calc", Suite: "TestDiv", Name: "by_zero"}, failed[0].Method)
	assert.Equal(t, "div_test.go:9: division by zero", failed[0].Error)
	assert.Equal(t, time.Second, failed[0].RunTime)
}

func TestBuildStats_EmptyBuild(t *testing.T) {
	r := newTestReporter(t, filepath.Join(t.TempDir(), "results.db"), Options{})

	stats, err := BuildStats(context.Background(), r.Client(), r.BuildID())
	require.NoError(t, err)
	assert.Equal(t, &Stats{BuildID: r.BuildID()}, stats)
}

func TestLatestBuildID(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "results.db")

	client, err := db.NewClient("sqlite://" + path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	_, err = client.Exec(ctx, schema)
	require.NoError(t, err)

	_, err = LatestBuildID(ctx, client)
	assert.ErrorIs(t, err, ErrNoBuilds)

	first := newTestReporter(t, path, Options{})
	second := newTestReporter(t, path, Options{})

	id, err := LatestBuildID(ctx, client)
	require.NoError(t, err)
	assert.Equal(t, second.BuildID(), id)
	assert.Greater(t, id, first.BuildID())
}

func TestBuildStats_RunTimeBeyondHistogramRange(t *testing.T) {
	ctx := context.Background()
	r := newTestReporter(t, filepath.Join(t.TempDir(), "results.db"), Options{})

	r.TestComplete(Result{Method: Method{Package: "slow", Name: "TestQuick"}, RunTime: time.Second, EndTime: time.Now()})
	r.TestComplete(Result{Method: Method{Package: "slow", Name: "TestSoak"}, RunTime: 2 * time.Hour, EndTime: time.Now()})
	ok, err := r.Report(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	stats, err := BuildStats(ctx, r.Client(), r.BuildID())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 2*time.Hour, stats.Max)
	assert.Equal(t, (time.Second+2*time.Hour)/2, stats.Mean)
	assert.InDelta(t, float64(time.Hour), float64(stats.P99), float64(5*time.Second))
	assert.InDelta(t, float64(time.Second), float64(stats.P50), float64(time.Millisecond))
}
