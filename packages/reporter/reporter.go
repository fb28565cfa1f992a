package reporter

import (
	"context"
	"crypto/md5"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/abdul-hamid-achik/assertkit/packages/db"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// DefaultFrequency is the minimum delay between two batch inserts.
	DefaultFrequency = time.Second
	// DefaultBatchSize is the maximum number of results written per batch.
	DefaultBatchSize = 500
)

// Options configures a Reporter.
type Options struct {
	// DBURL is a connection string such as sqlite://results.db.
	DBURL string
	// DBConfig is a YAML file describing the database; used when DBURL is empty.
	DBConfig string
	// BuildInfo is the JSON build description (see ParseBuildInfo).
	BuildInfo string
	// Frequency is the minimum delay between inserts. Zero selects
	// DefaultFrequency; a negative value disables throttling.
	Frequency time.Duration
	// BatchSize caps the number of results written together.
	BatchSize int
	// RunnerID is stored with results that do not carry their own.
	RunnerID string
	Logger   *zap.Logger
}

// Enabled reports whether a database was configured at all.
func (o Options) Enabled() bool {
	return o.DBURL != "" || o.DBConfig != ""
}

// ConnectionString resolves the database connection string from DBURL or DBConfig.
func (o Options) ConnectionString() (string, error) {
	if o.DBURL != "" {
		return o.DBURL, nil
	}
	if o.DBConfig != "" {
		return db.LoadConfigFile(o.DBConfig)
	}
	return "", errors.New("no reporting database configured")
}

// Method identifies a test.
type Method struct {
	Package string
	Suite   string
	Name    string
}

func (m Method) String() string {
	if m.Suite == "" {
		return m.Package + "." + m.Name
	}
	return m.Package + "." + m.Suite + "." + m.Name
}

// Result is one finished test execution.
type Result struct {
	Method Method
	// Failure holds the failure output, last line being the error message.
	// Empty for passing tests.
	Failure     []string
	EndTime     time.Time
	RunTime     time.Duration
	RunnerID    string
	PreviousRun *Result
}

// Passed reports whether the result carries no failure.
func (r *Result) Passed() bool {
	return len(r.Failure) == 0
}

// Reporter writes results of one build to the database.
type Reporter struct {
	client    *db.Client
	logger    *zap.Logger
	buildID   int64
	startTime time.Time
	batchSize int
	runnerID  string
	limiter   *rate.Limiter

	testIDs map[Method]int64 // owned by the worker after New returns

	queue   chan *Result
	pending sync.WaitGroup
	ok      atomic.Bool

	cancel context.CancelFunc
	done   chan struct{}
}

// New connects to the configured database, creates the schema if needed,
// inserts the build row and starts the background writer.
func New(ctx context.Context, opts Options) (*Reporter, error) {
	info, err := ParseBuildInfo(opts.BuildInfo)
	if err != nil {
		return nil, err
	}

	connStr, err := opts.ConnectionString()
	if err != nil {
		return nil, err
	}
	client, err := db.NewClient(connStr)
	if err != nil {
		return nil, err
	}

	r, err := newReporter(ctx, client, info, opts)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	return r, nil
}

func newReporter(ctx context.Context, client *db.Client, info *BuildInfo, opts Options) (*Reporter, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	frequency := opts.Frequency
	if frequency == 0 {
		frequency = DefaultFrequency
	}
	limit := rate.Inf
	if frequency > 0 {
		limit = rate.Every(frequency)
	}
	runnerID := opts.RunnerID
	if runnerID == "" {
		runnerID = uuid.New().String()
	}

	if _, err := client.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	buildID, err := insertBuild(ctx, client, info)
	if err != nil {
		return nil, err
	}

	testIDs, err := loadTestIDs(ctx, client)
	if err != nil {
		return nil, err
	}

	workerCtx, cancel := context.WithCancel(context.Background())
	r := &Reporter{
		client:    client,
		logger:    logger.With(zap.Int64("build_id", buildID)),
		buildID:   buildID,
		startTime: time.Now(),
		batchSize: batchSize,
		runnerID:  runnerID,
		limiter:   rate.NewLimiter(limit, 1),
		testIDs:   testIDs,
		queue:     make(chan *Result, batchSize),
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	r.ok.Store(true)

	go r.run(workerCtx)

	r.logger.Debug("reporter started", zap.String("runner_id", runnerID))
	return r, nil
}

func insertBuild(ctx context.Context, client *db.Client, info *BuildInfo) (int64, error) {
	res, err := client.Exec(ctx,
		`INSERT INTO builds (buildbot, buildnumber, buildname, branch, revision) VALUES (?, ?, ?, ?, ?)`,
		info.Buildbot, info.BuildNumber, info.BuildName, info.Branch, info.Revision)
	if err != nil {
		return 0, fmt.Errorf("failed to create build row: %w", err)
	}
	return res.LastInsertId()
}

func loadTestIDs(ctx context.Context, client *db.Client) (map[Method]int64, error) {
	result, err := client.Query(ctx, `SELECT id, package, suite, name FROM tests`)
	if err != nil {
		return nil, fmt.Errorf("failed to load tests: %w", err)
	}
	ids := make(map[Method]int64, len(result.Rows))
	for _, row := range result.Rows {
		m := Method{
			Package: asString(row["package"]),
			Suite:   asString(row["suite"]),
			Name:    asString(row["name"]),
		}
		id, _ := row["id"].(int64)
		ids[m] = id
	}
	return ids, nil
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// BuildID returns the id of the build row created for this reporter.
func (r *Reporter) BuildID() int64 {
	return r.buildID
}

// Client returns the database client the reporter writes to.
func (r *Reporter) Client() *db.Client {
	return r.client
}

// TestCounts stores the number of tests expected in this build so progress
// can be computed.
func (r *Reporter) TestCounts(ctx context.Context, methodCount int) error {
	_, err := r.client.Exec(ctx, `UPDATE builds SET method_count = ? WHERE id = ?`, methodCount, r.buildID)
	return err
}

// TestComplete queues a result for writing. It may be called from any
// goroutine, but not concurrently with Report.
func (r *Reporter) TestComplete(result Result) {
	r.pending.Add(1)
	select {
	case r.queue <- &result:
	case <-r.done:
		r.pending.Done()
		r.logger.Warn("result dropped, reporter closed", zap.Stringer("test", result.Method))
	}
}

// Report waits until every queued result has been written, then records the
// build's end time and run time. It returns false if any insert failed.
func (r *Reporter) Report(ctx context.Context) (bool, error) {
	drained := make(chan struct{})
	go func() {
		r.pending.Wait()
		close(drained)
	}()

	select {
	case <-drained:
	case <-ctx.Done():
		return false, ctx.Err()
	}

	end := time.Now()
	_, err := r.client.Exec(ctx, `UPDATE builds SET end_time = ?, run_time = ? WHERE id = ?`,
		end.Unix(), end.Sub(r.startTime).Seconds(), r.buildID)
	if err != nil {
		return false, fmt.Errorf("failed to finalize build: %w", err)
	}
	return r.ok.Load(), nil
}

// Close stops the writer and closes the database. Results still queued are
// discarded; call Report first to flush them.
func (r *Reporter) Close() error {
	r.cancel()
	<-r.done
	return r.client.Close()
}

func (r *Reporter) run(ctx context.Context) {
	defer close(r.done)

	for {
		var batch []*Result

		// Block until there's a result available.
		select {
		case <-ctx.Done():
			return
		case res := <-r.queue:
			batch = append(batch, res)
		}

		if err := r.limiter.Wait(ctx); err != nil {
			r.release(len(batch))
			return
		}

		// Grab whatever else arrived while waiting.
	drain:
		for {
			select {
			case res := <-r.queue:
				batch = append(batch, res)
			default:
				break drain
			}
		}

		for start := 0; start < len(batch); start += r.batchSize {
			end := min(start+r.batchSize, len(batch))
			r.flush(ctx, batch[start:end])
		}
	}
}

func (r *Reporter) release(n int) {
	for i := 0; i < n; i++ {
		r.pending.Done()
	}
}

func (r *Reporter) flush(ctx context.Context, chunk []*Result) {
	defer r.release(len(chunk))

	if err := r.insertChunk(ctx, chunk); err != nil {
		r.logger.Error("exception while reporting results",
			zap.Int("results", len(chunk)),
			zap.Error(err))
		r.ok.Store(false)
		return
	}
	r.logger.Debug("reported results", zap.Int("results", len(chunk)))
}

func (r *Reporter) insertChunk(ctx context.Context, chunk []*Result) error {
	tx, err := r.client.DB().BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	// ids created inside a rolled back transaction must not be cached
	created := make(map[Method]int64)
	for _, res := range chunk {
		if _, err := r.insertRun(ctx, tx, res, created); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("%s: %w", res.Method, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	for m, id := range created {
		r.testIDs[m] = id
	}
	return nil
}

// insertRun stores res after its previous runs and returns its row id.
func (r *Reporter) insertRun(ctx context.Context, tx *sql.Tx, res *Result, created map[Method]int64) (int64, error) {
	var previous sql.NullInt64
	if res.PreviousRun != nil {
		id, err := r.insertRun(ctx, tx, res.PreviousRun, created)
		if err != nil {
			return 0, err
		}
		previous = sql.NullInt64{Int64: id, Valid: true}
	}

	testID, err := r.testID(ctx, tx, res.Method, created)
	if err != nil {
		return 0, err
	}
	failureID, err := failureID(ctx, tx, res.Failure)
	if err != nil {
		return 0, err
	}

	runnerID := res.RunnerID
	if runnerID == "" {
		runnerID = r.runnerID
	}
	endTime := res.EndTime
	if endTime.IsZero() {
		endTime = time.Now()
	}

	row, err := tx.ExecContext(ctx,
		`INSERT INTO test_results (test, failure, build, end_time, run_time, runner_id, previous_run)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		testID, failureID, r.buildID, endTime.Unix(), res.RunTime.Seconds(), runnerID, previous)
	if err != nil {
		return 0, err
	}
	return row.LastInsertId()
}

// testID returns the id of the tests row for m, inserting it if this test
// has never been reported.
func (r *Reporter) testID(ctx context.Context, tx *sql.Tx, m Method, created map[Method]int64) (int64, error) {
	if id, ok := r.testIDs[m]; ok {
		return id, nil
	}
	if id, ok := created[m]; ok {
		return id, nil
	}

	var id int64
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM tests WHERE package = ? AND suite = ? AND name = ?`,
		m.Package, m.Suite, m.Name).Scan(&id)
	switch {
	case err == nil:
	case errors.Is(err, sql.ErrNoRows):
		res, err := tx.ExecContext(ctx,
			`INSERT INTO tests (package, suite, name) VALUES (?, ?, ?)`,
			m.Package, m.Suite, m.Name)
		if err != nil {
			return 0, err
		}
		if id, err = res.LastInsertId(); err != nil {
			return 0, err
		}
	default:
		return 0, err
	}

	created[m] = id
	return id, nil
}

// failureID returns the id of the failures row matching the failure output,
// or NULL for a passing test.
func failureID(ctx context.Context, tx *sql.Tx, failure []string) (sql.NullInt64, error) {
	if len(failure) == 0 {
		return sql.NullInt64{}, nil
	}
	traceback := strings.Join(failure, "")
	hash := failureHash(traceback)

	var id int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM failures WHERE hash = ?`, hash).Scan(&id)
	switch {
	case err == nil:
		return sql.NullInt64{Int64: id, Valid: true}, nil
	case !errors.Is(err, sql.ErrNoRows):
		return sql.NullInt64{}, err
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO failures (hash, error, traceback) VALUES (?, ?, ?)`,
		hash, strings.TrimSpace(failure[len(failure)-1]), traceback)
	if err != nil {
		return sql.NullInt64{}, err
	}
	id, err = res.LastInsertId()
	if err != nil {
		return sql.NullInt64{}, err
	}
	return sql.NullInt64{Int64: id, Valid: true}, nil
}

func failureHash(traceback string) string {
	sum := md5.Sum([]byte(traceback))
	return hex.EncodeToString(sum[:])
}
