// Package reporter stores test results in a SQL database.
//
// A Reporter belongs to one build. It records the build row when created,
// then accepts results from any goroutine through TestComplete. A single
// background worker batches the queued results and writes them, at most
// once per configured frequency and at most BatchSize rows per statement
// group. Report waits for the queue to drain and stamps the build with its
// end time and total run time.
//
// Schema:
//
//	tests         one row per (package, suite, name)
//	failures      one row per distinct failure, keyed by a hash of the traceback
//	builds        one row per reporting run
//	test_results  one row per executed test, linked to its test, build and failure
//
// A result may carry the run it retried (PreviousRun); previous runs are
// stored first and linked through test_results.previous_run.
package reporter
