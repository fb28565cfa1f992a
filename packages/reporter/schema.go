package reporter

const schema = `
CREATE TABLE IF NOT EXISTS tests (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	package VARCHAR(255),
	suite VARCHAR(255),
	name VARCHAR(255)
);
CREATE UNIQUE INDEX IF NOT EXISTS ix_individual_test ON tests (package, suite, name);

CREATE TABLE IF NOT EXISTS failures (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	error TEXT NOT NULL,
	traceback TEXT NOT NULL,
	hash VARCHAR(40) NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS builds (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	buildbot INTEGER NOT NULL,
	buildnumber INTEGER NOT NULL,
	buildname VARCHAR(40) NOT NULL,
	branch VARCHAR(255) NOT NULL,
	revision VARCHAR(40) NOT NULL,
	end_time INTEGER,
	run_time REAL,
	method_count INTEGER
);
CREATE INDEX IF NOT EXISTS ix_builds_branch ON builds (branch);
CREATE INDEX IF NOT EXISTS ix_builds_revision ON builds (revision);
CREATE INDEX IF NOT EXISTS ix_builds_end_time ON builds (end_time);
CREATE UNIQUE INDEX IF NOT EXISTS ix_individual_run ON builds (buildbot, buildname, buildnumber, revision);

CREATE TABLE IF NOT EXISTS test_results (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	test INTEGER NOT NULL,
	failure INTEGER,
	build INTEGER NOT NULL,
	end_time INTEGER NOT NULL,
	run_time REAL NOT NULL,
	runner_id VARCHAR(255),
	previous_run INTEGER
);
CREATE INDEX IF NOT EXISTS ix_test_results_test ON test_results (test);
CREATE INDEX IF NOT EXISTS ix_test_results_build ON test_results (build);
CREATE INDEX IF NOT EXISTS ix_build_test_failure ON test_results (build, test, failure);
`
