// Package testdb provides SurrealDB test environments for integration tests.
//
// Each TestDB runs real queries against a real SurrealDB instance in its own
// namespace, with the repository's migrations applied, so tests see the
// actual unique email index and schema assertions.
//
//	func TestSomething(t *testing.T) {
//	    tdb := testdb.New(t) // skipped when SurrealDB is not reachable
//	    repo := repository.NewAccountRepository(tdb.DB)
//	    ...
//	}
//
// Connection settings come from TEST_DB_HOST, TEST_DB_PORT, TEST_DB_USER and
// TEST_DB_PASSWORD (defaults: localhost, 8000, root, root). The namespace is
// removed when the test finishes. Tests are skipped under -short.
package testdb
