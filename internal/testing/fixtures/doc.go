// Package fixtures provides account factories for integration tests.
//
// Accounts are written through the real repository so they carry
// store-assigned identifiers and timestamps:
//
//	f := fixtures.New(tdb.DB)
//	ann := f.CreateAccount(t)
//	bob := f.CreateAccount(t, fixtures.WithEmail("bob@x.io"), fixtures.WithPassword("pw"))
//
// Emails are randomized by default so tests sharing a namespace do not
// collide on the unique email index.
package fixtures
