// Package repository implements account persistence on SurrealDB.
//
// AccountRepository owns the "account" table. Record ids are UUIDv7 values
// generated by the service process, and email uniqueness is enforced by a
// unique index (see migrations/001_account.surql). Index violations surface
// as database.ErrDuplicate.
//
// # Query Patterns
//
//   - Parameterized queries with $variable syntax
//   - type::thing() for record ids
//   - time::now() for server-side timestamps
//   - UPDATE ... WHERE and DELETE ... RETURN BEFORE so a missing record
//     matches nothing instead of being created
//
// Update and Delete report how many records they matched; callers decide
// whether zero is an error.
//
// # Caching
//
// CachedAccountRepository decorates any AccountStore with a read-through
// cache for id lookups. Only hash-free views are cached.
//
//	repo := NewAccountRepository(db)
//	account, err := repo.GetByEmail(ctx, "ann@x.io")
//	if err != nil {
//	    return err
//	}
//	if account == nil {
//	    // not found
//	}
package repository
