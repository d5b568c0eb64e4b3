// Package model defines the account record and the RFC 9457 error shapes
// shared across the accounts API.
//
// Account.Hash carries the bcrypt hash and is excluded from JSON. Use
// Account.Public before handing an account to anything outside the
// service boundary.
package model
