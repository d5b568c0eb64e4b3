// Package handler provides HTTP request handlers for the accounts API.
//
// AccountHandler serves every route. Register mounts them on a
// http.ServeMux using method patterns:
//
//	GET    /                          greeting
//	GET    /health                    store reachability
//	POST   /user/create               create an account
//	POST   /user/login                check a password
//	GET    /user/get/{id}             fetch by id
//	GET    /user/get/email/{email}    fetch by email
//	PUT    /user/update/{id}          replace an account
//	DELETE /user/delete/{id}          delete an account
//	GET    /user/getall               list accounts
//
// # Response Format
//
// Successful reads and writes return the account as JSON without the password
// hash. Confirmations use a {"message": ...} body via WriteMessage.
//
// Errors are RFC 9457 Problem Details produced by MapServiceError. One
// exception is kept for client compatibility: creating an account whose
// email is taken answers 200 with {"message": "User already exists"}.
//
// # Store Calls
//
// Service calls run on a context detached from client cancellation and
// bounded by the configured store timeout, so a disconnecting client
// cannot abandon a write halfway.
package handler
