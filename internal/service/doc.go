// Package service implements account management and credential checks.
//
// AccountService validates input, hashes passwords with bcrypt and maps
// store outcomes onto the sentinel errors in errors.go. Handlers translate
// those sentinels to HTTP responses; nothing in this package knows about
// HTTP.
//
// The service declares the AccountRepository interface it needs, so the
// SurrealDB repository, its cached decorator and test mocks are
// interchangeable.
//
//	svc := service.NewAccountService(service.AccountServiceConfig{
//	    Repo:       repo,
//	    BcryptCost: 12,
//	})
//	if err := svc.Login(ctx, email, password); errors.Is(err, service.ErrInvalidCredentials) {
//	    // 401
//	}
package service
