// Package helpers provides HTTP and database assertions for end-to-end tests.
//
//	resp := helpers.NewRequest(t, http.MethodPost, "/user/create").
//	    WithBody(map[string]string{"email": "ann@x.io"}).
//	    Do(router)
//	helpers.AssertStatus(t, resp, http.StatusOK)
//	helpers.AssertAccountExists(t, tdb.DB, id)
package helpers
