// Package directory fetches users from the remote directory service.
//
// The listing endpoint (GET /users) is decoded strictly and mapped onto
// Remote records keeping only id, name, email and company name. A failed
// request, a non-2xx status or a malformed body is a single failure outcome
// reported as a *FetchError; callers never see partial results. Nothing is
// retried.
//
// The detail endpoint (GET /users/{id}) additionally returns phone, website
// and postal address for display.
package directory
