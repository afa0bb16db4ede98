// Package session holds the Session Store: who is logged in and the bearer
// token every ERP call uses.
//
// Operations:
//   - Login: returns a LoginResult (success, conflict or failure); only
//     transport errors are returned as errors. A conflict is resolved by
//     calling Login again with ConflictNewSession or ConflictInvalidatePrevious.
//   - Logout: best-effort backend notification, unconditional local clear.
//   - Validate: false (and cleared) on a missing, expired, rejected or
//     unverifiable token; true without mutation otherwise.
//
// Every mutation is committed and persisted under the store lock to the
// erp-auth-storage namespace, then published to subscribers. New restores
// the last snapshot without touching the network.
//
// Example Usage:
//
//	store := session.New(ctx, apiClient, storage, session.WithLogger(log))
//	apiClient.SetTokenSource(store)
//	res, err := store.Login(ctx, "admin", password, session.ConflictNone)
//	if res.Conflict() {
//	    res, err = store.Login(ctx, "admin", password, session.ConflictInvalidatePrevious)
//	}
package session
