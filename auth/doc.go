// Package auth decides who may see component details of a health endpoint.
//
// Requests are authenticated with an API key (X-API-Key header, keys stored
// as SHA-256 hashes) or a JWT bearer token, or a CompositeAuthenticator of
// both. RequestAuthorizer turns an Authenticator into the check expected by
// health.WithAuthorizer:
//
//	store := auth.NewMemoryAPIKeyStore()
//	_ = store.AddKey("ops", os.Getenv("HEALTH_API_KEY"), "ops", "health:details")
//	authn := auth.NewAPIKeyAuthenticator(auth.APIKeyConfig{}, store)
//
//	handler := health.Handler(endpoint, health.DefaultGroup,
//		health.WithShowDetails(health.ShowDetailsWhenAuthorized),
//		health.WithAuthorizer(auth.RequestAuthorizer(authn, "health:details")),
//	)
package auth
