// Package secret resolves credentials referenced from configuration, such
// as the API keys and JWT signing secret that guard health details.
//
// Values support strict environment expansion (see ExpandEnvStrict) and
// whole-value references with the prefix "secretref:":
//
//	api_key: ${HEALTH_API_KEY}
//	api_key: secretref:env:HEALTH_API_KEY
//	hmac_secret: secretref:file:/var/run/secrets/health/jwt
package secret
