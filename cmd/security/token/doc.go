// Package token fingerprints identity tokens so they can be correlated in logs
// without ever being written out.
//
// Fingerprints are the first 12 hex chars of SHA-256(token), or of
// HMAC-SHA256(token, key) when KEEPER_TOKEN_HMAC_KEY is set. The keyed mode keeps
// short-lived tokens from being confirmed by anyone holding only the logs.
package token
