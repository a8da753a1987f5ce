// Package session keeps one authenticated web session alive for the local process.
//
// A Resolver hands out the identity token carried by the session cookies. It tries
// the session already held in memory, then the persisted copy in a Store, and only
// then runs the LoginProcedure, persisting whatever the login produced.
//
// Cookie validity, token extraction, persistence and the remote login itself are
// separate collaborators (Validator, Extractor, Store, LoginProcedure) so each can
// be swapped or faked independently.
package session
