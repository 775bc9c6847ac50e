// Package auth verifies bearer tokens and turns failures into classified
// faults: a missing or bad token is Unauthenticated (401), a valid token
// lacking a role is Unauthorized (403).
package auth
