// Package store holds the client-side state mirrored from the product API.
//
// Products and Cart are independent containers. Each is changed only by
// committing one of its mutation variants; every commit replaces the state
// value, builds fresh slices and increments a version, so a reader detects a
// change by comparing versions and never observes a half-applied mutation.
// Readers always receive copies.
package store
