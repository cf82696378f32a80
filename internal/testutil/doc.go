// Package testutil provides in-memory stand-ins for the durable stores and
// small fixture builders shared by package tests.
//
// The fakes can be told to fail so tests can drive rollback and warning
// paths that a healthy SQLite file never takes.
package testutil
