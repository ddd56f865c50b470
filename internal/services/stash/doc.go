// Package stash implements the Stash GraphQL client used to enumerate the
// local scene library and resolve StashDB identifiers.
package stash
