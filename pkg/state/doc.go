// Package state persists serialized option providers per scope and merges
// them back into hosts.
//
// A Store loads and saves one provider snapshot for one Ref. The Resolver
// loads the snapshots for several scopes, stacks them by priority and hands
// the merged provider to optproxy.NewHost. Snapshot IDs flow into
// optproxy.Layer, so Stack.Trace reports which stored snapshot supplied a
// value.
//
//	Store -> Resolver -> optproxy.Stack -> optproxy.Host
package state
