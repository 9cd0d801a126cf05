// Package repository defines the record store used by the routing service.
//
// The RouteStore interface covers reads of routes and stops, the single-stop
// writes, and an Atomically primitive whose Tx carries the multi-statement
// writes used when a whole stop sequence is reconciled. The postgres
// subpackage implements it on GORM.
//
// # Ordering invariant
//
// No two stops of a route share an order index in any committed state. The
// postgres schema enforces it with a DEFERRABLE INITIALLY DEFERRED unique
// constraint, so writes inside one transaction may collide transiently and the
// check runs at commit.
package repository
