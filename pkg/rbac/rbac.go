// Package rbac holds the ownership capability check shared by every
// resource in the system: a record may be read or mutated by its owner
// or by an admin, and by nobody else.
package rbac

// CanModify reports whether the actor may access a resource owned by ownerID.
func CanModify(actorID int, actorIsAdmin bool, ownerID int) bool {
	return actorIsAdmin || actorID == ownerID
}
