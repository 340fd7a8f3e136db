package service

// Actor identifies who is making a request. It is resolved from the
// session by the HTTP layer and passed explicitly into every operation
// that needs an ownership decision.
type Actor struct {
	ID      int
	IsAdmin bool
}
