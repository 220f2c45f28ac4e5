package modlog

// Writer is the storage contract for one room's moderation log. The contract
// holds across backends:
//
//   - Setup is idempotent and allocates the backing resource once.
//   - Write is fire-and-forget. With no active resource the event is dropped
//     silently.
//   - Destroy releases the resource; a shared writer only detaches from it.
//   - Rename moves the backing resource only when the source exists and the
//     destination does not, updates the writer's room id unconditionally, and
//     re-runs setup when the writer had been set up before.
type Writer interface {
	// Shared reports whether this writer aliases a root room's resource.
	Shared() bool
	Setup() error
	Destroy() error
	// Rename reports whether the resource-level move happened.
	Rename(newID string) (bool, error)
	Write(e Event)
}
