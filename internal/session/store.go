package session

import "context"

// Store keeps session states between requests. Load and Save must only be
// called while holding the lock returned by Lock for the same id.
type Store interface {
	Load(ctx context.Context, id string) (*State, error)
	Save(ctx context.Context, state *State) error
	Delete(ctx context.Context, id string) error
	Lock(ctx context.Context, id string) (unlock func(), err error)
}
