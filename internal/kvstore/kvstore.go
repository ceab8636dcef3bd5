package kvstore

// KV exposes the hosted key-value primitives the entity store is built on.
//
// The contract deliberately separates the two ways a read can come back
// empty: (value, false, nil) means the key is absent, while a non-nil error
// means the store was unreachable. Callers decide whether to collapse the
// two; implementations never do it for them.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
	AddToSet(key, member string) error
	RemoveFromSet(key, member string) error
	SetMembers(key string) ([]string, error)
}
