package storage

// PrefixDB namespaces an inner DB. An explicitly configured cache path may
// be shared by several networks, so each network gets its own key prefix.
type PrefixDB struct {
	inner  DB
	prefix []byte
}

// NewPrefixDB wraps inner so every key is stored under prefix.
func NewPrefixDB(inner DB, prefix []byte) *PrefixDB {
	return &PrefixDB{inner: inner, prefix: append([]byte{}, prefix...)}
}

func (p *PrefixDB) key(k []byte) []byte {
	out := make([]byte, 0, len(p.prefix)+len(k))
	return append(append(out, p.prefix...), k...)
}

func (p *PrefixDB) Get(key []byte) ([]byte, error) { return p.inner.Get(p.key(key)) }

func (p *PrefixDB) Put(key, value []byte) error { return p.inner.Put(p.key(key), value) }

func (p *PrefixDB) PutBatch(pairs []Pair) error {
	scoped := make([]Pair, len(pairs))
	for i, pr := range pairs {
		scoped[i] = Pair{Key: p.key(pr.Key), Value: pr.Value}
	}
	return p.inner.PutBatch(scoped)
}

func (p *PrefixDB) Delete(key []byte) error { return p.inner.Delete(p.key(key)) }

// ForEach strips the namespace from the keys it passes to fn.
func (p *PrefixDB) ForEach(prefix []byte, fn func(key, value []byte) error) error {
	return p.inner.ForEach(p.key(prefix), func(key, value []byte) error {
		return fn(key[len(p.prefix):], value)
	})
}

// DropPrefix only reaches keys inside the namespace. An empty prefix
// clears the whole namespace.
func (p *PrefixDB) DropPrefix(prefix []byte) error {
	return p.inner.DropPrefix(p.key(prefix))
}

// Close is a no-op; the inner DB is closed by its owner.
func (p *PrefixDB) Close() error { return nil }
