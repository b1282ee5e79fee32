package identity

// Book maps email addresses to identities for a single event, keeping the
// order in which addresses were first seen.
type Book struct {
	order   []string
	entries map[string]Identity
}

// NewBook creates an empty Book.
func NewBook() *Book {
	return &Book{entries: make(map[string]Identity)}
}

// Get returns the identity recorded for email. It is safe on a nil Book.
func (b *Book) Get(email string) (Identity, bool) {
	if b == nil {
		return Identity{}, false
	}
	id, ok := b.entries[email]
	return id, ok
}

// Upsert records id. An existing entry is replaced only when id's name was
// taken from explicit metadata; inherited and synthesized names never
// overwrite. It reports whether the book changed.
func (b *Book) Upsert(id Identity) bool {
	if _, ok := b.entries[id.Email]; !ok {
		b.order = append(b.order, id.Email)
		b.entries[id.Email] = id
		return true
	}
	if !id.Source.Explicit() {
		return false
	}
	b.entries[id.Email] = id
	return true
}

// Len returns the number of distinct addresses.
func (b *Book) Len() int {
	if b == nil {
		return 0
	}
	return len(b.order)
}

// Identities returns the entries in first-seen order.
func (b *Book) Identities() []Identity {
	if b == nil {
		return nil
	}
	out := make([]Identity, 0, len(b.order))
	for _, email := range b.order {
		out = append(out, b.entries[email])
	}
	return out
}
