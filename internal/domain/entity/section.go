package entity

// Section is one parsed unit of the knowledge file: a named block,
// optionally scoped to a property and a 2-letter locale, carrying
// key/value pairs, free text and bullet items.
type Section struct {
	Name     string
	Property string // empty = property-agnostic
	Lang     string // defaults to "it"
	KV       map[string]string
	Text     string
	Items    []string
}
