package notes

import "time"

// Note is a single note. It is also the Entity handed to the dispatcher.
type Note struct {
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Author    string    `json:"author,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	stored bool
}

// IsNew reports whether the note has not been stored yet.
func (n *Note) IsNew() bool { return !n.stored }

// Reset clears the editable fields so a PUT replaces the note.
func (n *Note) Reset() {
	n.Title = ""
	n.Body = ""
}

// SetProperties applies slug, title and body values.
func (n *Note) SetProperties(props map[string]any) {
	for k, v := range props {
		s, ok := v.(string)
		if !ok {
			continue
		}
		switch k {
		case "slug":
			n.Slug = s
		case "title":
			n.Title = s
		case "body":
			n.Body = s
		}
	}
}

// List is a page of notes.
type List struct {
	Notes  []*Note `json:"notes"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}

// IsNew always reports false; a collection exists even when empty.
func (*List) IsNew() bool { return false }

// Reset is a no-op for collections.
func (*List) Reset() {}

// SetProperties is a no-op for collections.
func (*List) SetProperties(map[string]any) {}

func formValues(data map[string]any) map[string]any {
	out := make(map[string]any, 2)
	for _, k := range []string{"title", "body"} {
		if v, ok := data[k]; ok {
			out[k] = v
		}
	}
	return out
}
