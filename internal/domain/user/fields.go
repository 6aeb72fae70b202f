package user

// Fields is the allow-list of writable user attributes.
// A nil pointer means the attribute was not supplied and must not change.
type Fields struct {
	Name  *string
	Email *string
	Age   *int
}

// Empty reports whether no attribute was supplied.
func (f Fields) Empty() bool {
	return f.Name == nil && f.Email == nil && f.Age == nil
}

// Columns returns the supplied attributes keyed by column name.
func (f Fields) Columns() map[string]any {
	cols := make(map[string]any, 3)
	if f.Name != nil {
		cols["name"] = *f.Name
	}
	if f.Email != nil {
		cols["email"] = *f.Email
	}
	if f.Age != nil {
		cols["age"] = *f.Age
	}
	return cols
}
