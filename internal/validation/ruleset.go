package validation

// Ruleset names a group of field rules selected per operation.
type Ruleset string

const (
	UserCreate Ruleset = "user.create"
	UserUpdate Ruleset = "user.update"
)

type fieldKind int

const (
	kindString fieldKind = iota
	kindInteger
)

// fieldRule describes the checks applied to one payload field.
// Tags are go-playground/validator tags evaluated one at a time so that
// every failing constraint is reported, not only the first.
type fieldRule struct {
	Field    string
	Kind     fieldKind
	Required bool // false means "sometimes": only checked when present
	Tags     []string
	Unique   bool
}

var rulesets = map[Ruleset][]fieldRule{
	UserCreate: {
		{Field: "name", Kind: kindString, Required: true, Tags: []string{"max=255"}},
		{Field: "email", Kind: kindString, Required: true, Tags: []string{"email", "max=255"}, Unique: true},
		{Field: "age", Kind: kindInteger, Required: true, Tags: []string{"min=0", "max=2147483647"}},
	},
	UserUpdate: {
		{Field: "name", Kind: kindString, Tags: []string{"max=255"}},
		{Field: "email", Kind: kindString, Tags: []string{"email", "max=255"}, Unique: true},
		{Field: "age", Kind: kindInteger, Tags: []string{"min=0", "max=2147483647"}},
	},
}
