package cinit

import "strconv"

type Token int

const (
	EOF Token = iota
	NUMBER
	OPERATOR
	IDENT
)

type tokenInfo struct {
	typ Token
	num int64
	val string
}

func (t tokenInfo) text() string {
	switch t.typ {
	case NUMBER:
		return strconv.FormatInt(t.num, 10)
	case EOF:
		return "<end of expression>"
	default:
		return t.val
	}
}

// Environment resolves identifiers inside constant expressions. Lookups
// fall through to the parent environment when a name is absent.
type Environment struct {
	vars   map[string]int64
	parent *Environment
}

func NewEnv(parent *Environment) *Environment {
	return &Environment{
		vars:   make(map[string]int64),
		parent: parent,
	}
}

func (env *Environment) Define(name string, value int64) {
	env.vars[name] = value
}

func (env *Environment) Lookup(name string) (int64, bool) {
	if v, ok := env.vars[name]; ok {
		return v, true
	}
	if env.parent != nil {
		return env.parent.Lookup(name)
	}
	return 0, false
}

// DefaultEnv returns the fixed symbol table used when the caller does not
// supply one: TRUE and FALSE.
func DefaultEnv() *Environment {
	env := NewEnv(nil)
	env.Define("TRUE", 1)
	env.Define("FALSE", 0)
	return env
}
