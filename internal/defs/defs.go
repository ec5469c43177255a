package defs

// Param is a single declared parameter of an event or a function
// overload (spec §3 "Defs entities").
type Param struct {
	Name    string
	Type    string
	Default string // only meaningful for function parameters
	Doc     string
}

// Constant is a built-in LSL constant.
type Constant struct {
	Name       string
	Type       string
	Value      string
	Deprecated bool
	Doc        string
	Wiki       string
}

// Event is a built-in LSL event signature.
type Event struct {
	Name   string
	Params []Param
	Doc    string
}

// Overload is one signature of a possibly-overloaded built-in function.
type Overload struct {
	Returns    string
	Params     []Param
	Deprecated bool
	Doc        string
	Wiki       string
}

// Function is the sum type named in spec §9: a name mapping to one or
// more Overloads.
type Function struct {
	Name      string
	Overloads []Overload
}

// AnyDeprecated reports whether any overload of fn is deprecated (spec
// §4.5 rule 7: "+ deprecated if any overload is deprecated").
func (fn *Function) AnyDeprecated() bool {
	for _, o := range fn.Overloads {
		if o.Deprecated {
			return true
		}
	}

	return false
}

// ByArity returns the overloads of fn accepting exactly argc arguments.
func (fn *Function) ByArity(argc int) []Overload {
	var out []Overload

	for _, o := range fn.Overloads {
		if len(o.Params) == argc {
			out = append(out, o)
		}
	}

	return out
}

// Defs is the immutable, concurrency-safe LSL knowledge base. All maps
// are built once in Load/build and never mutated afterward, so a *Defs
// may be shared across pipeline instances running on different
// goroutines without synchronization (spec §5).
type Defs struct {
	Version  string
	Types    []string
	Keywords []string

	types     map[string]bool
	keywords  map[string]bool
	constants map[string]Constant
	events    map[string]Event
	functions map[string]*Function
}

// IsType reports whether name is one of the closed set of built-in LSL
// types (spec §3: integer, float, string, key, vector, rotation, list,
// void).
func (d *Defs) IsType(name string) bool {
	return d.types[name]
}

// IsKeyword reports whether name is a reserved keyword.
func (d *Defs) IsKeyword(name string) bool {
	return d.keywords[name]
}

// Constant looks up a built-in constant by name.
func (d *Defs) Constant(name string) (Constant, bool) {
	c, ok := d.constants[name]
	return c, ok
}

// Event looks up a built-in event signature by name.
func (d *Defs) Event(name string) (Event, bool) {
	e, ok := d.events[name]
	return e, ok
}

// Function looks up a built-in function (with all its overloads) by
// name.
func (d *Defs) Function(name string) (*Function, bool) {
	fn, ok := d.functions[name]
	return fn, ok
}

// IsDeprecated reports whether name is a built-in with at least one
// deprecated overload, or a deprecated constant.
func (d *Defs) IsDeprecated(name string) bool {
	if fn, ok := d.functions[name]; ok {
		return fn.AnyDeprecated()
	}

	if c, ok := d.constants[name]; ok {
		return c.Deprecated
	}

	return false
}

// FunctionsByArity returns the overloads of the named built-in function
// that accept exactly argc arguments, supporting a future signature-help
// collaborator (spec §9).
func (d *Defs) FunctionsByArity(name string, argc int) []Overload {
	fn, ok := d.functions[name]
	if !ok {
		return nil
	}

	return fn.ByArity(argc)
}
