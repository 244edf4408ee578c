// Package args adapts parser functions to flag.Value.
package args

// Adapter is a flag.Value holding a value parsed by its parser.
type Adapter[T interface{ String() string }] struct {
	value  T
	parser func(string) (T, error)
	isSet  bool
}

func (a *Adapter[T]) String() string {
	if !a.isSet {
		return ""
	}
	return a.value.String()
}

// Set parses s. On error, the value is left unchanged.
func (a *Adapter[T]) Set(s string) error {
	v, err := a.parser(s)
	if err != nil {
		return err
	}
	a.value = v
	a.isSet = true
	return nil
}

// Value returns the parsed value, or zero value of T when it has not been set.
func (a Adapter[T]) Value() T {
	return a.value
}

// IsSet tells whether the flag is given in command line.
func (a Adapter[T]) IsSet() bool {
	return a.isSet
}

// Parser creates an Adapter with the parser.
//
// Register it with flag.Var, like:
//
//	policy := args.Parser(recurring.ParsePolicy)
//	flag.Var(policy, "policy", "...")
func Parser[T interface{ String() string }](parser func(string) (T, error)) *Adapter[T] {
	return &Adapter[T]{parser: parser}
}
