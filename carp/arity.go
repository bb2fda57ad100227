package carp

import "strconv"

// Arity is the number of arguments an option consumes.
// Positive values are fixed counts; see None and Variadic for the others.
type Arity int

const (
	// Variadic consumes every contiguous plain argument that follows, possibly none.
	Variadic Arity = -1
	// None consumes nothing; the handler receives an empty slice.
	None Arity = 0
)

// Fixed returns an arity of exactly n arguments. Fixed(0) is None.
func Fixed(n int) Arity {
	if n < 0 {
		panic("carp: negative fixed arity " + strconv.Itoa(n))
	}
	return Arity(n)
}

// IsVariadic reports whether a is Variadic.
func (a Arity) IsVariadic() bool { return a == Variadic }

// Valid reports whether a is None, Variadic or a fixed count.
func (a Arity) Valid() bool { return a >= Variadic }

func (a Arity) String() string {
	switch {
	case a == Variadic:
		return "variadic"
	case a == None:
		return "none"
	case a > 0:
		return "fixed(" + strconv.Itoa(int(a)) + ")"
	default:
		return "invalid(" + strconv.Itoa(int(a)) + ")"
	}
}

// resolveArguments fills the callback buffer for an option with the given
// arity. A non-empty immediate value (the rest of a short cluster) counts as
// the first argument and does not move the cursor. Following tokens are taken
// only while they classify as plain arguments. It returns how many following
// tokens were consumed; the caller advances the cursor past them.
func (s *parseState) resolveArguments(arity Arity, immediate string) (int, *ParseError) {
	need := int(arity)
	if immediate != "" {
		s.callback.Push(immediate)
		need--
	}

	next := s.cur.head + 1
	consumed := 0

	if arity == Variadic {
		for next < s.cur.tail && Classify(s.cur.argv[next]) == TokenArgument {
			s.callback.Push(s.cur.argv[next])
			next++
			consumed++
		}
		return consumed, nil
	}

	for ; need > 0; need-- {
		if next >= s.cur.tail || Classify(s.cur.argv[next]) != TokenArgument {
			return 0, newParseError(ErrorTypeNotEnoughArguments, s.cur.token)
		}
		s.callback.Push(s.cur.argv[next])
		next++
		consumed++
	}
	return consumed, nil
}
