package carp

import (
	"strings"

	carpio "github.com/dzonerzy/go-carp/io"
	"github.com/dzonerzy/go-carp/internal/intern"
	"github.com/dzonerzy/go-carp/internal/pool"
	"github.com/dzonerzy/go-carp/internal/vector"
	"github.com/dzonerzy/go-carp/middleware"
)

// Parser dispatches options from an argument vector to the handlers of a
// Lookup. It holds only configuration and may be shared; every Parse call owns
// its own cursor and buffers.
type Parser struct {
	lookup       Lookup
	chain        middleware.MiddlewareChain
	handler      middleware.HandlerFunc
	logger       *carpio.Logger
	errorHandler *ErrorHandler
}

// NewParser creates a parser over lookup.
func NewParser(lookup Lookup) *Parser {
	p := &Parser{lookup: lookup}
	p.handler = p.invoke
	return p
}

// Use wraps every handler dispatch with the given middleware, outermost first.
func (p *Parser) Use(mw ...middleware.Middleware) *Parser {
	p.chain = p.chain.Use(mw...)
	p.handler = p.chain.Apply(p.invoke)
	return p
}

// WithLogger enables debug tracing through logger.
func (p *Parser) WithLogger(logger *carpio.Logger) *Parser {
	p.logger = logger
	return p
}

// WithErrorHandler post-processes parse errors, e.g. to add suggestions.
func (p *Parser) WithErrorHandler(eh *ErrorHandler) *Parser {
	p.errorHandler = eh
	return p
}

// Lookup returns the parser's option lookup.
func (p *Parser) Lookup() Lookup { return p.lookup }

// Result holds the residual arguments of a successful parse: every plain
// argument and every token after "--", in input order.
type Result struct {
	Args  []string
	Count int

	buf *vector.Vector
}

// Release frees the residual storage and zeroes the handle. It is safe to
// call more than once.
func (r *Result) Release() {
	if r == nil {
		return
	}
	if r.buf != nil {
		r.buf.Release()
		r.buf = nil
	}
	r.Args = nil
	r.Count = 0
}

// cursor is the position of one parse in its argument vector.
type cursor struct {
	argv  []string
	head  int
	tail  int
	token string
}

// record is the middleware.Dispatch handed to the handler chain. One record
// is reused for every dispatch of a parse.
type record struct {
	option string
	token  string
	args   []string
	param  any
	spec   *Spec
}

func (r *record) Option() string { return r.option }
func (r *record) Token() string  { return r.token }
func (r *record) Args() []string { return r.args }
func (r *record) Param() any     { return r.param }

// invoke is the innermost link of the handler chain. Middleware that
// substitutes its own Dispatch gets its option resolved again.
func (p *Parser) invoke(d middleware.Dispatch) error {
	if r, ok := d.(*record); ok {
		r.spec.Handler(r.param, r.args)
		return nil
	}
	spec, ok := p.lookup.Search(d.Option())
	if !ok {
		return &ParseError{Type: ErrorTypeUnknownOption, Token: d.Token(), Option: d.Option()}
	}
	spec.Handler(d.Param(), d.Args())
	return nil
}

type parseState struct {
	p        *Parser
	param    any
	cur      cursor
	callback *vector.Vector
	residual *vector.Vector
	rec      record
}

// Parse scans argv[1:] (argv[0] is the program name), dispatching options to
// their handlers with param, and returns the residual arguments. Any failure
// aborts the parse and is returned as a *ParseError; no handler runs for the
// failing token and no partial result is returned.
func (p *Parser) Parse(argv []string, param any) (*Result, error) {
	s := &parseState{
		p:        p,
		param:    param,
		cur:      cursor{argv: argv, head: 1, tail: len(argv)},
		callback: pool.GetVector(),
		residual: vector.New(vector.DefaultCapacity),
	}
	defer pool.PutVector(s.callback)

	if err := s.run(); err != nil {
		s.residual.Release()
		return nil, p.processError(err)
	}

	return &Result{Args: s.residual.Items(), Count: s.residual.Size(), buf: s.residual}, nil
}

func (p *Parser) processError(err *ParseError) error {
	if p.errorHandler != nil {
		if processed := p.errorHandler.ProcessError(err, p.lookup); processed != nil {
			err = processed
		}
	}
	p.debug("parse failed: %s", err.Error())
	return err
}

func (s *parseState) run() *ParseError {
	for s.cur.head < s.cur.tail {
		s.cur.token = s.cur.argv[s.cur.head]

		var (
			advance int
			err     *ParseError
		)
		switch Classify(s.cur.token) {
		case TokenShortOption:
			advance, err = s.parseShortOption()
		case TokenLongOption:
			advance, err = s.parseLongOption()
		case TokenSeparator:
			s.p.debug("separator at %d, %d residual tokens follow", s.cur.head, s.cur.tail-s.cur.head-1)
			for _, tok := range s.cur.argv[s.cur.head+1 : s.cur.tail] {
				s.residual.Push(tok)
			}
			s.cur.head = s.cur.tail
			return nil
		case TokenArgument:
			s.residual.Push(s.cur.token)
			advance = 1
		}
		if err != nil {
			return err
		}
		s.cur.head += advance
	}
	return nil
}

// parseShortOption walks a cluster like "-abc" or "-ofile". Zero-arity options
// dispatch immediately; the first option that takes arguments absorbs the
// rest of the cluster as its immediate value and ends the token.
func (s *parseState) parseShortOption() (int, *ParseError) {
	token := s.cur.token
	if len(token) == 1 {
		s.p.debug("token '-' has no option characters, skipping")
		return 1, nil
	}

	for i := 1; i < len(token); i++ {
		name := intern.Byte(token[i])
		spec, ok := s.p.lookup.Search(name)
		if !ok {
			return 0, &ParseError{Type: ErrorTypeUnknownOption, Token: token, Option: name}
		}

		if spec.Arity == None {
			if err := s.dispatch(name, spec); err != nil {
				return 0, err
			}
			continue
		}

		consumed, err := s.resolveArguments(spec.Arity, token[i+1:])
		if err != nil {
			err.Option = name
			return 0, err
		}
		if err := s.dispatch(name, spec); err != nil {
			return 0, err
		}
		return 1 + consumed, nil
	}
	return 1, nil
}

// parseLongOption handles "--name" and "--name=value". The immediate form is
// only accepted for options taking exactly one argument.
func (s *parseState) parseLongOption() (int, *ParseError) {
	token := s.cur.token
	name, immediate, hasValue := strings.Cut(token[2:], "=")

	if hasValue && immediate == "" {
		return 0, &ParseError{Type: ErrorTypeNotEnoughArguments, Token: token, Option: name}
	}

	spec, ok := s.p.lookup.Search(name)
	if !ok {
		return 0, &ParseError{Type: ErrorTypeUnknownOption, Token: token, Option: name}
	}

	if hasValue {
		if spec.Arity != Fixed(1) {
			return 0, &ParseError{Type: ErrorTypeLongOptionArgumentCount, Token: token, Option: name}
		}
		s.callback.Push(immediate)
		if err := s.dispatch(name, spec); err != nil {
			return 0, err
		}
		return 1, nil
	}

	consumed := 0
	if spec.Arity != None {
		var err *ParseError
		if consumed, err = s.resolveArguments(spec.Arity, ""); err != nil {
			err.Option = name
			return 0, err
		}
	}
	if err := s.dispatch(name, spec); err != nil {
		return 0, err
	}
	return 1 + consumed, nil
}

// dispatch runs the handler chain with the callback buffer and empties it.
func (s *parseState) dispatch(name string, spec *Spec) *ParseError {
	s.rec = record{
		option: name,
		token:  s.cur.token,
		args:   s.callback.Items(),
		param:  s.param,
		spec:   spec,
	}
	if s.p.logger != nil && s.p.logger.Enabled(carpio.LevelDebug) {
		s.p.logger.Debug("dispatch %s from '%s' with %d args %q", name, s.cur.token, len(s.rec.args), s.rec.args)
	}

	err := s.p.handler(&s.rec)
	s.callback.Reset()
	s.rec = record{}

	if err != nil {
		return &ParseError{Type: ErrorTypeHandler, Token: s.cur.token, Option: name, Cause: err}
	}
	return nil
}

func (p *Parser) debug(format string, args ...any) {
	if p.logger != nil && p.logger.Enabled(carpio.LevelDebug) {
		p.logger.Debug(format, args...)
	}
}
