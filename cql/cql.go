// Package cql parses term expressions such as
//
//	Position, [in] Velocity, !Frozen, ?Health, Mass(#12)
//
// into a flat list of terms. Each term names a component and may carry an
// access prefix, a not (!) or optional (?) operator, and a fixed source
// entity written as (#id). Resolving names to component IDs is left to the
// caller.
package cql

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/rotisserie/eris"
)

// Expression is a comma separated list of terms.
type Expression struct {
	Terms []*Term `@@ ( "," @@ )*`
}

type Term struct {
	Access   string  `( "[" @( "in" | "out" | "inout" | "none" ) "]" )?`
	Not      bool    `( @"!"`
	Optional bool    `| @"?" )?`
	Name     string  `@Ident`
	Source   *Source `( "(" @@ ")" )?`
}

// Source is a fixed entity the term is matched on instead of the iterated
// entity.
type Source struct {
	ID uint32 `"#" @Int`
}

func (t *Term) String() string {
	var sb strings.Builder
	if t.Access != "" {
		sb.WriteString("[" + t.Access + "] ")
	}
	if t.Not {
		sb.WriteByte('!')
	} else if t.Optional {
		sb.WriteByte('?')
	}
	sb.WriteString(t.Name)
	if t.Source != nil {
		sb.WriteString("(#" + strconv.FormatUint(uint64(t.Source.ID), 10) + ")")
	}
	return sb.String()
}

func (e *Expression) String() string {
	out := make([]string, 0, len(e.Terms))
	for _, t := range e.Terms {
		out = append(out, t.String())
	}
	return strings.Join(out, ", ")
}

var internalCQLParser = participle.MustBuild[Expression]()

// Parse parses expr into its terms.
func Parse(expr string) ([]*Term, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, eris.New("empty term expression")
	}
	e, err := internalCQLParser.ParseString("", expr)
	if err != nil {
		return nil, eris.Wrapf(err, "parse term expression %q", expr)
	}
	return e.Terms, nil
}
