package kensaku

import (
	"strconv"
	"strings"
)

// Access describes how a callback uses the data of a term.
type Access uint8

const (
	// AccessDefault is read-write for data terms and none for Not terms.
	AccessDefault Access = iota
	AccessIn
	AccessOut
	AccessInOut
	// AccessNone matches on presence only; the term exposes no data.
	AccessNone
)

func (a Access) String() string {
	switch a {
	case AccessDefault:
		return ""
	case AccessIn:
		return "in"
	case AccessOut:
		return "out"
	case AccessInOut:
		return "inout"
	case AccessNone:
		return "none"
	}
	return "invalid"
}

// Oper is the matching operator of a term.
type Oper uint8

const (
	// OperAnd requires the component.
	OperAnd Oper = iota
	// OperNot requires the component to be absent.
	OperNot
	// OperOptional matches with or without the component.
	OperOptional
)

func (o Oper) String() string {
	switch o {
	case OperAnd:
		return "and"
	case OperNot:
		return "not"
	case OperOptional:
		return "optional"
	}
	return "invalid"
}

// Term is one clause of a filter. A zero Src means the component is matched
// on the iterated entity itself; any other value names a fixed entity whose
// component is shared by every result.
type Term struct {
	ID     ComponentID
	Access Access
	Oper   Oper
	Src    Entity
}

// IsSelf reports whether t is matched on the iterated entity.
func (t Term) IsSelf() bool {
	return t.Src.IsZero()
}

// IsData reports whether t exposes component data to callbacks.
func (t Term) IsData() bool {
	return t.Oper != OperNot && t.Access != AccessNone
}

// TermView is a read-only view of one compiled term of a filter.
type TermView struct {
	term  Term
	name  string
	index int
}

// Term returns the term exactly as it was supplied at compile time.
func (v TermView) Term() Term { return v.term }
func (v TermView) Index() int { return v.index }
func (v TermView) ID() ComponentID { return v.term.ID }
func (v TermView) Name() string { return v.name }
func (v TermView) Access() Access { return v.term.Access }
func (v TermView) Oper() Oper { return v.term.Oper }
func (v TermView) Src() Entity { return v.term.Src }
func (v TermView) IsSelf() bool { return v.term.IsSelf() }
func (v TermView) IsData() bool { return v.term.IsData() }
func (v TermView) String() string { return formatTerm(v.term, v.name) }

// formatTerm renders t in the term expression syntax understood by the cql
// package, e.g. "[in] Position", "!Frozen", "?Mass(#3)".
func formatTerm(t Term, name string) string {
	var sb strings.Builder
	if t.Access != AccessDefault {
		sb.WriteByte('[')
		sb.WriteString(t.Access.String())
		sb.WriteString("] ")
	}
	switch t.Oper {
	case OperNot:
		sb.WriteByte('!')
	case OperOptional:
		sb.WriteByte('?')
	}
	sb.WriteString(name)
	if !t.IsSelf() {
		sb.WriteString("(#")
		sb.WriteString(strconv.FormatUint(uint64(t.Src.ID), 10))
		sb.WriteByte(')')
	}
	return sb.String()
}
