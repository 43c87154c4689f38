package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Lexical.
	LexInfo               Code = 1000
	LexUnknownChar        Code = 1001
	LexUnterminatedString Code = 1002
	LexBadNumber          Code = 1003

	// Syntactic (the reduced re-parse grammar).
	SynInfo            Code = 2000
	SynUnexpectedToken Code = 2001
	SynExpectType      Code = 2002
	SynExpectExpr      Code = 2003
	SynExpectIdent     Code = 2004
	SynUnclosedAngle   Code = 2005
	SynUnclosedParen   Code = 2006
	SynUnclosedBracket Code = 2007

	// Template instantiation.
	TplInfo                    Code = 3000
	TplUnresolvedName          Code = 3001
	TplArityMismatch           Code = 3002
	TplAmbiguousSpecialization Code = 3003
	TplNoViableCandidate       Code = 3004
	TplRecursionLimit          Code = 3005
	TplEmptyFold               Code = 3006
	TplPackUnknown             Code = 3007
	TplConstEval               Code = 3008
	TplConstraintUnsatisfied   Code = 3009
	TplDependentArgument       Code = 3010
	TplDuplicateInstantiation  Code = 3011
	TplBadValueArgument        Code = 3012
	TplLayoutFailed            Code = 3013
	TplDeferredMemberMissing   Code = 3014
)

func (c Code) String() string {
	switch {
	case c >= 3000 && c < 4000:
		return fmt.Sprintf("TPL%04d", uint16(c))
	case c >= 2000 && c < 3000:
		return fmt.Sprintf("SYN%04d", uint16(c))
	case c >= 1000 && c < 2000:
		return fmt.Sprintf("LEX%04d", uint16(c))
	default:
		return fmt.Sprintf("QZ%04d", uint16(c))
	}
}
