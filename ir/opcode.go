package ir

import "fmt"

// Opcode is a p-code operator.
type Opcode int

const (
	OpCopy Opcode = iota
	OpLoad
	OpStore
	OpBranch
	OpCbranch
	OpBranchind
	OpCall
	OpCallind
	OpCallother
	OpReturn

	OpIntEqual
	OpIntNotEqual
	OpIntSless
	OpIntSlessEqual
	OpIntLess
	OpIntLessEqual
	OpIntZext
	OpIntSext
	OpIntAdd
	OpIntSub
	OpIntCarry
	OpIntScarry
	OpIntSborrow
	OpInt2Comp
	OpIntNegate
	OpIntXor
	OpIntAnd
	OpIntOr
	OpIntLeft
	OpIntRight
	OpIntSright
	OpIntMult
	OpIntDiv
	OpIntSdiv
	OpIntRem
	OpIntSrem

	OpBoolNegate
	OpBoolXor
	OpBoolAnd
	OpBoolOr

	OpFloatEqual
	OpFloatNotEqual
	OpFloatLess
	OpFloatLessEqual
	OpFloatAdd
	OpFloatSub
	OpFloatMult
	OpFloatDiv
	OpFloatNeg
	OpFloatAbs
	OpFloatSqrt

	OpSubpiece
	OpPiece

	OpMultiequal // phi
	OpIndirect

	OpNew
)

var opcodeNames = map[Opcode]string{
	OpCopy:          "COPY",
	OpLoad:          "LOAD",
	OpStore:         "STORE",
	OpBranch:        "BRANCH",
	OpCbranch:       "CBRANCH",
	OpBranchind:     "BRANCHIND",
	OpCall:          "CALL",
	OpCallind:       "CALLIND",
	OpCallother:     "CALLOTHER",
	OpReturn:        "RETURN",
	OpIntEqual:      "INT_EQUAL",
	OpIntNotEqual:   "INT_NOTEQUAL",
	OpIntSless:      "INT_SLESS",
	OpIntSlessEqual: "INT_SLESSEQUAL",
	OpIntLess:       "INT_LESS",
	OpIntLessEqual:  "INT_LESSEQUAL",
	OpIntZext:       "INT_ZEXT",
	OpIntSext:       "INT_SEXT",
	OpIntAdd:        "INT_ADD",
	OpIntSub:        "INT_SUB",
	OpIntCarry:      "INT_CARRY",
	OpIntScarry:     "INT_SCARRY",
	OpIntSborrow:    "INT_SBORROW",
	OpInt2Comp:      "INT_2COMP",
	OpIntNegate:     "INT_NEGATE",
	OpIntXor:        "INT_XOR",
	OpIntAnd:        "INT_AND",
	OpIntOr:         "INT_OR",
	OpIntLeft:       "INT_LEFT",
	OpIntRight:      "INT_RIGHT",
	OpIntSright:     "INT_SRIGHT",
	OpIntMult:       "INT_MULT",
	OpIntDiv:        "INT_DIV",
	OpIntSdiv:       "INT_SDIV",
	OpIntRem:        "INT_REM",
	OpIntSrem:       "INT_SREM",
	OpBoolNegate:    "BOOL_NEGATE",
	OpBoolXor:       "BOOL_XOR",
	OpBoolAnd:       "BOOL_AND",
	OpBoolOr:        "BOOL_OR",
	OpFloatEqual:    "FLOAT_EQUAL",
	OpFloatNotEqual: "FLOAT_NOTEQUAL",
	OpFloatLess:     "FLOAT_LESS",
	OpFloatLessEqual: "FLOAT_LESSEQUAL",
	OpFloatAdd:      "FLOAT_ADD",
	OpFloatSub:      "FLOAT_SUB",
	OpFloatMult:     "FLOAT_MULT",
	OpFloatDiv:      "FLOAT_DIV",
	OpFloatNeg:      "FLOAT_NEG",
	OpFloatAbs:      "FLOAT_ABS",
	OpFloatSqrt:     "FLOAT_SQRT",
	OpSubpiece:      "SUBPIECE",
	OpPiece:         "PIECE",
	OpMultiequal:    "MULTIEQUAL",
	OpIndirect:      "INDIRECT",
	OpNew:           "NEW",
}

func (o Opcode) String() string {
	if n, ok := opcodeNames[o]; ok {
		return n
	}
	return fmt.Sprintf("opcode(%d)", int(o))
}

var opcodeByName map[string]Opcode

func init() {
	opcodeByName = make(map[string]Opcode, len(opcodeNames))
	for op, name := range opcodeNames {
		opcodeByName[name] = op
	}
}

// ParseOpcode looks up the Opcode matching its mnemonic String(),
// for a wire decoder reconstructing ops from text.
func ParseOpcode(name string) (Opcode, bool) {
	o, ok := opcodeByName[name]
	return o, ok
}

// IsMarker reports whether o is a phi (MULTIEQUAL) or INDIRECT, the
// two op kinds that do not represent a real dataflow computation
func (o Opcode) IsMarker() bool {
	return o == OpMultiequal || o == OpIndirect
}

// IsBranch reports whether o transfers control.
func (o Opcode) IsBranch() bool {
	switch o {
	case OpBranch, OpCbranch, OpBranchind, OpCall, OpCallind, OpReturn:
		return true
	default:
		return false
	}
}

// IsCall reports whether o is a call-family opcode.
func (o Opcode) IsCall() bool {
	return o == OpCall || o == OpCallind || o == OpCallother
}
