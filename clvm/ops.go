package clvm

// Op is a CLVM operator, encoded as the atom in the
// first position of an evaluated list.
type Op byte

// Operators used by the programs hermes builds and
// recognizes. The keyword names match the Chia
// disassembler.
const (
	OpQuote    Op = 0x01 // q
	OpApply    Op = 0x02 // a
	OpIf       Op = 0x03 // i
	OpCons     Op = 0x04 // c
	OpFirst    Op = 0x05 // f
	OpRest     Op = 0x06 // r
	OpListp    Op = 0x07 // l
	OpRaise    Op = 0x08 // x
	OpEq       Op = 0x09 // =
	OpSha256   Op = 0x0b // sha256
	OpSubstr   Op = 0x0c // substr
	OpConcat   Op = 0x0e // concat
	OpMultiply Op = 0x12 // *
	OpLogand   Op = 0x18 // logand
	OpAll      Op = 0x22 // all
	OpKeccak   Op = 0x3e // keccak256
)

var opNames = map[Op]string{
	OpQuote:    "q",
	OpApply:    "a",
	OpIf:       "i",
	OpCons:     "c",
	OpFirst:    "f",
	OpRest:     "r",
	OpListp:    "l",
	OpRaise:    "x",
	OpEq:       "=",
	OpSha256:   "sha256",
	OpSubstr:   "substr",
	OpConcat:   "concat",
	OpMultiply: "*",
	OpLogand:   "logand",
	OpAll:      "all",
	OpKeccak:   "keccak256",
}

// Secp256k1Verify is the four-byte atom of the
// secp256k1_verify operator.
var Secp256k1Verify = []byte{0x13, 0xd6, 0x1f, 0x00}

// String returns the keyword for op.
func (op Op) String() string {
	if s, ok := opNames[op]; ok {
		return s
	}
	return ""
}

// Program returns the atom encoding op.
func (op Op) Program() *Program {
	return &Program{atom: []byte{byte(op)}}
}
