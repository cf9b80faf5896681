package opcodes

import "fmt"

const (
	// push value
	OP_0         = 0x00
	OP_FALSE     = OP_0
	OP_PUSHDATA1 = 0x4c
	OP_PUSHDATA2 = 0x4d
	OP_PUSHDATA4 = 0x4e
	OP_1NEGATE   = 0x4f
	OP_1         = 0x51
	OP_TRUE      = OP_1
	OP_16        = 0x60

	// control
	OP_NOP    = 0x61
	OP_RETURN = 0x6a

	// stack, bitwise and crypto ops needed by pay-to-pubkey-hash change outputs
	OP_DUP         = 0x76
	OP_EQUAL       = 0x87
	OP_EQUALVERIFY = 0x88
	OP_HASH160     = 0xa9
	OP_CHECKSIG    = 0xac

	// zerocoin
	OP_ZEROCOINMINT  = 0xc1
	OP_ZEROCOINSPEND = 0xc2

	OP_INVALIDOPCODE = 0xff
)

var opNames = map[int]string{
	OP_PUSHDATA1:     "OP_PUSHDATA1",
	OP_PUSHDATA2:     "OP_PUSHDATA2",
	OP_PUSHDATA4:     "OP_PUSHDATA4",
	OP_1NEGATE:       "-1",
	OP_NOP:           "OP_NOP",
	OP_RETURN:        "OP_RETURN",
	OP_DUP:           "OP_DUP",
	OP_EQUAL:         "OP_EQUAL",
	OP_EQUALVERIFY:   "OP_EQUALVERIFY",
	OP_HASH160:       "OP_HASH160",
	OP_CHECKSIG:      "OP_CHECKSIG",
	OP_ZEROCOINMINT:  "OP_ZEROCOINMINT",
	OP_ZEROCOINSPEND: "OP_ZEROCOINSPEND",
	OP_INVALIDOPCODE: "OP_INVALIDOPCODE",
}

func GetOpName(opCode int) string {
	if opCode == OP_0 {
		return "0"
	}
	if opCode >= OP_1 && opCode <= OP_16 {
		return fmt.Sprintf("%d", opCode-OP_1+1)
	}
	if name, ok := opNames[opCode]; ok {
		return name
	}
	return "OP_UNKNOWN"
}

// IsPushOp reports whether opCode pushes data rather than executing.
func IsPushOp(opCode byte) bool {
	return opCode <= OP_PUSHDATA4
}
