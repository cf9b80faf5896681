package opcodes

type ParsedOpCode struct {
	OpValue byte

	Length int
	Data   []byte
}

func NewParsedOpCode(opValue byte, length int, data []byte) *ParsedOpCode {
	parsedOpCode := ParsedOpCode{OpValue: opValue, Length: length}
	if len(data) > 0 {
		parsedOpCode.Data = make([]byte, len(data))
		copy(parsedOpCode.Data, data)
	}
	return &parsedOpCode
}

// CheckCompactDataPush reports whether the push uses the smallest length encoding.
func (parsedOpCode *ParsedOpCode) CheckCompactDataPush() bool {
	dataLen := len(parsedOpCode.Data)
	opcode := parsedOpCode.OpValue
	if dataLen < OP_PUSHDATA1 {
		return int(opcode) == dataLen
	}
	if dataLen <= 0xff {
		return opcode == OP_PUSHDATA1
	}
	if dataLen <= 0xffff {
		return opcode == OP_PUSHDATA2
	}
	return opcode == OP_PUSHDATA4
}
