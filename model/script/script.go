package script

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/copernet/zerocoin/errcode"
	"github.com/copernet/zerocoin/log"
	"github.com/copernet/zerocoin/model/opcodes"
	"github.com/copernet/zerocoin/util"
	"github.com/pkg/errors"
)

const (
	MaxMessagePayload = 32 * 1024 * 1024

	MaxScriptSize = 10000

	// MaxSpendScriptSize bounds a spend input, whose serialized proof is far
	// larger than any ordinary unlocking script.
	MaxSpendScriptSize = 64 * 1024
)

type Script struct {
	data          []byte
	ParsedOpCodes []opcodes.ParsedOpCode
	badOpCode     bool
}

func NewScriptRaw(bytes []byte) *Script {
	newBytes := make([]byte, len(bytes))
	copy(newBytes, bytes)
	s := Script{data: newBytes}
	//convertOPS maybe failed, but it doesn't matter
	s.convertOPS()
	return &s
}

func NewEmptyScript() *Script {
	s := Script{}
	s.data = make([]byte, 0)
	s.ParsedOpCodes = make([]opcodes.ParsedOpCode, 0)
	return &s
}

// NewZerocoinMintScript builds OP_ZEROCOINMINT <pubcoin value>.
func NewZerocoinMintScript(pubcoin []byte) *Script {
	s := NewEmptyScript()
	s.PushOpCode(opcodes.OP_ZEROCOINMINT)
	s.PushSingleData(pubcoin)
	return s
}

// NewZerocoinSpendScript builds OP_ZEROCOINSPEND <serialized coin spend>.
func NewZerocoinSpendScript(spend []byte) *Script {
	s := NewEmptyScript()
	s.PushOpCode(opcodes.OP_ZEROCOINSPEND)
	s.PushSingleData(spend)
	return s
}

// NewPayToPubKeyHashScript builds the standard transparent output locking to hash160(pubkey).
func NewPayToPubKeyHashScript(pubKeyHash []byte) *Script {
	s := NewEmptyScript()
	s.PushOpCode(opcodes.OP_DUP)
	s.PushOpCode(opcodes.OP_HASH160)
	s.PushSingleData(pubKeyHash)
	s.PushOpCode(opcodes.OP_EQUALVERIFY)
	s.PushOpCode(opcodes.OP_CHECKSIG)
	return s
}

func (s *Script) SerializeSize() uint32 {
	return uint32(util.VarIntSerializeSize(uint64(len(s.data)))) + uint32(len(s.data))
}

func (s *Script) Serialize(writer io.Writer) error {
	return util.WriteVarBytes(writer, s.data)
}

func (s *Script) Unserialize(reader io.Reader) error {
	bytes, err := ReadScript(reader, MaxMessagePayload, "script")
	if err != nil {
		return err
	}
	s.data = bytes
	s.convertOPS()
	return nil
}

func ReadScript(reader io.Reader, maxAllowed uint32, fieldName string) ([]byte, error) {
	count, err := util.ReadVarInt(reader)
	if err != nil {
		return nil, err
	}
	if count > uint64(maxAllowed) {
		log.Debug("ReadScript %s size %d exceeds %d", fieldName, count, maxAllowed)
		return nil, errcode.New(errcode.ScriptErrScriptSize)
	}
	script := make([]byte, count)
	if _, err = io.ReadFull(reader, script); err != nil {
		return nil, err
	}
	return script, nil
}

func (s *Script) convertOPS() (err error) {
	s.ParsedOpCodes = make([]opcodes.ParsedOpCode, 0)
	scriptLen := uint(len(s.data))

	var i uint
	for i < scriptLen {
		var nSize uint
		opcode := s.data[i]
		i++
		if opcode < opcodes.OP_PUSHDATA1 {
			nSize = uint(opcode)
		} else if opcode == opcodes.OP_PUSHDATA1 {
			if scriptLen-i < 1 {
				err = errors.New("OP_PUSHDATA1 has no enough data")
				break
			}
			nSize = uint(s.data[i])
			i++
		} else if opcode == opcodes.OP_PUSHDATA2 {
			if scriptLen-i < 2 {
				err = errors.New("OP_PUSHDATA2 has no enough data")
				break
			}
			nSize = uint(binary.LittleEndian.Uint16(s.data[i : i+2]))
			i += 2
		} else if opcode == opcodes.OP_PUSHDATA4 {
			if scriptLen-i < 4 {
				err = errors.New("OP_PUSHDATA4 has no enough data")
				break
			}
			nSize = uint(binary.LittleEndian.Uint32(s.data[i : i+4]))
			i += 4
		}
		if scriptLen-i < nSize {
			err = errors.New("size is wrong")
			break
		}
		parsedOpCode := opcodes.NewParsedOpCode(opcode, int(nSize), s.data[i:i+nSize])
		s.ParsedOpCodes = append(s.ParsedOpCodes, *parsedOpCode)
		i += nSize
	}
	s.badOpCode = err != nil
	if err != nil {
		log.Debug("convertOPS: %v", err)
	}
	return
}

func (s *Script) GetData() []byte {
	return s.data
}

func (s *Script) GetBadOpCode() bool {
	return s.badOpCode
}

func (s *Script) Bytes() []byte {
	return s.data
}

func (s *Script) Size() int {
	return len(s.data)
}

func (s *Script) IsEqual(other *Script) bool {
	return bytes.Equal(s.data, other.data)
}

func (s *Script) IsUnspendable() bool {
	return len(s.data) > 0 && s.data[0] == opcodes.OP_RETURN || len(s.data) > MaxScriptSize
}

func (s *Script) PushOpCode(n int) error {
	if n < 0 || n > 0xff {
		return errcode.New(errcode.ScriptErrBadOpCode)
	}
	s.data = append(s.data, byte(n))
	return s.convertOPS()
}

func (s *Script) PushSingleData(data []byte) error {
	dataLen := len(data)
	if dataLen < opcodes.OP_PUSHDATA1 {
		s.data = append(s.data, byte(dataLen))
	} else if dataLen <= 0xff {
		s.data = append(s.data, opcodes.OP_PUSHDATA1, byte(dataLen))
	} else if dataLen <= 0xffff {
		s.data = append(s.data, opcodes.OP_PUSHDATA2)
		buf := make([]byte, 2)
		binary.LittleEndian.PutUint16(buf, uint16(dataLen))
		s.data = append(s.data, buf...)
	} else {
		s.data = append(s.data, opcodes.OP_PUSHDATA4)
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, uint32(dataLen))
		s.data = append(s.data, buf...)
	}
	s.data = append(s.data, data...)
	return s.convertOPS()
}

func (s *Script) IsZerocoinMint() bool {
	return len(s.data) > 0 && s.data[0] == opcodes.OP_ZEROCOINMINT
}

func (s *Script) IsZerocoinSpend() bool {
	return len(s.data) > 0 && s.data[0] == opcodes.OP_ZEROCOINSPEND
}

// ZerocoinPayload returns the data pushed right after the zerocoin opcode.
func (s *Script) ZerocoinPayload() ([]byte, error) {
	if !s.IsZerocoinMint() && !s.IsZerocoinSpend() {
		return nil, errcode.New(errcode.ScriptErrNotZerocoin)
	}
	if s.badOpCode || len(s.ParsedOpCodes) != 2 {
		return nil, errcode.New(errcode.ScriptErrBadOpCode)
	}
	push := s.ParsedOpCodes[1]
	if !opcodes.IsPushOp(push.OpValue) || !push.CheckCompactDataPush() {
		return nil, errcode.New(errcode.ScriptErrBadOpCode)
	}
	if s.IsZerocoinSpend() && len(push.Data) > MaxSpendScriptSize {
		return nil, errcode.New(errcode.ScriptErrPushSize)
	}
	return push.Data, nil
}
