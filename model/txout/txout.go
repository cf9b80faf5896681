package txout

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/copernet/zerocoin/model/script"
	"github.com/copernet/zerocoin/util"
	"github.com/copernet/zerocoin/util/amount"
)

type TxOut struct {
	value        amount.Amount
	scriptPubKey *script.Script
}

func NewTxOut(value amount.Amount, scriptPubKey *script.Script) *TxOut {
	if scriptPubKey == nil {
		scriptPubKey = script.NewEmptyScript()
	}
	return &TxOut{value: value, scriptPubKey: scriptPubKey}
}

func (txOut *TxOut) SerializeSize() uint32 {
	return 8 + txOut.scriptPubKey.SerializeSize()
}

func (txOut *TxOut) Serialize(writer io.Writer) error {
	err := util.BinarySerializer.PutUint64(writer, binary.LittleEndian, uint64(txOut.value))
	if err != nil {
		return err
	}
	return txOut.scriptPubKey.Serialize(writer)
}

func (txOut *TxOut) Unserialize(reader io.Reader) error {
	v, err := util.BinarySerializer.Uint64(reader, binary.LittleEndian)
	if err != nil {
		return err
	}
	txOut.value = amount.Amount(v)
	txOut.scriptPubKey = script.NewEmptyScript()
	return txOut.scriptPubKey.Unserialize(reader)
}

func (txOut *TxOut) GetValue() amount.Amount {
	return txOut.value
}

func (txOut *TxOut) SetValue(v amount.Amount) {
	txOut.value = v
}

func (txOut *TxOut) GetScriptPubKey() *script.Script {
	return txOut.scriptPubKey
}

func (txOut *TxOut) SetScriptPubKey(s *script.Script) {
	txOut.scriptPubKey = s
}

func (txOut *TxOut) IsZerocoinMint() bool {
	return txOut.scriptPubKey != nil && txOut.scriptPubKey.IsZerocoinMint()
}

func (txOut *TxOut) String() string {
	return fmt.Sprintf("Value :%d Script:%x", txOut.value, txOut.scriptPubKey.Bytes())
}

func (txOut *TxOut) IsEqual(out *TxOut) bool {
	return txOut.value == out.value && txOut.scriptPubKey.IsEqual(out.scriptPubKey)
}
