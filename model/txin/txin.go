package txin

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/copernet/zerocoin/model/outpoint"
	"github.com/copernet/zerocoin/model/script"
	"github.com/copernet/zerocoin/util"
)

const SequenceFinal = 0xffffffff

type TxIn struct {
	PreviousOutPoint *outpoint.OutPoint
	scriptSig        *script.Script
	Sequence         uint32
}

func NewTxIn(previousOutPoint *outpoint.OutPoint, scriptSig *script.Script, sequence uint32) *TxIn {
	if previousOutPoint == nil {
		previousOutPoint = outpoint.NewNullOutPoint()
	}
	if scriptSig == nil {
		scriptSig = script.NewEmptyScript()
	}
	return &TxIn{
		PreviousOutPoint: previousOutPoint,
		scriptSig:        scriptSig,
		Sequence:         sequence,
	}
}

// NewZerocoinSpendTxIn wraps a serialized coin spend in an input with a null prevout.
func NewZerocoinSpendTxIn(spend []byte) *TxIn {
	return NewTxIn(outpoint.NewNullOutPoint(), script.NewZerocoinSpendScript(spend), SequenceFinal)
}

func (txIn *TxIn) SerializeSize() uint32 {
	return txIn.PreviousOutPoint.SerializeSize() + txIn.scriptSig.SerializeSize() + 4
}

func (txIn *TxIn) Serialize(writer io.Writer) error {
	err := txIn.PreviousOutPoint.Serialize(writer)
	if err != nil {
		return err
	}
	err = txIn.scriptSig.Serialize(writer)
	if err != nil {
		return err
	}
	return util.BinarySerializer.PutUint32(writer, binary.LittleEndian, txIn.Sequence)
}

func (txIn *TxIn) Unserialize(reader io.Reader) error {
	if txIn.PreviousOutPoint == nil {
		txIn.PreviousOutPoint = new(outpoint.OutPoint)
	}
	err := txIn.PreviousOutPoint.Unserialize(reader)
	if err != nil {
		return err
	}
	scriptSig := script.NewEmptyScript()
	err = scriptSig.Unserialize(reader)
	if err != nil {
		return err
	}
	txIn.scriptSig = scriptSig
	txIn.Sequence, err = util.BinarySerializer.Uint32(reader, binary.LittleEndian)
	return err
}

func (txIn *TxIn) GetScriptSig() *script.Script {
	return txIn.scriptSig
}

func (txIn *TxIn) SetScriptSig(scriptSig *script.Script) {
	txIn.scriptSig = scriptSig
}

func (txIn *TxIn) IsZerocoinSpend() bool {
	return txIn.scriptSig != nil && txIn.scriptSig.IsZerocoinSpend()
}

func (txIn *TxIn) String() string {
	return fmt.Sprintf("PreviousOutPoint: %s, sequence: %d, script size: %d",
		txIn.PreviousOutPoint.String(), txIn.Sequence, txIn.scriptSig.Size())
}
