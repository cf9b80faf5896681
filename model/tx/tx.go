package tx

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/copernet/zerocoin/log"
	"github.com/copernet/zerocoin/model/txin"
	"github.com/copernet/zerocoin/model/txout"
	"github.com/copernet/zerocoin/util"
	"github.com/copernet/zerocoin/util/amount"
	"github.com/pkg/errors"
)

const (
	DefaultVersion = 0x01

	MaxMessagePayload  = 32 * 1024 * 1024
	MinTxInPayload     = 9 + util.Hash256Size
	MaxTxInPerMessage  = (MaxMessagePayload / MinTxInPayload) + 1
	MinTxOutPayload    = 9
	MaxTxOutPerMessage = (MaxMessagePayload / MinTxOutPayload) + 1
)

type Tx struct {
	hash     util.Hash // Cached transaction hash
	lockTime uint32
	version  int32
	ins      []*txin.TxIn
	outs     []*txout.TxOut
}

func NewTx(locktime uint32, version int32) *Tx {
	tx := &Tx{lockTime: locktime, version: version}
	tx.ins = make([]*txin.TxIn, 0)
	tx.outs = make([]*txout.TxOut, 0)
	return tx
}

func NewEmptyTx() *Tx {
	return &Tx{}
}

func (tx *Tx) AddTxIn(txIn *txin.TxIn) {
	tx.ins = append(tx.ins, txIn)
	tx.hash = util.HashZero
}

func (tx *Tx) AddTxOut(txOut *txout.TxOut) {
	tx.outs = append(tx.outs, txOut)
	tx.hash = util.HashZero
}

func (tx *Tx) GetTxOut(index int) *txout.TxOut {
	if index < 0 || index >= len(tx.outs) {
		return nil
	}
	return tx.outs[index]
}

func (tx *Tx) GetTxIn(index int) *txin.TxIn {
	if index < 0 || index >= len(tx.ins) {
		return nil
	}
	return tx.ins[index]
}

func (tx *Tx) GetIns() []*txin.TxIn {
	return tx.ins
}

func (tx *Tx) GetOuts() []*txout.TxOut {
	return tx.outs
}

func (tx *Tx) GetInsCount() int {
	return len(tx.ins)
}

func (tx *Tx) GetOutsCount() int {
	return len(tx.outs)
}

func (tx *Tx) GetLockTime() uint32 {
	return tx.lockTime
}

func (tx *Tx) GetVersion() int32 {
	return tx.version
}

func (tx *Tx) SerializeSize() uint32 {
	// Version 4 bytes + LockTime 4 bytes + Serialized varint size for the
	// number of transaction inputs and outputs.
	n := uint32(8 + util.VarIntSerializeSize(uint64(len(tx.ins))) + util.VarIntSerializeSize(uint64(len(tx.outs))))
	for _, txIn := range tx.ins {
		n += txIn.SerializeSize()
	}
	for _, txOut := range tx.outs {
		n += txOut.SerializeSize()
	}
	return n
}

func (tx *Tx) Serialize(writer io.Writer) error {
	err := util.BinarySerializer.PutUint32(writer, binary.LittleEndian, uint32(tx.version))
	if err != nil {
		return err
	}
	if err = util.WriteVarInt(writer, uint64(len(tx.ins))); err != nil {
		return err
	}
	for _, txIn := range tx.ins {
		if err = txIn.Serialize(writer); err != nil {
			return err
		}
	}
	if err = util.WriteVarInt(writer, uint64(len(tx.outs))); err != nil {
		return err
	}
	for _, txOut := range tx.outs {
		if err = txOut.Serialize(writer); err != nil {
			return err
		}
	}
	return util.BinarySerializer.PutUint32(writer, binary.LittleEndian, tx.lockTime)
}

func (tx *Tx) Unserialize(reader io.Reader) error {
	version, err := util.BinarySerializer.Uint32(reader, binary.LittleEndian)
	if err != nil {
		return err
	}
	count, err := util.ReadVarInt(reader)
	if err != nil {
		return err
	}
	if count > uint64(MaxTxInPerMessage) {
		log.Error("too many input txs to fit into max message size [count %d , max %d]", count, MaxTxInPerMessage)
		return errors.Errorf("too many inputs: %d", count)
	}

	tx.version = int32(version)
	tx.ins = make([]*txin.TxIn, count)
	for i := uint64(0); i < count; i++ {
		txIn := new(txin.TxIn)
		if err = txIn.Unserialize(reader); err != nil {
			return err
		}
		tx.ins[i] = txIn
	}

	count, err = util.ReadVarInt(reader)
	if err != nil {
		return err
	}
	if count > uint64(MaxTxOutPerMessage) {
		return errors.Errorf("too many outputs: %d", count)
	}
	tx.outs = make([]*txout.TxOut, count)
	for i := uint64(0); i < count; i++ {
		txOut := new(txout.TxOut)
		if err = txOut.Unserialize(reader); err != nil {
			return err
		}
		tx.outs[i] = txOut
	}

	tx.lockTime, err = util.BinarySerializer.Uint32(reader, binary.LittleEndian)
	tx.hash = util.HashZero
	return err
}

// IsCoinBase excludes zerocoin spends, which also carry a null prevout.
func (tx *Tx) IsCoinBase() bool {
	if len(tx.ins) != 1 {
		return false
	}
	return tx.ins[0].PreviousOutPoint.IsNull() && !tx.ContainsZerocoins()
}

// IsZerocoinSpend reports whether any input spends a zerocoin.
func (tx *Tx) IsZerocoinSpend() bool {
	for _, in := range tx.ins {
		if in.IsZerocoinSpend() {
			return true
		}
	}
	return false
}

func (tx *Tx) HasZerocoinMintOutputs() bool {
	for _, out := range tx.outs {
		if out.IsZerocoinMint() {
			return true
		}
	}
	return false
}

func (tx *Tx) ContainsZerocoins() bool {
	return tx.IsZerocoinSpend() || tx.HasZerocoinMintOutputs()
}

func (tx *Tx) GetValueOut() amount.Amount {
	var valueOut amount.Amount
	for _, out := range tx.outs {
		valueOut += out.GetValue()
	}
	return valueOut
}

func (tx *Tx) GetHash() util.Hash {
	// cache hash
	if !tx.hash.IsNull() {
		return tx.hash
	}
	tx.hash = tx.calHash()
	return tx.hash
}

func (tx *Tx) calHash() util.Hash {
	buf := bytes.NewBuffer(make([]byte, 0, tx.SerializeSize()))
	err := tx.Serialize(buf)
	if err != nil {
		panic("tx encode failed: " + err.Error())
	}
	return util.DoubleSha256Hash(buf.Bytes())
}

func (tx *Tx) String() string {
	inStr := "ins:\n"
	for i, in := range tx.ins {
		inStr = fmt.Sprintf("%s  %d , %s\n", inStr, i, in.String())
	}
	outStr := "outs:\n"
	for i, out := range tx.outs {
		outStr = fmt.Sprintf("%s  %d , %s\n", outStr, i, out.String())
	}
	return fmt.Sprintf("hash: %s version: %d lockTime: %d\n%s%s",
		tx.GetHash().String(), tx.version, tx.lockTime, inStr, outStr)
}
