package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"math/big"
	"sort"
	"strings"

	"github.com/copernet/zerocoin/errcode"
	"github.com/copernet/zerocoin/log"
	"github.com/copernet/zerocoin/logic/laccumulator"
	"github.com/copernet/zerocoin/logic/lwitness"
	"github.com/copernet/zerocoin/logic/lzerocoin"
	"github.com/copernet/zerocoin/model/accumulators"
	"github.com/copernet/zerocoin/model/blockindex"
	"github.com/copernet/zerocoin/model/zerocoin"
	"github.com/copernet/zerocoin/persist/db"
	"github.com/copernet/zerocoin/util"
	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

type command struct {
	usage string
	run   func(in *inspector, w io.Writer, args []string) error
}

var commands map[string]command

// commands is populated in init because the handlers refer back to it.
func init() {
	commands = map[string]command{
		"checkpoints": {"[--height h]", cmdCheckpoints},
		"serial":      {"<serial hash>", cmdSerial},
		"pubcoin":     {"<pubcoin hash>", cmdPubcoin},
		"decode":      {"<hex coin spend>", cmdDecode},
		"witness":     {"--denom d [--target h] [--level n] <hex pubcoin value>", cmdWitness},
		"reindex":     {"", cmdReindex},
	}
}

func commandNames() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// splitCommand cuts args at the first command name. Everything before it
// is handed to the configuration flags.
func splitCommand(args []string) (global, cmdArgs []string) {
	for i, arg := range args {
		if _, ok := commands[arg]; ok {
			return args[:i], args[i:]
		}
	}
	return args, nil
}

func run(in *inspector, w io.Writer, args []string) error {
	cmd, ok := commands[args[0]]
	if !ok {
		return errors.Errorf("unknown command %q", args[0])
	}
	if args[0] != "reindex" {
		reindexing, err := in.zdb.ReadReindexing()
		if err != nil {
			return err
		}
		if reindexing || in.cfg.Reindex {
			log.Info("reindex requested before %s", args[0])
			if err := cmdReindex(in, w, nil); err != nil {
				return err
			}
		}
	}
	return cmd.run(in, w, args[1:])
}

// parseOptions parses command options into opts and requires exactly
// positional remaining arguments.
func parseOptions(name string, opts interface{}, args []string, positional int) ([]string, error) {
	rest, err := flags.ParseArgs(opts, args)
	if err != nil {
		return nil, err
	}
	if len(rest) != positional {
		return nil, errors.Errorf("usage: zcinspect %s %s", name, commands[name].usage)
	}
	return rest, nil
}

func writeCheckpoint(w io.Writer, bi *blockindex.BlockIndex) {
	fmt.Fprintf(w, "height %d block %s commitment %s\n", bi.Height, bi.BlockHash.String(),
		laccumulator.CheckpointCommitment(bi.AccumulatorCheckpoint).String())
	for _, d := range bi.AccumulatorCheckpoint.Denominations() {
		fmt.Fprintf(w, "  %-17s %s\n", d, bi.AccumulatorCheckpoint[d].String())
	}
}

func cmdCheckpoints(in *inspector, w io.Writer, args []string) error {
	var opts struct {
		Height int32 `long:"height" default:"-1" description:"print only the checkpoint active at this height"`
	}
	if _, err := parseOptions("checkpoints", &opts, args, 0); err != nil {
		return err
	}

	in.chain.RLock()
	defer in.chain.RUnlock()
	if opts.Height >= 0 {
		bi := in.chain.GetIndex(opts.Height)
		if bi == nil {
			return errors.Errorf("no active block at height %d", opts.Height)
		}
		writeCheckpoint(w, bi)
	} else {
		start := in.cfg.Zerocoin.StartHeight
		start -= start % laccumulator.CheckpointInterval
		for h := start; h <= in.chain.Height(); h += laccumulator.CheckpointInterval {
			if h == 0 || laccumulator.IsCheckpointHeight(h) {
				writeCheckpoint(w, in.chain.GetIndex(h))
			}
		}
	}

	fmt.Fprintf(w, "validation enabled: %v\n", in.store.ZerocoinValidationEnabled())
	for _, checksum := range in.store.MissingChecksums() {
		fmt.Fprintf(w, "missing checksum %s\n", checksum.String())
	}
	return nil
}

func parseHashArg(s string) (util.Hash, error) {
	h, err := util.GetHashFromStr(s)
	if err != nil {
		return util.HashZero, errors.Wrapf(err, "parse hash %q", s)
	}
	return *h, nil
}

func cmdSerial(in *inspector, w io.Writer, args []string) error {
	rest, err := parseOptions("serial", &struct{}{}, args, 1)
	if err != nil {
		return err
	}
	serialHash, err := parseHashArg(rest[0])
	if err != nil {
		return err
	}

	in.chain.RLock()
	defer in.chain.RUnlock()
	known, txid, err := in.registry.IsSerialKnown(serialHash)
	if err != nil {
		return err
	}
	if !known {
		fmt.Fprintf(w, "serial %s: unspent\n", serialHash.String())
		return nil
	}
	inChain, _, err := in.registry.IsSerialInChain(serialHash, in.chain, in.blocks)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "serial %s: spent by %s, in active chain: %v\n", serialHash.String(), txid.String(), inChain)
	return nil
}

func cmdPubcoin(in *inspector, w io.Writer, args []string) error {
	rest, err := parseOptions("pubcoin", &struct{}{}, args, 1)
	if err != nil {
		return err
	}
	pubcoinHash, err := parseHashArg(rest[0])
	if err != nil {
		return err
	}

	in.chain.RLock()
	defer in.chain.RUnlock()
	txid, found, err := in.registry.GetMintTx(pubcoinHash)
	if err != nil {
		return err
	}
	if !found {
		fmt.Fprintf(w, "pubcoin %s: not minted\n", pubcoinHash.String())
		return nil
	}
	inChain, blockHash, err := in.registry.IsPubcoinInBlockchain(pubcoinHash, in.chain, in.blocks)
	if err != nil {
		return err
	}
	spent, err := in.registry.IsPubcoinSpendInChain(pubcoinHash, in.chain)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "pubcoin %s: minted by %s", pubcoinHash.String(), txid.String())
	if inChain {
		fmt.Fprintf(w, " in block %s", blockHash.String())
	}
	fmt.Fprintf(w, ", public spend in chain: %v\n", spent)
	return nil
}

func cmdDecode(in *inspector, w io.Writer, args []string) error {
	var opts struct {
		SoK bool `long:"sok" description:"also verify the serial number signature of knowledge"`
	}
	rest, err := parseOptions("decode", &opts, args, 1)
	if err != nil {
		return err
	}
	raw, err := hex.DecodeString(strings.TrimSpace(rest[0]))
	if err != nil {
		return errors.Wrap(err, "decode hex")
	}
	spend, err := zerocoin.ParseCoinSpend(in.params, raw)
	if err != nil {
		return err
	}

	checksum := spend.AccumulatorChecksum()
	fmt.Fprintf(w, "version:        %d\n", spend.Version())
	fmt.Fprintf(w, "denomination:   %s\n", spend.Denomination())
	fmt.Fprintf(w, "serial hash:    %s\n", spend.SerialHash().String())
	fmt.Fprintf(w, "checksum:       %s\n", checksum.String())
	fmt.Fprintf(w, "tx out hash:    %s\n", spend.TxOutHash().String())
	fmt.Fprintf(w, "valid serial:   %v\n", spend.HasValidSerial())
	fmt.Fprintf(w, "valid sig:      %v\n", spend.HasValidSignature())
	if spend.Version().IsLimpMode() {
		fmt.Fprintf(w, "pubcoin sig:    %v\n", spend.VerifyPubcoinSignature())
	}

	value, err := in.store.GetAccumulatorValue(checksum)
	if errcode.IsErrorCode(err, errcode.ErrorChecksumNotFound) {
		fmt.Fprintln(w, "accumulator:    unknown checksum")
		return nil
	}
	if err != nil {
		return err
	}
	in.chain.RLock()
	height := laccumulator.FindFirstHeightWithChecksum(in.chain, checksum, spend.Denomination())
	in.chain.RUnlock()
	fmt.Fprintf(w, "first height:   %d\n", height)

	acc := zerocoin.NewAccumulatorWithValue(in.params, spend.Denomination(), value)
	ok, reason := spend.Verify(acc, opts.SoK)
	if ok {
		fmt.Fprintln(w, "verify:         ok")
	} else {
		fmt.Fprintf(w, "verify:         failed (%s)\n", reason)
	}
	return nil
}

func cmdWitness(in *inspector, w io.Writer, args []string) error {
	var opts struct {
		Denom  int64 `long:"denom" required:"true" description:"coin denomination"`
		Target int32 `long:"target" description:"checkpoint height to prove against"`
		Level  int   `long:"level" description:"security level, defaults to the configured one"`
	}
	rest, err := parseOptions("witness", &opts, args, 1)
	if err != nil {
		return err
	}
	d := zerocoin.DenominationFromInt(opts.Denom)
	if !d.IsValid() {
		return errors.Errorf("invalid denomination %d", opts.Denom)
	}
	value, ok := new(big.Int).SetString(strings.TrimPrefix(rest[0], "0x"), 16)
	if !ok {
		return errors.Errorf("parse pubcoin value %q", rest[0])
	}
	level := opts.Level
	if level == 0 {
		level = in.cfg.Zerocoin.SecurityLevel
	}

	coin := zerocoin.NewPublicCoin(in.params, value, d)
	engine := in.engine()
	data, err := engine.Load(coin)
	if err != nil {
		return err
	}
	err = engine.GenerateWitness(data, accumulators.NewAccumulatorMap(in.params), level, opts.Target)
	fmt.Fprintln(w, data.String())
	if err != nil && lwitness.IsRetryable(err) {
		fmt.Fprintf(w, "not ready, retry later: %v\n", err)
		return nil
	}
	return err
}

func cmdReindex(in *inspector, w io.Writer, args []string) error {
	if _, err := parseOptions("reindex", &struct{}{}, args, 0); err != nil {
		return err
	}

	in.chain.Lock()
	defer in.chain.Unlock()

	if err := in.zdb.WriteReindexing(true); err != nil {
		return err
	}
	for _, recordType := range []byte{db.DbMint, db.DbSerial, db.DbPubcoinSpend} {
		if err := in.zdb.WipeCoins(recordType); err != nil {
			return err
		}
	}
	if err := in.store.Wipe(); err != nil {
		return err
	}
	if in.cache != nil {
		if err := in.cache.Clear(); err != nil {
			return err
		}
	}

	tip := in.chain.Tip()
	in.chain.SetTip(nil)
	indexes := make([]*blockindex.BlockIndex, 0)
	if tip != nil {
		sc := in.spendContext()
		batch := in.batchConfig()
		for h := int32(0); h <= tip.Height; h++ {
			if interruptRequested(in.interrupt) {
				in.chain.SetTip(tip)
				return errors.Errorf("reindex interrupted at height %d, rerun to finish", h)
			}
			bi := tip.GetAncestor(h)
			bl, err := in.blocks.ReadBlock(bi.BlockHash)
			if err != nil {
				return err
			}
			if err := laccumulator.ValidateCheckpoint(bl, bi, in.blocks, in.store, in.params); err != nil {
				return errors.Wrapf(err, "reindex block %s at height %d", bi.BlockHash.String(), h)
			}
			if err := lzerocoin.ConnectBlockZerocoin(sc, bl, bi, batch); err != nil {
				return errors.Wrapf(err, "reindex block %s at height %d", bi.BlockHash.String(), h)
			}
			in.chain.SetTip(bi)
			indexes = append(indexes, bi)
		}
		if err := in.blocks.WriteBlockIndexes(indexes); err != nil {
			return err
		}
	}
	if err := in.zdb.WriteReindexing(false); err != nil {
		return err
	}
	in.cfg.Reindex = false

	fmt.Fprintf(w, "reindexed %d blocks\n", len(indexes))
	return writeMetrics(w)
}

// writeMetrics prints the counters collected while the command ran.
func writeMetrics(w io.Writer) error {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return err
	}
	for _, family := range families {
		if !strings.HasPrefix(family.GetName(), "zerocoin_") {
			continue
		}
		for _, m := range family.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				labels = append(labels, l.GetName()+"="+l.GetValue())
			}
			switch {
			case m.GetCounter() != nil:
				fmt.Fprintf(w, "%s{%s} %v\n", family.GetName(), strings.Join(labels, ","), m.GetCounter().GetValue())
			case m.GetGauge() != nil:
				fmt.Fprintf(w, "%s{%s} %v\n", family.GetName(), strings.Join(labels, ","), m.GetGauge().GetValue())
			}
		}
	}
	return nil
}
