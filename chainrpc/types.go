package chainrpc

import (
	"encoding/hex"
	"encoding/json"

	"github.com/salvium/walletcore/scanner"
	"github.com/salvium/walletcore/walletdb"
)

// jsonrpcRequest/jsonrpcResponse are the envelope this client speaks. The
// field layout here is self-consistent within this package, not a claim
// to match any specific daemon's exact JSON-RPC schema.
type jsonrpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      string      `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

type jsonrpcResponse struct {
	ID     string          `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type getInfoResult struct {
	Height     uint64 `json:"height"`
	TargetHeight uint64 `json:"target_height"`
	TopBlockHash string `json:"top_block_hash"`
}

type getBlockHeadersRangeParams struct {
	StartHeight uint64 `json:"start_height"`
	EndHeight   uint64 `json:"end_height"`
}

type blockHeaderWire struct {
	Height   uint64 `json:"height"`
	Hash     string `json:"hash"`
	PrevHash string `json:"prev_hash"`
}

type getBlockHeadersRangeResult struct {
	Headers []blockHeaderWire `json:"headers"`
}

type getBlocksByHeightParams struct {
	Heights []uint64 `json:"heights"`
}

type outputWire struct {
	Key             string  `json:"key"`
	ViewTag         string  `json:"view_tag,omitempty"`
	EncryptedAmount string  `json:"encrypted_amount,omitempty"`
	ClearAmount     *uint64 `json:"clear_amount,omitempty"`
	OutPk           string  `json:"out_pk,omitempty"`
	IsCarrot        bool    `json:"is_carrot"`
	CarrotEphemeral string  `json:"carrot_ephemeral,omitempty"`
}

type transactionWire struct {
	TxHash            string       `json:"tx_hash"`
	TxPubKey          string       `json:"tx_pub_key,omitempty"`
	AdditionalPubKeys []string     `json:"additional_pub_keys,omitempty"`
	Outputs           []outputWire `json:"outputs"`
	BlockHeight       uint64       `json:"block_height"`
	UnlockTime        uint64       `json:"unlock_time"`
	TxType            uint8        `json:"tx_type"`
	AssetType         string       `json:"asset_type"`
	InputKeyImages    []string     `json:"input_key_images,omitempty"`
}

type blockWire struct {
	Height       uint64            `json:"height"`
	Hash         string            `json:"hash"`
	MinerTx      *transactionWire  `json:"miner_tx,omitempty"`
	ProtocolTx   *transactionWire  `json:"protocol_tx,omitempty"`
	Transactions []transactionWire `json:"transactions,omitempty"`
}

type getBlocksByHeightResult struct {
	Blocks []blockWire `json:"blocks"`
}

type getBlockParams struct {
	Height uint64 `json:"height"`
}

type getBlockResult struct {
	Block blockWire `json:"block"`
}

type getTransactionPoolResult struct {
	Transactions []transactionWire `json:"transactions"`
}

type getTransactionsResult struct {
	Transactions []transactionWire `json:"txs"`
}

type getOutsParams struct {
	AssetType string   `json:"asset_type"`
	Outputs   []uint64 `json:"global_indexes"`
}

type outWire struct {
	GlobalIndex uint64 `json:"global_index"`
	Key         string `json:"key"`
	Commitment  string `json:"commitment,omitempty"`
}

type getOutsResult struct {
	Outs []outWire `json:"outs"`
}

type sendRawTransactionParams struct {
	TxAsHex string `json:"tx_as_hex"`
}

type sendRawTransactionResult struct {
	Status       string `json:"status"`
	Reason       string `json:"reason"`
	DoubleSpend  bool   `json:"double_spend"`
	FeeTooLow    bool   `json:"fee_too_low"`
	InvalidInput bool   `json:"invalid_input"`
	TooBig       bool   `json:"too_big"`
	NotRct       bool   `json:"not_rct"`
	Invalid      bool   `json:"invalid"`
}

type isKeyImageSpentParams struct {
	KeyImages []string `json:"key_images"`
}

type isKeyImageSpentResult struct {
	SpentStatus []int `json:"spent_status"`
}

func hexTo32(s string) (out [32]byte, err error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return out, err
	}
	if len(b) != 32 {
		return out, errShortHex
	}
	copy(out[:], b)
	return out, nil
}

func hexToBytes(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	return hex.DecodeString(s)
}

func decodeOutput(w outputWire) (scanner.Output, error) {
	var out scanner.Output

	key, err := hexTo32(w.Key)
	if err != nil {
		return out, err
	}
	out.Key = key
	out.IsCarrot = w.IsCarrot

	if w.ViewTag != "" {
		vt, err := hexToBytes(w.ViewTag)
		if err != nil {
			return out, err
		}
		out.ViewTag = vt
	}
	if w.EncryptedAmount != "" {
		b, err := hexToBytes(w.EncryptedAmount)
		if err != nil || len(b) != 8 {
			return out, errShortHex
		}
		var ea [8]byte
		copy(ea[:], b)
		out.EncryptedAmount = &ea
	}
	out.ClearAmount = w.ClearAmount
	if w.OutPk != "" {
		pk, err := hexTo32(w.OutPk)
		if err != nil {
			return out, err
		}
		out.OutPk = &pk
	}
	if w.CarrotEphemeral != "" {
		ce, err := hexTo32(w.CarrotEphemeral)
		if err != nil {
			return out, err
		}
		out.CarrotEphemeral = &ce
	}
	return out, nil
}

func decodeTransaction(w transactionWire) (*scanner.ParsedTransaction, error) {
	txHash, err := hexTo32(w.TxHash)
	if err != nil {
		return nil, err
	}

	tx := &scanner.ParsedTransaction{
		TxHash:      txHash,
		BlockHeight: w.BlockHeight,
		UnlockTime:  w.UnlockTime,
		TxType:      walletdb.TxType(w.TxType),
		AssetType:   w.AssetType,
	}

	if w.TxPubKey != "" {
		pk, err := hexTo32(w.TxPubKey)
		if err != nil {
			return nil, err
		}
		tx.TxPubKey = &pk
	}
	for _, s := range w.AdditionalPubKeys {
		pk, err := hexTo32(s)
		if err != nil {
			return nil, err
		}
		tx.AdditionalPubKeys = append(tx.AdditionalPubKeys, pk)
	}
	for _, ow := range w.Outputs {
		o, err := decodeOutput(ow)
		if err != nil {
			return nil, err
		}
		tx.Outputs = append(tx.Outputs, o)
	}
	for _, s := range w.InputKeyImages {
		ki, err := hexTo32(s)
		if err != nil {
			return nil, err
		}
		tx.InputKeyImages = append(tx.InputKeyImages, ki)
	}
	tx.HasInputKeyImages = len(tx.InputKeyImages) > 0
	return tx, nil
}
