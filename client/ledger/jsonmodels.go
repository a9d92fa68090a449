package ledger

import (
	"encoding/json"

	"github.com/cockroachdb/errors"

	"github.com/iotaledger/xfrwallet/packages/xfr"
)

// TxOutput is the JSON model of an unspent output as it is returned by the ledger.
type TxOutput struct {
	ID     *xfr.TxoSID     `json:"id"`
	Record xfr.BlindRecord `json:"record"`
}

// OwnedUTXO is a single entry of the owned_utxos response. The ledger encodes it as a two element array of the output
// and its (optional) owner memo.
type OwnedUTXO struct {
	Output    TxOutput
	OwnerMemo *xfr.OwnerMemo
}

// MarshalJSON encodes the entry as a two element array.
func (o OwnedUTXO) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{o.Output, o.OwnerMemo})
}

// UnmarshalJSON decodes the two element array form.
func (o *OwnedUTXO) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return errors.Wrap(err, "failed to decode owned utxo")
	}
	if len(parts) != 2 {
		return errors.Errorf("owned utxo must have 2 elements, got %d", len(parts))
	}

	if err := json.Unmarshal(parts[0], &o.Output); err != nil {
		return errors.Wrap(err, "failed to decode utxo")
	}
	if err := json.Unmarshal(parts[1], &o.OwnerMemo); err != nil {
		return errors.Wrap(err, "failed to decode owner memo")
	}

	return nil
}

// OwnedUTXOsResponse is the JSON model of the owned_utxos response, keyed by the decimal SID of the output.
type OwnedUTXOsResponse map[xfr.TxoSID]OwnedUTXO

// SubmitTransactionRequest is the JSON model of a transaction submission.
type SubmitTransactionRequest struct {
	Operation []byte `json:"operation"`
}

// SubmitTransactionResponse is the handle the ledger assigns to a submitted transaction.
type SubmitTransactionResponse string

type errorResponse struct {
	Error string `json:"error"`
}
