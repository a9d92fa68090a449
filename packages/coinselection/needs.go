package coinselection

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/iotaledger/xfrwallet/packages/xfr"
)

// region Needs ////////////////////////////////////////////////////////////////////////////////////////////////////////

// Need is the amount of an asset type that has to be covered by the selected records.
type Need struct {
	AssetType xfr.AssetType
	Amount    uint64
}

// Needs is an ordered list of Need with at most one entry per asset type.
type Needs []Need

// NewNeeds returns the needs of a transfer that moves transferAmount of transferAsset and pays fee in feeAsset. Both
// needs are merged if they target the same asset type, otherwise the transfer need comes first.
func NewNeeds(transferAsset xfr.AssetType, transferAmount uint64, feeAsset xfr.AssetType, fee uint64) (needs Needs, err error) {
	if needs, err = needs.Add(transferAsset, transferAmount); err != nil {
		return nil, err
	}

	return needs.Add(feeAsset, fee)
}

// Add returns a copy of the needs with the given amount added to the entry of the asset type. The receiver is not
// modified.
func (n Needs) Add(assetType xfr.AssetType, amount uint64) (Needs, error) {
	updated := make(Needs, len(n), len(n)+1)
	copy(updated, n)

	for i, need := range updated {
		if need.AssetType != assetType {
			continue
		}

		if need.Amount+amount < need.Amount {
			return nil, errors.Errorf("need for asset %s overflows", assetType)
		}
		updated[i].Amount += amount

		return updated, nil
	}

	return append(updated, Need{AssetType: assetType, Amount: amount}), nil
}

// Amount returns the needed amount of the given asset type.
func (n Needs) Amount(assetType xfr.AssetType) uint64 {
	for _, need := range n {
		if need.AssetType == assetType {
			return need.Amount
		}
	}

	return 0
}

// String returns a human readable version of the Needs.
func (n Needs) String() string {
	parts := make([]string, 0, len(n))
	for _, need := range n {
		parts = append(parts, need.AssetType.String()+": "+strconv.FormatUint(need.Amount, 10))
	}

	return "Needs(" + strings.Join(parts, ", ") + ")"
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
