package xfr

import (
	"github.com/cockroachdb/errors"
)

// region RecordType ///////////////////////////////////////////////////////////////////////////////////////////////////

const (
	// NonConfidentialAmountNonConfidentialAssetType is a record that reveals both its amount and its asset type.
	NonConfidentialAmountNonConfidentialAssetType RecordType = iota

	// ConfidentialAmountNonConfidentialAssetType is a record that hides its amount.
	ConfidentialAmountNonConfidentialAssetType

	// NonConfidentialAmountConfidentialAssetType is a record that hides its asset type.
	NonConfidentialAmountConfidentialAssetType

	// ConfidentialAmountConfidentialAssetType is a record that hides both its amount and its asset type.
	ConfidentialAmountConfidentialAssetType
)

// RecordType encodes the confidentiality class of a record.
type RecordType uint8

// RecordTypeFromFlags returns the RecordType that hides the given fields.
func RecordTypeFromFlags(amountHidden, assetHidden bool) RecordType {
	switch {
	case amountHidden && assetHidden:
		return ConfidentialAmountConfidentialAssetType
	case amountHidden:
		return ConfidentialAmountNonConfidentialAssetType
	case assetHidden:
		return NonConfidentialAmountConfidentialAssetType
	default:
		return NonConfidentialAmountNonConfidentialAssetType
	}
}

// RecordTypeFromString parses the confidentiality modes that are accepted by the wallet commands ("none", "amount",
// "asset" and "amount-asset").
func RecordTypeFromString(confidentiality string) (RecordType, error) {
	switch confidentiality {
	case "", "none":
		return NonConfidentialAmountNonConfidentialAssetType, nil
	case "amount":
		return ConfidentialAmountNonConfidentialAssetType, nil
	case "asset":
		return NonConfidentialAmountConfidentialAssetType, nil
	case "amount-asset":
		return ConfidentialAmountConfidentialAssetType, nil
	default:
		return 0, errors.Errorf("unsupported confidentiality mode %q", confidentiality)
	}
}

// AmountHidden returns true if records of this type hide their amount.
func (r RecordType) AmountHidden() bool {
	return r == ConfidentialAmountNonConfidentialAssetType || r == ConfidentialAmountConfidentialAssetType
}

// AssetHidden returns true if records of this type hide their asset type.
func (r RecordType) AssetHidden() bool {
	return r == NonConfidentialAmountConfidentialAssetType || r == ConfidentialAmountConfidentialAssetType
}

// Valid returns true if the RecordType is one of the known confidentiality classes.
func (r RecordType) Valid() bool {
	return r <= ConfidentialAmountConfidentialAssetType
}

// String returns a human readable representation of the RecordType.
func (r RecordType) String() string {
	if !r.Valid() {
		return "UnknownRecordType"
	}

	return [...]string{
		"NonConfidentialAmount_NonConfidentialAssetType",
		"ConfidentialAmount_NonConfidentialAssetType",
		"NonConfidentialAmount_ConfidentialAssetType",
		"ConfidentialAmount_ConfidentialAssetType",
	}[r]
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
