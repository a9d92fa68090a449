package xfr

import (
	"encoding/hex"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/iotaledger/hive.go/marshalutil"
	"github.com/mr-tron/base58"
)

// region AssetType ////////////////////////////////////////////////////////////////////////////////////////////////////

// AssetTypeLength represents the length of an AssetType (amount of bytes).
const AssetTypeLength = 32

// AssetType identifies the kind of value that is held by a record.
type AssetType [AssetTypeLength]byte

// NativeAssetType is the zero value of the AssetType and represents the native token that is used to pay fees.
var NativeAssetType = AssetType{}

// AssetTypeFromBytes unmarshals an AssetType from a sequence of bytes.
func AssetTypeFromBytes(bytes []byte) (assetType AssetType, consumedBytes int, err error) {
	marshalUtil := marshalutil.New(bytes)
	assetType, err = AssetTypeFromMarshalUtil(marshalUtil)
	consumedBytes = marshalUtil.ReadOffset()

	return
}

// AssetTypeFromMarshalUtil parses an AssetType from the given MarshalUtil.
func AssetTypeFromMarshalUtil(marshalUtil *marshalutil.MarshalUtil) (assetType AssetType, err error) {
	assetTypeBytes, err := marshalUtil.ReadBytes(AssetTypeLength)
	if err != nil {
		err = errors.Wrap(err, "failed to parse AssetType")
		return
	}
	copy(assetType[:], assetTypeBytes)

	return
}

// AssetTypeFromString parses an AssetType from its human-readable form. It accepts "FRA" for the native asset, a 0x
// prefixed hex string (the form used by the ledger's balance queries) or a base58 encoded string.
func AssetTypeFromString(assetTypeString string) (assetType AssetType, err error) {
	var assetTypeBytes []byte
	switch {
	case assetTypeString == "FRA":
		return NativeAssetType, nil
	case strings.HasPrefix(assetTypeString, "0x"):
		if assetTypeBytes, err = hex.DecodeString(assetTypeString[2:]); err != nil {
			return assetType, errors.Wrapf(ErrParseBytesFailed, "failed to decode hex AssetType %s: %s", assetTypeString, err.Error())
		}
	default:
		if assetTypeBytes, err = base58.Decode(assetTypeString); err != nil {
			return assetType, errors.Wrapf(ErrParseBytesFailed, "failed to decode base58 AssetType %s: %s", assetTypeString, err.Error())
		}
	}
	if len(assetTypeBytes) != AssetTypeLength {
		return assetType, errors.Wrapf(ErrParseBytesFailed, "AssetType must be %d bytes long, got %d", AssetTypeLength, len(assetTypeBytes))
	}
	copy(assetType[:], assetTypeBytes)

	return assetType, nil
}

// IsNative returns true if the AssetType is the native fee asset.
func (a AssetType) IsNative() bool {
	return a == NativeAssetType
}

// Bytes marshals the AssetType into a sequence of bytes.
func (a AssetType) Bytes() []byte {
	return a[:]
}

// Base58 returns a base58 encoded version of the AssetType.
func (a AssetType) Base58() string {
	return base58.Encode(a.Bytes())
}

// Hex returns the 0x prefixed hex form of the AssetType.
func (a AssetType) Hex() string {
	return "0x" + hex.EncodeToString(a.Bytes())
}

// String creates a human readable string of the AssetType.
func (a AssetType) String() string {
	if a.IsNative() {
		return "FRA"
	}

	return a.Base58()
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
