package txbuilder

const (
	// StandardTransferType is a regular transfer of value.
	StandardTransferType TransferType = iota

	// DebtSwapTransferType is a transfer that settles a debt.
	DebtSwapTransferType
)

// TransferType is the declared kind of a transfer.
type TransferType uint8

// String returns a human readable representation of the TransferType.
func (t TransferType) String() string {
	switch t {
	case StandardTransferType:
		return "Standard"
	case DebtSwapTransferType:
		return "DebtSwap"
	default:
		return "UnknownTransferType"
	}
}
