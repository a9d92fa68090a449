package txbuilder

import (
	"github.com/cockroachdb/errors"
	"github.com/iotaledger/hive.go/marshalutil"

	"github.com/iotaledger/xfrwallet/packages/xfr"
)

// NotePolicies holds the tracing policies and identity commitments of a transfer, aligned positionally with its inputs
// and outputs.
type NotePolicies struct {
	InputsTracing   []xfr.TracingPolicies
	InputsIdentity  []*xfr.IdentityCommitment
	OutputsTracing  []xfr.TracingPolicies
	OutputsIdentity []*xfr.IdentityCommitment
}

// EmptyNotePolicies returns policies without any tracing for the given number of inputs and outputs.
func EmptyNotePolicies(inputCount, outputCount int) *NotePolicies {
	return &NotePolicies{
		InputsTracing:   make([]xfr.TracingPolicies, inputCount),
		InputsIdentity:  make([]*xfr.IdentityCommitment, inputCount),
		OutputsTracing:  make([]xfr.TracingPolicies, outputCount),
		OutputsIdentity: make([]*xfr.IdentityCommitment, outputCount),
	}
}

// checkArity makes sure that there is exactly one entry per input and output.
func (n *NotePolicies) checkArity(inputCount, outputCount int) error {
	if len(n.InputsTracing) != inputCount || len(n.InputsIdentity) != inputCount ||
		len(n.OutputsTracing) != outputCount || len(n.OutputsIdentity) != outputCount {
		return errors.Wrapf(ErrPolicyArityMismatch, "expected %d inputs and %d outputs, got policies for %d/%d inputs and %d/%d outputs",
			inputCount, outputCount,
			len(n.InputsTracing), len(n.InputsIdentity),
			len(n.OutputsTracing), len(n.OutputsIdentity),
		)
	}

	return nil
}

// clone returns a copy that does not share any slices with the original.
func (n *NotePolicies) clone() *NotePolicies {
	cloned := &NotePolicies{
		InputsTracing:   make([]xfr.TracingPolicies, len(n.InputsTracing)),
		InputsIdentity:  append([]*xfr.IdentityCommitment(nil), n.InputsIdentity...),
		OutputsTracing:  make([]xfr.TracingPolicies, len(n.OutputsTracing)),
		OutputsIdentity: append([]*xfr.IdentityCommitment(nil), n.OutputsIdentity...),
	}
	for i, policies := range n.InputsTracing {
		cloned.InputsTracing[i] = policies.Clone()
	}
	for i, policies := range n.OutputsTracing {
		cloned.OutputsTracing[i] = policies.Clone()
	}

	return cloned
}

// Bytes returns a marshaled version of the NotePolicies.
func (n *NotePolicies) Bytes() []byte {
	marshalUtil := marshalutil.New()
	writePolicies(marshalUtil, n.InputsTracing, n.InputsIdentity)
	writePolicies(marshalUtil, n.OutputsTracing, n.OutputsIdentity)

	return marshalUtil.Bytes()
}

func writePolicies(marshalUtil *marshalutil.MarshalUtil, tracing []xfr.TracingPolicies, identities []*xfr.IdentityCommitment) {
	marshalUtil.WriteUint32(uint32(len(tracing)))
	for _, policies := range tracing {
		marshalUtil.WriteBytes(policies.Bytes())
	}

	marshalUtil.WriteUint32(uint32(len(identities)))
	for _, identity := range identities {
		marshalUtil.WriteBool(identity != nil)
		if identity != nil {
			marshalUtil.WriteBytes(identity.Bytes())
		}
	}
}
