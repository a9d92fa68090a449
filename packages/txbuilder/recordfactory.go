package txbuilder

import (
	"io"

	"github.com/cockroachdb/errors"

	"github.com/iotaledger/xfrwallet/packages/xfr"
	"github.com/iotaledger/xfrwallet/packages/xfr/note"
)

// RecordFactory turns templates and opened records into the records that are handed to the note engine.
type RecordFactory struct {
	engine note.Engine
}

// NewRecordFactory creates a RecordFactory that uses the given engine.
func NewRecordFactory(engine note.Engine) *RecordFactory {
	return &RecordFactory{engine: engine}
}

// Output materializes a new output record. The identity credential is optional.
func (r *RecordFactory) Output(rng io.Reader, template *xfr.Template, credential *xfr.IdentityCredential) (record *note.AssetRecord, err error) {
	if credential != nil {
		record, err = r.engine.RecordFromTemplateWithIdentity(rng, template, credential)
	} else {
		record, err = r.engine.RecordFromTemplate(rng, template)
	}
	if err != nil {
		return nil, errors.Wrapf(ErrNoteEngine, "failed to create output record: %s", err.Error())
	}

	return record, nil
}

// Input wraps an opened record so that it can be spent.
func (r *RecordFactory) Input(rng io.Reader, record *xfr.OpenRecord, policies xfr.TracingPolicies) (*note.AssetRecord, error) {
	assetRecord, err := r.engine.RecordFromOpenRecord(rng, record, policies)
	if err != nil {
		return nil, errors.Wrapf(ErrNoteEngine, "failed to create input record: %s", err.Error())
	}

	return assetRecord, nil
}

// Change creates the record that pays the unspent remainder of a planned input back to the owner of the input. The
// change keeps the asset type, the record type and the tracing policies of the input.
func (r *RecordFactory) Change(rng io.Reader, input *PlannedInput) (*note.AssetRecord, error) {
	openRecord := input.Record.OpenRecord
	template := xfr.NewTemplate(input.Change(), openRecord.AssetType, openRecord.RecordType(), openRecord.PublicKey).
		WithTracing(input.Policies.Clone())

	record, err := r.engine.RecordFromTemplate(rng, template)
	if err != nil {
		return nil, errors.Wrapf(ErrNoteEngine, "failed to create change record: %s", err.Error())
	}

	return record, nil
}
