package ledger

import (
	"context"
	"sort"
	"sync"

	"github.com/ReneKroon/ttlcache/v2"
	"github.com/cockroachdb/errors"
	"github.com/iotaledger/hive.go/crypto/ed25519"
	"github.com/iotaledger/hive.go/logger"
	"github.com/panjf2000/ants/v2"

	"github.com/iotaledger/xfrwallet/packages/coinselection"
	"github.com/iotaledger/xfrwallet/packages/txbuilder"
	"github.com/iotaledger/xfrwallet/packages/xfr"
	"github.com/iotaledger/xfrwallet/packages/xfr/note"
)

// RecordSource fetches the records owned by a key from the ledger and opens them with the note engine.
type RecordSource struct {
	client *Client
	engine note.Engine
	cache  *ttlcache.Cache
	pool   *ants.Pool
	log    *logger.Logger
}

// NewRecordSource creates a RecordSource. Close releases its worker pool and cache.
func NewRecordSource(client *Client, engine note.Engine, options ...Option) (*RecordSource, error) {
	opts, err := buildOptions(options...)
	if err != nil {
		return nil, err
	}

	cache := ttlcache.NewCache()
	if err = cache.SetTTL(opts.CacheTTL); err != nil {
		return nil, errors.WithStack(err)
	}

	pool, err := ants.NewPool(opts.OpenWorkers, ants.WithNonblocking(false))
	if err != nil {
		_ = cache.Close()
		return nil, errors.WithStack(err)
	}

	return &RecordSource{
		client: client,
		engine: engine,
		cache:  cache,
		pool:   pool,
		log:    opts.Logger,
	}, nil
}

// OwnedRecords returns the opened records owned by the key pair, ordered by SID. Records that can not be opened with the
// key pair are skipped.
func (r *RecordSource) OwnedRecords(ctx context.Context, keyPair ed25519.KeyPair) (ownedRecords []*coinselection.OwnedRecord, err error) {
	utxos, err := r.client.OwnedUTXOs(ctx, keyPair.PublicKey)
	if err != nil {
		return nil, errors.Wrapf(ErrOwnedRecordSource, "failed to fetch owned utxos of %s: %s", keyPair.PublicKey, err.Error())
	}

	var (
		mutex sync.Mutex
		wg    sync.WaitGroup
	)
	for sid, utxo := range utxos {
		if err = ctx.Err(); err != nil {
			break
		}

		sid, utxo := sid, utxo
		wg.Add(1)
		if err = r.pool.Submit(func() {
			defer wg.Done()

			record, openErr := r.openRecord(keyPair, sid, utxo)
			if openErr != nil {
				r.log.Debugw("skipping owned utxo that can not be opened", "sid", sid, "err", openErr)
				return
			}

			mutex.Lock()
			defer mutex.Unlock()
			ownedRecords = append(ownedRecords, &coinselection.OwnedRecord{SID: sid, Record: record})
		}); err != nil {
			wg.Done()
			break
		}
	}
	wg.Wait()

	if err != nil {
		return nil, errors.Wrapf(ErrOwnedRecordSource, "failed to open owned utxos of %s: %s", keyPair.PublicKey, err.Error())
	}

	sort.Slice(ownedRecords, func(i, j int) bool {
		return ownedRecords[i].SID < ownedRecords[j].SID
	})

	r.log.Debugw("fetched owned records", "owner", keyPair.PublicKey.String(), "utxos", len(utxos), "opened", len(ownedRecords))

	return ownedRecords, nil
}

// OwnedBalance returns the total amount of every asset type owned by the key pair.
func (r *RecordSource) OwnedBalance(ctx context.Context, keyPair ed25519.KeyPair) (balance map[xfr.AssetType]uint64, err error) {
	ownedRecords, err := r.OwnedRecords(ctx, keyPair)
	if err != nil {
		return nil, err
	}

	balance = make(map[xfr.AssetType]uint64)
	for _, ownedRecord := range ownedRecords {
		balance[ownedRecord.Record.AssetType] += ownedRecord.Record.Amount
	}

	return balance, nil
}

// SubmitTransaction submits the operation to the ledger and returns the handle of the transaction.
func (r *RecordSource) SubmitTransaction(ctx context.Context, operation *txbuilder.TransferOperation) (handle string, err error) {
	response, err := r.client.SubmitTransaction(ctx, operation.Bytes())
	if err != nil {
		return "", errors.Wrapf(ErrOwnedRecordSource, "failed to submit transaction %x: %s", operation.Body().ID(), err.Error())
	}

	r.log.Infow("submitted transaction", "body", operation.Body().ID(), "handle", string(response))

	return string(response), nil
}

// Close releases the worker pool and the cache.
func (r *RecordSource) Close() error {
	r.pool.Release()

	return r.cache.Close()
}

func (r *RecordSource) openRecord(keyPair ed25519.KeyPair, sid xfr.TxoSID, utxo OwnedUTXO) (*xfr.OpenRecord, error) {
	cacheKey := keyPair.PublicKey.String() + "/" + sid.String()
	if cached, err := r.cache.Get(cacheKey); err == nil {
		return cached.(*xfr.OpenRecord), nil
	}

	record, err := r.engine.OpenRecord(utxo.Output.Record, utxo.OwnerMemo, keyPair)
	if err != nil {
		return nil, err
	}
	if err = r.cache.Set(cacheKey, record); err != nil {
		r.log.Warnw("failed to cache opened record", "sid", sid, "err", err)
	}

	return record, nil
}
