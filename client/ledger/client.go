// Package ledger implements the access to the ledger: fetching (and opening) the records owned by a key and submitting
// finished transfers.
package ledger

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/go-resty/resty/v2"
	"github.com/iotaledger/hive.go/crypto/ed25519"
	"github.com/iotaledger/hive.go/logger"
	"github.com/sony/gobreaker"

	"github.com/iotaledger/xfrwallet/packages/xfr"
)

const (
	routeOwnedUTXOs        = "/owned_utxos/{publicKey}"
	routeSubmitTransaction = "/submit_transaction"
)

// Client is a wrapper over the query and submission APIs of a ledger node.
type Client struct {
	query   *resty.Client
	submit  *resty.Client
	breaker *gobreaker.CircuitBreaker
	log     *logger.Logger
}

// NewClient creates a Client for the given query and submission base URLs (e.g. http://127.0.0.1:8668).
func NewClient(queryURL, submitURL string, options ...Option) (*Client, error) {
	opts, err := buildOptions(options...)
	if err != nil {
		return nil, err
	}

	client := &Client{
		query:  resty.New().SetHostURL(queryURL).SetTimeout(opts.Timeout),
		submit: resty.New().SetHostURL(submitURL).SetTimeout(opts.Timeout),
		log:    opts.Logger,
	}
	client.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "ledger-" + queryURL,
		Timeout: opts.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.MaxConsecutiveFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			client.log.Warnw("ledger circuit breaker changed state", "name", name, "from", from.String(), "to", to.String())
		},
	})

	return client, nil
}

// OwnedUTXOs returns the unspent outputs owned by the given public key.
func (c *Client) OwnedUTXOs(ctx context.Context, publicKey ed25519.PublicKey) (response OwnedUTXOsResponse, err error) {
	err = c.execute(func() (*resty.Response, error) {
		return c.query.R().
			SetContext(ctx).
			SetPathParam("publicKey", xfr.PublicKeyToBase64URL(publicKey)).
			Get(routeOwnedUTXOs)
	}, &response)

	return response, err
}

// SubmitTransaction posts the canonical bytes of a transfer operation and returns the handle the ledger assigned to it.
func (c *Client) SubmitTransaction(ctx context.Context, operation []byte) (handle SubmitTransactionResponse, err error) {
	err = c.execute(func() (*resty.Response, error) {
		return c.submit.R().
			SetContext(ctx).
			SetBody(&SubmitTransactionRequest{Operation: operation}).
			Post(routeSubmitTransaction)
	}, &handle)

	return handle, err
}

// execute runs the request through the circuit breaker and decodes the response into decodeTo. Rejected requests (4xx)
// do not count as failures of the ledger.
func (c *Client) execute(request func() (*resty.Response, error), decodeTo interface{}) error {
	var rejection error
	_, err := c.breaker.Execute(func() (interface{}, error) {
		response, err := request()
		if err != nil {
			return nil, err
		}

		if err = interpretBody(response, decodeTo); err != nil && response.StatusCode() < http.StatusInternalServerError {
			rejection = err
			return nil, nil
		}

		return nil, err
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return errors.Wrapf(ErrLedgerUnavailable, "%s", err.Error())
	}
	if err != nil {
		return err
	}

	return rejection
}

func interpretBody(response *resty.Response, decodeTo interface{}) error {
	if response.StatusCode() == http.StatusOK || response.StatusCode() == http.StatusCreated {
		if err := json.Unmarshal(response.Body(), decodeTo); err != nil {
			return errors.Wrap(err, "unable to decode response body")
		}

		return nil
	}

	errRes := &errorResponse{}
	if err := json.Unmarshal(response.Body(), errRes); err != nil || errRes.Error == "" {
		errRes.Error = string(response.Body())
	}

	switch response.StatusCode() {
	case http.StatusInternalServerError:
		return errors.Wrap(ErrInternalServerError, errRes.Error)
	case http.StatusNotFound:
		return errors.Wrap(ErrNotFound, response.Request.URL)
	case http.StatusBadRequest:
		return errors.Wrap(ErrBadRequest, errRes.Error)
	}

	return errors.Wrapf(ErrUnknownError, "%d %s", response.StatusCode(), errRes.Error)
}
