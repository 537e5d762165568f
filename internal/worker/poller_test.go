package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/adevcorp-0/xero-shopify/internal/domain/paymentretry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQueue struct {
	pending  []*paymentretry.Retry
	done     []string
	released map[string]string
	fetchErr error
}

func (f *fakeQueue) FetchBatch(_ context.Context, limit int) ([]*paymentretry.Retry, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if len(f.pending) > limit {
		return f.pending[:limit], nil
	}
	return f.pending, nil
}

func (f *fakeQueue) MarkDone(_ context.Context, ids []string) error {
	f.done = append(f.done, ids...)
	return nil
}

func (f *fakeQueue) Release(_ context.Context, id string, lastError string) error {
	if f.released == nil {
		f.released = map[string]string{}
	}
	f.released[id] = lastError
	return nil
}

type fakeRecorder struct {
	payments map[string]float64
	failFor  map[string]error
}

func (f *fakeRecorder) CreatePayment(_ context.Context, invoiceID string, amount float64, _ string) error {
	if err := f.failFor[invoiceID]; err != nil {
		return err
	}
	if f.payments == nil {
		f.payments = map[string]float64{}
	}
	f.payments[invoiceID] = amount
	return nil
}

func TestProcessBatchRecordsPayments(t *testing.T) {
	queue := &fakeQueue{pending: []*paymentretry.Retry{
		{ID: "r1", InvoiceID: "inv-1", Amount: 44.98, AccountCode: "090"},
		{ID: "r2", InvoiceID: "inv-2", Amount: 10, AccountCode: "090"},
	}}
	recorder := &fakeRecorder{}

	p := NewPaymentRetryPoller(queue, recorder)
	require.NoError(t, p.processBatch(context.Background()))

	assert.ElementsMatch(t, []string{"r1", "r2"}, queue.done)
	assert.Equal(t, 44.98, recorder.payments["inv-1"])
	assert.Empty(t, queue.released)
}

func TestProcessBatchReleasesFailures(t *testing.T) {
	queue := &fakeQueue{pending: []*paymentretry.Retry{
		{ID: "r1", InvoiceID: "inv-1", Amount: 44.98, AccountCode: "090"},
		{ID: "r2", InvoiceID: "inv-2", Amount: 10, AccountCode: "090"},
	}}
	recorder := &fakeRecorder{failFor: map[string]error{
		"inv-2": errors.New("still rate limited"),
	}}

	p := NewPaymentRetryPoller(queue, recorder)
	require.NoError(t, p.processBatch(context.Background()))

	assert.Equal(t, []string{"r1"}, queue.done)
	assert.Equal(t, "still rate limited", queue.released["r2"])
}

func TestProcessBatchEmptyQueue(t *testing.T) {
	queue := &fakeQueue{}
	p := NewPaymentRetryPoller(queue, &fakeRecorder{})

	require.NoError(t, p.processBatch(context.Background()))
	assert.Empty(t, queue.done)
}

func TestProcessBatchFetchError(t *testing.T) {
	queue := &fakeQueue{fetchErr: errors.New("db down")}
	p := NewPaymentRetryPoller(queue, &fakeRecorder{})

	assert.Error(t, p.processBatch(context.Background()))
}
