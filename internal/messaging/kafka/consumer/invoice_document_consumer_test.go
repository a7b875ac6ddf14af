package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"cep360-payroll/internal/events"
	"cep360-payroll/internal/invoice"
	invoiceerrors "cep360-payroll/internal/invoice/errors"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeReader struct {
	mu        sync.Mutex
	messages  []kafkago.Message
	committed []int64
	cancel    context.CancelFunc
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		r.cancel()
		return kafkago.Message{}, context.Canceled
	}
	msg := r.messages[0]
	r.messages = r.messages[1:]
	return msg, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafkago.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

type fakeGenerator struct {
	calls map[string]int
	errs  map[string][]error
}

func (g *fakeGenerator) GenerateDocument(_ context.Context, invoiceID string) (invoice.UpdateInvoiceResult, error) {
	if g.calls == nil {
		g.calls = map[string]int{}
	}
	n := g.calls[invoiceID]
	g.calls[invoiceID]++
	if errs := g.errs[invoiceID]; n < len(errs) {
		return invoice.UpdateInvoiceResult{}, errs[n]
	}
	url := "https://cdn.example.com/" + invoiceID + ".pdf"
	return invoice.UpdateInvoiceResult{DocumentURL: &url}, nil
}

func eventMessage(t *testing.T, offset int64, invoiceID string) kafkago.Message {
	t.Helper()
	body, err := json.Marshal(events.InvoiceDocumentRequestedEvent{
		EventType: events.InvoiceDocumentRequestedType,
		InvoiceID: invoiceID,
		Reason:    events.ReasonPublishFailed,
	})
	assert.NoError(t, err)
	return kafkago.Message{Offset: offset, Value: body}
}

func TestConsumeInvoiceDocumentRequested(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &fakeReader{cancel: cancel, messages: []kafkago.Message{
		{Offset: 1, Value: []byte("not json")},
		eventMessage(t, 2, "inv-ok"),
		eventMessage(t, 3, "inv-flaky"),
		eventMessage(t, 4, "inv-missing"),
	}}
	generator := &fakeGenerator{errs: map[string][]error{
		"inv-flaky":   {invoiceerrors.ErrDocumentPublishFailed, errors.New("timeout")},
		"inv-missing": {invoiceerrors.ErrInvoiceNotFound},
	}}

	done := make(chan struct{})
	go func() {
		ConsumeInvoiceDocumentRequested(ctx, reader, generator, zap.NewNop(), time.Millisecond)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("consumer did not stop")
	}

	assert.Equal(t, []int64{1, 2, 3, 4}, reader.committed)
	assert.Equal(t, 1, generator.calls["inv-ok"])
	assert.Equal(t, 3, generator.calls["inv-flaky"])
	assert.Equal(t, 1, generator.calls["inv-missing"])
}

func TestGenerateWithRetry_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	generator := &fakeGenerator{errs: map[string][]error{
		"inv-1": {errors.New("storage down"), errors.New("storage down")},
	}}

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	ok := generateWithRetry(ctx, generator, "inv-1", zap.NewNop(), time.Hour)
	assert.False(t, ok, "an unsettled message must not be committed")
	assert.Equal(t, 1, generator.calls["inv-1"])
}
