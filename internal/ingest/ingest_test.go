package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/dgallion1/creditgest/internal/extract"
	"github.com/dgallion1/creditgest/internal/parser"
	"github.com/dgallion1/creditgest/internal/report"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const doc = `<INProfileResponse>
  <Current_Applicant_Details><First_Name>Asha</First_Name><Last_Name>Rao</Last_Name></Current_Applicant_Details>
  <CAIS_Account_DETAILS><Subscriber_Name>ICICI</Subscriber_Name><Account_Number>42</Account_Number></CAIS_Account_DETAILS>
</INProfileResponse>`

type memStore struct {
	mu    sync.Mutex
	saved []report.Stored
	err   error
}

func (m *memStore) Create(_ context.Context, r report.Report) (report.Stored, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return report.Stored{}, m.err
	}
	st := report.Stored{ID: fmt.Sprintf("id-%d", len(m.saved)+1), Report: r}
	m.saved = append(m.saved, st)
	return st, nil
}

type countingExtractor struct {
	inner Extractor
	mu    sync.Mutex
	calls int
}

func (c *countingExtractor) Extract(raw []byte) (report.Report, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return c.inner.Extract(raw)
}

func newTestService(t *testing.T, opts Options) (*Service, *countingExtractor, *memStore) {
	t.Helper()
	ex := &countingExtractor{inner: extract.NewExtractor(nil, nil, nil)}
	st := &memStore{}
	svc, err := NewService(ex, st, nil, nil, opts)
	require.NoError(t, err)
	return svc, ex, st
}

func TestIngest_StoresReport(t *testing.T) {
	svc, _, st := newTestService(t, Options{})

	got, err := svc.Ingest(context.Background(), "a.xml", []byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "id-1", got.ID)
	assert.Equal(t, "Asha Rao", got.Name)
	require.Len(t, got.Accounts, 1)
	assert.Len(t, st.saved, 1)
	assert.Equal(t, 1, svc.Stats().Snapshot().Count)
}

func TestIngest_CacheSkipsReextraction(t *testing.T) {
	svc, ex, st := newTestService(t, Options{})
	ctx := context.Background()

	first, err := svc.Ingest(ctx, "a.xml", []byte(doc))
	require.NoError(t, err)
	second, err := svc.Ingest(ctx, "b.xml", []byte(doc))
	require.NoError(t, err)

	assert.Equal(t, 1, ex.calls)
	assert.Len(t, st.saved, 2, "every upload creates a record")
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, first.Report, second.Report)

	// Mutating a returned record must not leak into the cache.
	second.Accounts[0].Bank = "changed"
	third, err := svc.Ingest(ctx, "c.xml", []byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "ICICI", third.Accounts[0].Bank)
}

func TestIngest_CacheDisabled(t *testing.T) {
	svc, ex, _ := newTestService(t, Options{CacheSize: -1})
	for range 2 {
		_, err := svc.Ingest(context.Background(), "a.xml", []byte(doc))
		require.NoError(t, err)
	}
	assert.Equal(t, 2, ex.calls)
}

func TestIngest_Gzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(doc))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	svc, _, _ := newTestService(t, Options{})
	got, err := svc.Ingest(context.Background(), "a.xml.gz", buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", got.Name)
}

func TestIngest_Zstd(t *testing.T) {
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	compressed := enc.EncodeAll([]byte(doc), nil)
	require.NoError(t, enc.Close())

	svc, _, _ := newTestService(t, Options{})
	got, err := svc.Ingest(context.Background(), "a.xml.zst", compressed)
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", got.Name)
}

func TestIngest_InvalidXML(t *testing.T) {
	svc, _, st := newTestService(t, Options{})

	_, err := svc.Ingest(context.Background(), "bad.xml", []byte("<a><b></a>"))
	require.Error(t, err)
	assert.True(t, parser.IsStructural(err))
	assert.Empty(t, st.saved)

	snap := svc.Stats().Snapshot()
	assert.Equal(t, 1, snap.Failures)
}

func TestIngest_StoreError(t *testing.T) {
	svc, _, st := newTestService(t, Options{})
	st.err = errors.New("disk full")

	_, err := svc.Ingest(context.Background(), "a.xml", []byte(doc))
	assert.ErrorContains(t, err, "disk full")
	assert.False(t, parser.IsStructural(err))
}

func TestIngest_CanceledWhileWaiting(t *testing.T) {
	svc, _, _ := newTestService(t, Options{MaxConcurrent: 1, CacheSize: -1})
	svc.sem <- struct{}{}
	defer func() { <-svc.sem }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Ingest(ctx, "a.xml", []byte(doc))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDecompress(t *testing.T) {
	plain := []byte("<a/>")
	got, err := Decompress(plain, 10)
	require.NoError(t, err)
	assert.Equal(t, plain, got)

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err = zw.Write(bytes.Repeat([]byte("x"), 100))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = Decompress(buf.Bytes(), 50)
	assert.ErrorIs(t, err, ErrTooLarge)

	out, err := Decompress(buf.Bytes(), 0)
	require.NoError(t, err)
	assert.Len(t, out, 100)

	_, err = Decompress([]byte{0x1f, 0x8b, 0x00}, 10)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestContentHashHex(t *testing.T) {
	h1 := ContentHashHex([]byte("aaa"))
	assert.Len(t, h1, 64)
	assert.Equal(t, h1, ContentHashHex([]byte("aaa")))
	assert.NotEqual(t, h1, ContentHashHex([]byte("bbb")))
}
