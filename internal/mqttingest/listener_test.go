package mqttingest

import (
	"context"
	"testing"

	"capture-backend/internal/capture"
	"capture-backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingIngester struct {
	got []capture.IngestInput
}

func (r *recordingIngester) Ingest(_ context.Context, in capture.IngestInput) (capture.IngestResult, error) {
	r.got = append(r.got, in)
	return capture.IngestResult{SessionID: uint(len(r.got)), TotalEntryCount: len(in.Entries)}, nil
}

func TestHandleMessage(t *testing.T) {
	rec := &recordingIngester{}
	l := NewListener(config.MQTTConfig{Topic: "capture/+/sessions"}, rec, zap.NewNop())

	res, err := l.HandleMessage(context.Background(), "capture/tc58-0042/sessions",
		[]byte(`{"device_info":"TC58","barcodes":[{"value":"x","symbology":1,"quantity":2}]}`))
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.SessionID)

	require.Len(t, rec.got, 1)
	in := rec.got[0]
	assert.Equal(t, "TC58", in.DeviceLabel)
	assert.Equal(t, "tc58-0042", in.DeviceAddress)
	require.Len(t, in.Entries, 1)
	assert.Equal(t, 2, *in.Entries[0].Quantity)
}

func TestHandleMessage_KeepsExplicitAddress(t *testing.T) {
	rec := &recordingIngester{}
	l := NewListener(config.MQTTConfig{}, rec, zap.NewNop())

	_, err := l.HandleMessage(context.Background(), "capture/dev/sessions",
		[]byte(`{"device_ip":"10.0.0.7","barcodes":[]}`))
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.7", rec.got[0].DeviceAddress)
	assert.NotNil(t, rec.got[0].Entries)
}

func TestHandleMessage_Malformed(t *testing.T) {
	rec := &recordingIngester{}
	l := NewListener(config.MQTTConfig{}, rec, zap.NewNop())

	_, err := l.HandleMessage(context.Background(), "capture/dev/sessions", []byte(`not json`))
	assert.ErrorIs(t, err, ErrMalformedPayload)

	_, err = l.HandleMessage(context.Background(), "capture/dev/sessions", []byte(`{"device_info":"x"}`))
	assert.ErrorIs(t, err, ErrMalformedPayload)
	assert.Empty(t, rec.got)
}

func TestDeviceFromTopic(t *testing.T) {
	assert.Equal(t, "dev-1", DeviceFromTopic("capture/dev-1/sessions"))
	assert.Equal(t, "", DeviceFromTopic("capture"))
}

func TestNewListener_GeneratesClientID(t *testing.T) {
	l := NewListener(config.MQTTConfig{}, &recordingIngester{}, zap.NewNop())
	assert.Contains(t, l.cfg.ClientID, "capture-backend-")
}
