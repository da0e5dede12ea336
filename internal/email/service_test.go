package email

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type captureDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *captureDialer) DialAndSend(m ...*gomail.Message) error {
	if d.err != nil {
		return d.err
	}
	d.sent = append(d.sent, m...)
	return nil
}

func TestSend(t *testing.T) {
	d := &captureDialer{}
	svc := NewService(d, "desk@clinic.local")

	require.NoError(t, svc.Send(context.Background(), "client@example.com", "Appointment confirmed", "See you Tuesday"))
	require.Len(t, d.sent, 1)

	m := d.sent[0]
	assert.Equal(t, []string{"desk@clinic.local"}, m.GetHeader("From"))
	assert.Equal(t, []string{"client@example.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"Appointment confirmed"}, m.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "See you Tuesday")
}

func TestSendErrors(t *testing.T) {
	d := &captureDialer{err: errors.New("554 relay denied")}
	err := NewService(d, "desk@clinic.local").Send(context.Background(), "client@example.com", "s", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relay denied")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ok := &captureDialer{}
	assert.ErrorIs(t, NewService(ok, "desk@clinic.local").Send(ctx, "client@example.com", "s", "b"), context.Canceled)
	assert.Empty(t, ok.sent)
}
