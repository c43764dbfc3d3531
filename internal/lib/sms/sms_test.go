package sms

import (
	"context"
	"errors"
	"testing"

	"github.com/plivo/plivo-go"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/bctw-api/internal/config"
	"github.com/deppfellow/bctw-api/internal/model"
)

type fakeMessages struct {
	created []plivo.MessageCreateParams
	err     error
}

func (f *fakeMessages) Create(params plivo.MessageCreateParams) (*plivo.MessageCreateResponseBody, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, params)
	return &plivo.MessageCreateResponseBody{MessageUUID: []string{"uuid-1"}}, nil
}

func newTestClient(m messageCreator) *Client {
	logger := zerolog.Nop()
	return &Client{messages: m, from: "+12505550000", logger: &logger}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "250-555-0100", want: "+12505550100"},
		{in: "(250) 555 0100", want: "+12505550100"},
		{in: "1 250 555 0100", want: "+12505550100"},
		{in: "+44 20 7946 0958", want: "+442079460958"},
		{in: "555-0100", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, test := range tests {
		t.Run(test.in, func(t *testing.T) {
			got, err := NormalizePhone(test.in)
			if test.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.want, got)
		})
	}
}

func TestClient_Send(t *testing.T) {
	m := &fakeMessages{}
	c := newTestClient(m)

	require.NoError(t, c.Send(context.Background(), "250 555 0100", "hello"))

	require.Len(t, m.created, 1)
	assert.Equal(t, plivo.MessageCreateParams{Src: "+12505550000", Dst: "+12505550100", Text: "hello"}, m.created[0])
}

func TestClient_SendRejectsBadNumber(t *testing.T) {
	m := &fakeMessages{}
	c := newTestClient(m)

	assert.Error(t, c.Send(context.Background(), "123", "hello"))
	assert.Empty(t, m.created)
}

func TestClient_SendWrapsProviderError(t *testing.T) {
	c := newTestClient(&fakeMessages{err: errors.New("insufficient credit")})

	err := c.Send(context.Background(), "2505550100", "hello")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient credit")
}

func TestClient_SendHonoursCancellation(t *testing.T) {
	m := &fakeMessages{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, newTestClient(m).Send(ctx, "2505550100", "hello"), context.Canceled)
	assert.Empty(t, m.created)
}

func TestNewClient_DisabledWithoutCredentials(t *testing.T) {
	logger := zerolog.Nop()
	c, err := NewClient(&config.Config{Integration: &config.IntegrationConfig{}}, &logger)

	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestMortalityAlertText(t *testing.T) {
	text := MortalityAlertText(model.MortalityAlertEvent{
		FirstName: "Jane",
		AnimalID:  "M-001",
		Species:   "Caribou",
		DeviceID:  101,
		Frequency: decimal.RequireFromString("150.05"),
		DateTime:  "2021-06-01T10:15:00-07:00",
		Latitude:  53.91,
		Longitude: -122.74,
	})

	assert.Equal(t, "BCTW mortality alert for Jane: animal M-001 (Caribou), device 101 on 150.05 MHz "+
		"at 2021-06-01T10:15:00-07:00. Last location 53.91000, -122.74000.", text)
}
