package stream

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexNumber(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "json number", input: `0.56`, want: "0.56"},
		{name: "integer", input: `100`, want: "100"},
		{name: "numeric string", input: `"0.56"`, want: "0.56"},
		{name: "empty string", input: `""`, want: ""},
		{name: "object", input: `{}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var n FlexNumber
			err := json.Unmarshal([]byte(tt.input), &n)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, n.String())
		})
	}
}

func TestFlexNumberFloat64(t *testing.T) {
	v, err := FlexNumber("0.56").Float64()
	require.NoError(t, err)
	assert.Equal(t, 0.56, v)

	_, err = FlexNumber("").Float64()
	assert.Error(t, err)

	_, err = FlexNumber("abc").Float64()
	assert.Error(t, err)
}

func TestFlexFloat64(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    float64
		wantErr bool
	}{
		{name: "json number", input: `114377.61`, want: 114377.61},
		{name: "numeric string", input: `"114377.61"`, want: 114377.61},
		{name: "empty string is zero", input: `""`, want: 0},
		{name: "non-numeric string", input: `"abc"`, wantErr: true},
		{name: "array", input: `[1]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f FlexFloat64
			err := json.Unmarshal([]byte(tt.input), &f)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.Float64())
		})
	}
}

func TestFlexTime(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{
			name:  "rfc3339",
			input: `"2025-01-15T10:30:00Z"`,
			want:  time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC),
		},
		{
			name:  "rfc3339 with nanos",
			input: `"2025-01-15T10:30:00.123456789Z"`,
			want:  time.Date(2025, 1, 15, 10, 30, 0, 123456789, time.UTC),
		},
		{
			name:  "unix seconds",
			input: `"1736937000"`,
			want:  time.Unix(1736937000, 0),
		},
		{
			name:  "unix millis",
			input: `1736937000123`,
			want:  time.Unix(1736937000, 0),
		},
		{
			name:  "null",
			input: `null`,
			want:  time.Time{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ft FlexTime
			require.NoError(t, json.Unmarshal([]byte(tt.input), &ft))
			assert.True(t, ft.Time().Equal(tt.want), "got %v, want %v", ft.Time(), tt.want)
		})
	}
}

func TestFlexTimeRejectsGarbage(t *testing.T) {
	var ft FlexTime
	assert.Error(t, json.Unmarshal([]byte(`"not a time"`), &ft))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "disconnected", StateDisconnected.String())
	assert.Equal(t, "connecting", StateConnecting.String())
	assert.Equal(t, "subscribed", StateSubscribed.String())
	assert.Equal(t, "streaming", StateStreaming.String())
	assert.Equal(t, "reconnecting", StateReconnecting.String())
	assert.Equal(t, "state(99)", State(99).String())
}

func TestPriceChangeEventFallbackField(t *testing.T) {
	raw := []byte(`{
		"event_type": "price_change",
		"asset_id": "123",
		"market": "0xabc",
		"price_changes": [
			{"asset_id": "123", "price": "0.55", "size": "100", "side": "BUY"}
		]
	}`)

	var ev PriceChangeEvent
	require.NoError(t, json.Unmarshal(raw, &ev))
	assert.Empty(t, ev.Changes)
	require.Len(t, ev.PriceChanges, 1)
	assert.Equal(t, "0.55", ev.PriceChanges[0].Price.String())
}
