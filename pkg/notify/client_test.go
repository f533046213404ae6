package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeTransport struct {
	failTokens map[string]error
	sent       []string
}

func (f *fakeTransport) Send(_ context.Context, msg *Message) error {
	if err, ok := f.failTokens[msg.Token]; ok {
		return err
	}
	f.sent = append(f.sent, msg.Token)
	return nil
}

func (f *fakeTransport) Validate(_ context.Context, token string) error {
	if err, ok := f.failTokens[token]; ok {
		return err
	}
	return nil
}

func TestClientSendBatch(t *testing.T) {
	tests := []struct {
		name        string
		tokens      []string
		failTokens  map[string]error
		wantSuccess int
		wantFailure int
	}{
		{
			name:        "all good",
			tokens:      []string{"a", "b", "c"},
			wantSuccess: 3,
		},
		{
			name:   "one bad token does not fail the rest",
			tokens: []string{"a", "bad", "c"},
			failTokens: map[string]error{
				"bad": ErrUnregistered,
			},
			wantSuccess: 2,
			wantFailure: 1,
		},
		{
			name:   "transient error counted as failure",
			tokens: []string{"a", "b"},
			failTokens: map[string]error{
				"b": errors.New("deadline exceeded"),
			},
			wantSuccess: 1,
			wantFailure: 1,
		},
		{
			name: "empty batch",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := &fakeTransport{failTokens: tt.failTokens}
			client := NewClient(WithTransport(transport))
			msgs := make([]*Message, 0, len(tt.tokens))
			for _, token := range tt.tokens {
				msgs = append(msgs, &Message{Token: token, Title: "t"})
			}

			res := client.SendBatch(context.Background(), msgs)
			assert.Equal(t, tt.wantSuccess, res.SuccessCount)
			assert.Equal(t, tt.wantFailure, res.FailureCount)
			assert.Len(t, transport.sent, tt.wantSuccess)
		})
	}
}
