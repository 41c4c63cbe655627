package messages

import (
	"testing"

	amessages "github.com/airenas/async-api/pkg/messages"
	"github.com/stretchr/testify/assert"
)

func TestNewMessageFrom(t *testing.T) {
	assert.Equal(t, &JobMessage{QueueMessage: amessages.QueueMessage{ID: "1"}, UserID: "u"},
		NewMessageFrom(&JobMessage{QueueMessage: amessages.QueueMessage{ID: "1"}, UserID: "u"}))
}

func TestSplit(t *testing.T) {
	tests := []struct {
		in, wantQ, wantT string
	}{
		{in: Process, wantQ: Work, wantT: "PRISM/Work:process"},
		{in: Mail, wantQ: Inform, wantT: "PRISM/Inform:mail"},
		{in: StatusChange, wantQ: StatusChange, wantT: StatusChange},
		{in: Inform, wantQ: Inform, wantT: Inform},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			q, tp := Split(tt.in)
			assert.Equal(t, tt.wantQ, q)
			assert.Equal(t, tt.wantT, tp)
		})
	}
}
