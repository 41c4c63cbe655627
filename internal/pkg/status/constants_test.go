package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_String(t *testing.T) {
	tests := []struct {
		name string
		st   Status
		want string
	}{
		{st: Pending, want: "pending"},
		{st: Uploading, want: "uploading"},
		{st: Uploaded, want: "uploaded"},
		{st: Transcribing, want: "transcribing"},
		{st: Analyzing, want: "analyzing"},
		{st: ExtractingFrames, want: "extracting-frames"},
		{st: GeneratingDocument, want: "generating-document"},
		{st: Complete, want: "complete"},
		{st: Error, want: "error"},
		{st: 0, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.st.String(); got != tt.want {
				t.Errorf("Status.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFrom(t *testing.T) {
	tests := []struct {
		args string
		want Status
	}{
		{args: "complete", want: Complete},
		{args: "olia", want: 0},
		{args: "extracting-frames", want: ExtractingFrames},
		{args: "uploaded", want: Uploaded},
		{args: "COMPLETE", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.args, func(t *testing.T) {
			if got := From(tt.args); got != tt.want {
				t.Errorf("From() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStatus_IsWorking(t *testing.T) {
	assert.False(t, Pending.IsWorking())
	assert.False(t, Uploaded.IsWorking())
	assert.False(t, Error.IsWorking())
	assert.True(t, Transcribing.IsWorking())
	assert.True(t, GeneratingDocument.IsWorking())
	assert.True(t, Complete.IsWorking())
}

func TestStatus_IsFinal(t *testing.T) {
	assert.True(t, Complete.IsFinal())
	assert.True(t, Error.IsFinal())
	assert.False(t, Analyzing.IsFinal())
}

func TestErrCodes_String(t *testing.T) {
	assert.Equal(t, "SERVICE_ERROR", ECServiceError.String())
	assert.Equal(t, "NOT_FOUND", ECNotFound.String())
}
