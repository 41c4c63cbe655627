package status

//Status represents video processing job status
type Status int

const (
	// Pending - job created, waiting for upload
	Pending Status = iota + 1
	// Uploading value
	Uploading
	// Uploaded - video is saved, ready for processing
	Uploaded
	// Transcribing step
	Transcribing
	// Analyzing step
	Analyzing
	// ExtractingFrames step
	ExtractingFrames
	// GeneratingDocument step
	GeneratingDocument
	// Complete - final step
	Complete
	// Error - final failed step
	Error
)

var (
	statusName = map[Status]string{Pending: "pending", Uploading: "uploading", Uploaded: "uploaded",
		Transcribing: "transcribing", Analyzing: "analyzing", ExtractingFrames: "extracting-frames",
		GeneratingDocument: "generating-document", Complete: "complete", Error: "error"}
	nameStatus = map[string]Status{}
)

func init() {
	for k, v := range statusName {
		nameStatus[v] = k
	}
}

func (st Status) String() string {
	return statusName[st]
}

// From returns status obj from string
func From(st string) Status {
	return nameStatus[st]
}

// IsFinal returns true if no further processing is expected
func (st Status) IsFinal() bool {
	return st == Complete || st == Error
}

// IsWorking returns true if the pipeline is running or finished successfully,
// such a job can not be processed again
func (st Status) IsWorking() bool {
	switch st {
	case Transcribing, Analyzing, ExtractingFrames, GeneratingDocument, Complete:
		return true
	}
	return false
}

// ErrCode represents error code returned by status endpoints
type ErrCode int

const (
	// ECServiceError value
	ECServiceError ErrCode = iota + 1
	// ECNotFound value
	ECNotFound
)

var errCodeName = map[ErrCode]string{ECServiceError: "SERVICE_ERROR", ECNotFound: "NOT_FOUND"}

func (ec ErrCode) String() string {
	return errCodeName[ec]
}
