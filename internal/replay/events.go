package replay

// Event type discriminators sent on the push channel.
const (
	EventStatus          = "status"
	EventStreamStarted   = "stream_started"
	EventEEG             = "eeg"
	EventStreamCompleted = "stream_completed"
	EventError           = "error"
)

// DatasetInfo identifies the current dataset inside a status event.
type DatasetInfo struct {
	Name   string `json:"name"`
	Length int    `json:"length"`
	Path   string `json:"path"`
}

// StatusEvent is the first frame a new subscriber receives.
type StatusEvent struct {
	Type           string       `json:"type"`
	IsStreaming    bool         `json:"isStreaming"`
	CurrentDataset *DatasetInfo `json:"currentDataset"`
	Timestamp      int64        `json:"timestamp"`
}

// StreamStartedEvent precedes the first eeg event of a stream.
type StreamStartedEvent struct {
	Type        string `json:"type"`
	Timestamp   int64  `json:"timestamp"`
	Dataset     string `json:"dataset"`
	TotalPoints int    `json:"totalPoints"`
}

// EEGEvent carries one sample. Timestamp is the sample's recorded timestamp,
// not the emission time.
type EEGEvent struct {
	Type      string  `json:"type"`
	Timestamp int64   `json:"timestamp"`
	Value     float64 `json:"value"`
	Index     int     `json:"index"`
	Total     int     `json:"total"`
}

// StreamCompletedEvent follows the last eeg event of a stream that ran to the end.
type StreamCompletedEvent struct {
	Type        string `json:"type"`
	Timestamp   int64  `json:"timestamp"`
	TotalPoints int    `json:"totalPoints"`
}

// ErrorEvent reports a failed dataset selection on connect.
type ErrorEvent struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

// NewStatusEvent builds the status snapshot for st at nowMillis.
func NewStatusEvent(st Status, nowMillis int64) StatusEvent {
	ev := StatusEvent{Type: EventStatus, IsStreaming: st.Streaming, Timestamp: nowMillis}
	if st.Dataset != nil {
		ev.CurrentDataset = &DatasetInfo{
			Name:   st.Dataset.Name,
			Length: st.Dataset.Len(),
			Path:   st.Dataset.Path,
		}
	}
	return ev
}

func NewErrorEvent(message string, nowMillis int64) ErrorEvent {
	return ErrorEvent{Type: EventError, Message: message, Timestamp: nowMillis}
}
