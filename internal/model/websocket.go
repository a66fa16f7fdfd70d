package model

// WebSocket message types
const (
	WSMessageTypeStatus   = "status"
	WSMessageTypeComplete = "complete"
	WSMessageTypeError    = "error"
	WSMessageTypePing     = "ping"
	WSMessageTypePong     = "pong"
)

// WSMessage is the generic envelope exchanged over /ws connections
type WSMessage struct {
	Type string `json:"type"`
}

// WSStatusMessage notifies subscribers of a conversion status change
type WSStatusMessage struct {
	Type   string    `json:"type"`
	JobKey string    `json:"jobKey"`
	Status JobStatus `json:"status"`
}

// WSCompleteMessage notifies subscribers that a conversion finished
type WSCompleteMessage struct {
	Type   string `json:"type"`
	JobKey string `json:"jobKey"`
	Vtt    string `json:"vtt"`
}

// WSErrorMessage notifies subscribers that a conversion failed
type WSErrorMessage struct {
	Type   string  `json:"type"`
	JobKey string  `json:"jobKey"`
	Error  WSError `json:"error"`
}

type WSError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
