package model

// VttNotification is the payload of POST /api/v1/audio-to-vtt/complete,
// sent by the conversion worker once a subtitle file has been written.
type VttNotification struct {
	User    string `json:"user" validate:"required"`
	Audio   string `json:"audio" validate:"required"`
	VttPath string `json:"vtt_path" validate:"required"`
}

// VttEntry describes one of a user's audio files and its subtitle state
type VttEntry struct {
	Audio  string `json:"audio"`
	Vtt    string `json:"vtt"`
	Status string `json:"status"` // waiting | in progress | done
	Time   string `json:"time"`
}

// VttListResponse is the body of GET /api/v1/vtt
type VttListResponse struct {
	Data []VttEntry `json:"data"`
}
