package api

// StartSignSessionRequest carries the document metadata the signing statement
// is built from. The source document itself is fetched from the provider.
type StartSignSessionRequest struct {
	Author       string `json:"author"`
	CreationDate string `json:"creationDate"`
	Language     string `json:"language"`
	ModDate      string `json:"modDate"`
	Producer     string `json:"producer,omitempty"`
	Title        string `json:"title,omitempty"`
}

// SessionCreatedResponse is returned when an order session has been started.
type SessionCreatedResponse struct {
	SessionID      string `json:"sessionId"`
	OrderRef       string `json:"orderRef"`
	AutoStartToken string `json:"autoStartToken"`
}

// SessionStatusResponse describes the current state of a session.
type SessionStatusResponse struct {
	SessionID   string `json:"sessionId"`
	Kind        string `json:"kind"`
	Status      string `json:"status"`
	HintCode    string `json:"hintCode,omitempty"`
	UserMessage string `json:"userMessage"`
	Credential  string `json:"credential,omitempty"`
}

// QrFrameResponse is the current animated QR payload of a session.
type QrFrameResponse struct {
	Token          string `json:"token"`
	ElapsedSeconds int    `json:"elapsedSeconds"`
}

// LaunchResponse carries the device hand-off deep link.
type LaunchResponse struct {
	URL string `json:"url"`
}
