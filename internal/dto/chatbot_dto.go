package dto

// --- Chat ---

type ChatRequest struct {
	Query string `json:"query" validate:"notblank,max=2000"`
}

// --- Analytics ---

type TrackViewResponse struct {
	Ok    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}
