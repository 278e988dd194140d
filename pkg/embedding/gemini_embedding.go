package embedding

type geminiRequestContentPart struct {
	Text string `json:"text"`
}

type geminiRequestContent struct {
	Parts []geminiRequestContentPart `json:"parts"`
}

type geminiEmbeddingRequest struct {
	Model    string               `json:"model"`
	Content  geminiRequestContent `json:"content"`
	TaskType string               `json:"task_type,omitempty"`
}

type geminiResponseEmbedding struct {
	Values []float32 `json:"values"`
}

type geminiEmbeddingResponse struct {
	Embedding geminiResponseEmbedding `json:"embedding"`
}
