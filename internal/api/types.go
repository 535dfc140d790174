package api

type SamplesRequest struct {
	Samples     *int     `json:"samples,omitempty"`
	Length      *int     `json:"length,omitempty"`
	Prime       string   `json:"prime,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	Seed        *int64   `json:"seed,omitempty"`
}

type SamplesResponse struct {
	ID        string   `json:"id"`
	Object    string   `json:"object"`
	CreatedAt int64    `json:"created_at"`
	Seed      string   `json:"seed"`
	Length    int      `json:"length"`
	Samples   []string `json:"samples"`
}

type TokenResponse struct {
	Token string `json:"token"`
	Index int    `json:"index"`
}

type HealthResponse struct {
	Status     string `json:"status"`
	Vocabulary int    `json:"vocabulary"`
	Parameters int    `json:"parameters"`
}

type ResponseError struct {
	Message string `json:"message,omitempty"`
	Type    string `json:"type,omitempty"`
	Code    string `json:"code,omitempty"`
	Param   string `json:"param,omitempty"`
}
