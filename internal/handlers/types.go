package handlers

import "time"

// PingResponse is the response for the protected ping endpoint.
type PingResponse struct {
	Body struct {
		Message   string `doc:"Greeting"                              example:"pong" json:"message"`
		Remaining int64  `doc:"Requests left in the current window" example:"2"    json:"remaining"`
	}
}

// LimitsRequest is the request for inspecting a caller's counter.
type LimitsRequest struct {
	Key    string `doc:"Caller key as produced by the key resolver" path:"key"`
	Policy string `default:"default" doc:"Policy the key is throttled under" query:"policy"`
}

// LimitsResponse reports the state of a caller's current window.
type LimitsResponse struct {
	Body struct {
		Key       string    `doc:"Caller key"                                 json:"key"`
		Policy    string    `doc:"Policy name"                                json:"policy"`
		Quota     string    `doc:"Quota of the policy"    example:"3/1m0s"    json:"quota"`
		Total     int64     `doc:"Attempts counted in the current window"     json:"total"`
		Limit     int64     `doc:"Attempts allowed per window"                json:"limit"`
		Remaining int64     `doc:"Attempts left in the current window"        json:"remaining"`
		ResetAt   time.Time `doc:"End of the current window, zero when idle"  json:"resetAt"`
	}
}
