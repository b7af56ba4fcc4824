package model

import "encoding/json"

// EventType names an entry of the verification event stream
type EventType string

const (
	EventProgress    EventType = "progress"
	EventClaims      EventType = "claims"
	EventClaimResult EventType = "claim_result"
	EventComplete    EventType = "complete"
	EventError       EventType = "error"
)

// Terminal reports whether no event can follow this one
func (t EventType) Terminal() bool {
	return t == EventComplete || t == EventError
}

// Step names a pipeline stage reported through progress events
type Step string

const (
	StepParsing    Step = "parsing"
	StepExtracting Step = "extracting"
	StepSearching  Step = "searching"
	StepScoring    Step = "scoring"
)

// Event is one entry of the stream. Data always holds a JSON document.
type Event struct {
	Type EventType `json:"event"`
	Data string    `json:"data"`
}

// ProgressPayload is the data of a progress event
type ProgressPayload struct {
	Step    Step   `json:"step"`
	Message string `json:"message"`
}

// ClaimsPayload is the data of the claims event
type ClaimsPayload struct {
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	SocialLinks []string `json:"social_links"`
	Claims      []Claim  `json:"claims"`
}

// ErrorPayload is the data of an error event
type ErrorPayload struct {
	Message string `json:"message"`
}

// NewEvent marshals payload into an event of the given type
func NewEvent(t EventType, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{Type: t, Data: string(data)}, nil
}

// RawEvent wraps already-serialized JSON without re-encoding it
func RawEvent(t EventType, data []byte) Event {
	return Event{Type: t, Data: string(data)}
}

// NewClaimsPayload builds the claims event data from an identity and claim set
func NewClaimsPayload(id Identity, claims []Claim) ClaimsPayload {
	links := id.SocialLinks
	if links == nil {
		links = []string{}
	}
	if claims == nil {
		claims = []Claim{}
	}
	return ClaimsPayload{
		FirstName:   id.FirstName,
		LastName:    id.LastName,
		SocialLinks: links,
		Claims:      claims,
	}
}
