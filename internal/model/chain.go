package model

// EndpointKind distinguishes how an endpoint concept is presented
type EndpointKind string

const (
	EndpointText  EndpointKind = "text"
	EndpointImage EndpointKind = "image"
)

// Endpoint is one concept in a chain
type Endpoint struct {
	Kind  EndpointKind `json:"type"`
	Value string       `json:"value,omitempty"`
	Src   string       `json:"src,omitempty"`
	Alt   string       `json:"alt,omitempty"`
}

// Chain is an ordered list of endpoints. Answers[i] lists the accepted
// linking words between Endpoints[i] and Endpoints[i+1].
type Chain struct {
	ID        string
	Endpoints []Endpoint
	Answers   [][]string
}

// Steps returns the number of links to guess
func (c *Chain) Steps() int {
	if len(c.Endpoints) < 2 {
		return 0
	}
	return len(c.Endpoints) - 1
}
