package llm

// Fallback texts returned in place of an answer. Callers show them to the user verbatim.
const (
	MsgNoAPIKey     = "I'm sorry, I'm currently unable to process your request. Please contact support."
	MsgNetwork      = "I'm having technical difficulties with network communication. Please try again or contact support."
	MsgUnauthorized = "I'm experiencing authentication issues. Please contact support."
	MsgRateLimited  = "All free models are currently experiencing high demand. Please try again in a few minutes."
	MsgHTTPError    = "I'm having technical difficulties. Please try again or contact support."
	MsgNoChoices    = "I apologize, but I'm having trouble generating a response right now. Please try again."
	MsgMalformed    = "I encountered an unexpected response format. Please try again or contact support."
	MsgUnavailable  = "I'm currently unable to process your request. Please try again later."
)

// SystemPrompt is sent as the system message of every completion.
const SystemPrompt = "You are a knowledgeable skincare consultant providing helpful, safe advice. " +
	"Be specific about products mentioned and always recommend patch testing. " +
	"Keep responses under 800 words."

// AppTitle is sent as X-Title for attribution on the completion service.
const AppTitle = "BoBeutician - AI Skincare Consultant"

// failure classifies one completion attempt.
type failure int

const (
	failNone failure = iota
	failNetwork
	failUnauthorized
	failRateLimited
	failHTTP
	failNoChoices
	failMalformed
	failEmptyContent
	failCircuitOpen
)

// outcome is the metric label for the attempt.
func (f failure) outcome() string {
	switch f {
	case failNone:
		return "success"
	case failNetwork:
		return "network"
	case failUnauthorized:
		return "unauthorized"
	case failRateLimited:
		return "rate_limited"
	case failHTTP:
		return "http_error"
	case failNoChoices, failEmptyContent:
		return "empty"
	case failMalformed:
		return "malformed"
	case failCircuitOpen:
		return "circuit_open"
	default:
		return "other"
	}
}

// message is the user-facing text when this failure ends the last attempt.
func (f failure) message() string {
	switch f {
	case failNetwork:
		return MsgNetwork
	case failUnauthorized:
		return MsgUnauthorized
	case failRateLimited:
		return MsgRateLimited
	case failHTTP, failCircuitOpen:
		return MsgHTTPError
	case failNoChoices:
		return MsgNoChoices
	case failMalformed:
		return MsgMalformed
	default:
		return MsgUnavailable
	}
}
