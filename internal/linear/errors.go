package linear

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DefaultRateLimitWait is the reset hint used when a rate-limited response
// carries no reset header.
const DefaultRateLimitWait = 60

// APIKeyURL is where users create personal API keys.
const APIKeyURL = "https://linear.app/settings/api"

// ErrorKind enumerates the closed set of API failure kinds.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindAuth
	KindNotFound
	KindNetwork
	KindGraphQLValidation
	KindRateLimited
	KindCancelled
)

func (k ErrorKind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	case KindNetwork:
		return "network"
	case KindGraphQLValidation:
		return "graphql_validation"
	case KindRateLimited:
		return "rate_limited"
	case KindCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// APIError is a classified failure. Retryable is decided once, at
// construction, and never changes.
type APIError struct {
	Kind      ErrorKind
	Retryable bool
	Message   string

	// NotFound
	Entity      string
	Identifier  string
	Suggestions []string
	// Closest is true when Suggestions are ranked guesses rather than the
	// complete list of valid values.
	Closest bool

	// GraphQLValidation
	Code      string
	Locations []Location

	// RateLimited
	ResetSeconds int
	ResetKnown   bool

	StatusCode int
	Err        error
}

func (e *APIError) Error() string {
	switch e.Kind {
	case KindAuth:
		return "authentication failed: " + e.Message
	case KindNotFound:
		msg := fmt.Sprintf("%s %q not found", e.Entity, e.Identifier)
		if len(e.Suggestions) > 0 {
			if e.Closest {
				msg += fmt.Sprintf(" (did you mean: %s?)", strings.Join(e.Suggestions, ", "))
			} else {
				msg += fmt.Sprintf(" (valid: %s)", strings.Join(e.Suggestions, ", "))
			}
		}
		return msg
	case KindNetwork:
		return "network error: " + e.Message
	case KindGraphQLValidation:
		return "GraphQL error: " + e.Message
	case KindRateLimited:
		return "rate limit exceeded"
	case KindCancelled:
		return "operation cancelled"
	default:
		return e.Message
	}
}

func (e *APIError) Unwrap() error { return e.Err }

// Help returns remediation text for display, or "" when there is none.
func (e *APIError) Help() string {
	switch e.Kind {
	case KindAuth:
		return "Get your API key from: " + APIKeyURL + "\n" +
			"Then set LINEAR_API_KEY, pass --api-key, or run `linear auth set-token`."
	case KindNotFound:
		switch e.Entity {
		case "issue":
			return "Check the issue identifier format (e.g., ENG-123)."
		case "team":
			return "Run `linear teams` to list available teams."
		case "project":
			return "Run `linear projects` to list available projects."
		}
		return ""
	case KindNetwork:
		return "Check your internet connection and try again."
	case KindRateLimited:
		if e.ResetKnown {
			return fmt.Sprintf("Rate limit resets in %d seconds.", e.ResetSeconds)
		}
		return "Wait a moment before making another request."
	}
	return ""
}

// NewNotFound reports an unresolvable value together with every valid value.
func NewNotFound(entity, identifier string, valid []string) *APIError {
	return &APIError{
		Kind:        KindNotFound,
		Entity:      entity,
		Identifier:  identifier,
		Suggestions: valid,
	}
}

// NewNotFoundSuggest reports an unresolvable value with ranked closest matches.
func NewNotFoundSuggest(entity, identifier string, closest []string) *APIError {
	return &APIError{
		Kind:        KindNotFound,
		Entity:      entity,
		Identifier:  identifier,
		Suggestions: closest,
		Closest:     true,
	}
}

// NewCancelled wraps a context error.
func NewCancelled(err error) *APIError {
	return &APIError{Kind: KindCancelled, Message: "operation cancelled", Err: err}
}

// NewAuth builds a non-retryable authentication error.
func NewAuth(reason string) *APIError {
	return &APIError{Kind: KindAuth, Message: reason}
}

// AsAPIError unwraps err to an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// KindOf returns the kind of a classified error, or KindUnknown.
func KindOf(err error) ErrorKind {
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.Kind
	}
	return KindUnknown
}

// IsRetryable reports whether err is a classified, retryable failure.
func IsRetryable(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Retryable
}

var authCodes = map[string]bool{
	"AUTHENTICATION_ERROR": true,
	"UNAUTHENTICATED":      true,
	"FORBIDDEN":            true,
}

var validationCodes = map[string]bool{
	"GRAPHQL_VALIDATION_FAILED": true,
	"GRAPHQL_PARSE_FAILED":      true,
	"BAD_USER_INPUT":            true,
	"INVALID_INPUT":             true,
	"INPUT_ERROR":               true,
}

const rateLimitedCode = "RATELIMITED"

// Classify maps a transport outcome to an APIError. It returns nil when the
// response is a usable success. The result depends only on its arguments.
func Classify(resp *Response, transportErr error) *APIError {
	if transportErr != nil {
		if errors.Is(transportErr, context.Canceled) {
			return NewCancelled(transportErr)
		}
		return &APIError{
			Kind:      KindNetwork,
			Retryable: true,
			Message:   transportErr.Error(),
			Err:       transportErr,
		}
	}

	status := resp.StatusCode
	errs := resp.Envelope.Errors

	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return &APIError{
			Kind:       KindAuth,
			Message:    firstMessage(errs, http.StatusText(status)),
			StatusCode: status,
		}
	}

	if status == http.StatusTooManyRequests || hasCode(errs, rateLimitedCode) {
		secs, known := rateLimitReset(resp.Header, resp.ReceivedAt)
		return &APIError{
			Kind:         KindRateLimited,
			Retryable:    true,
			Message:      firstMessage(errs, "rate limited"),
			ResetSeconds: secs,
			ResetKnown:   known,
			StatusCode:   status,
		}
	}

	if e, ok := firstWithCode(errs, authCodes); ok {
		return &APIError{
			Kind:       KindAuth,
			Message:    e.Message,
			Code:       e.Code(),
			StatusCode: status,
		}
	}

	if e, ok := firstWithCode(errs, validationCodes); ok {
		return &APIError{
			Kind:       KindGraphQLValidation,
			Message:    e.Message,
			Code:       e.Code(),
			Locations:  e.Locations,
			StatusCode: status,
		}
	}

	if len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Message
		}
		return &APIError{
			Kind:       KindGraphQLValidation,
			Message:    strings.Join(msgs, "; "),
			Code:       errs[0].Code(),
			Locations:  errs[0].Locations,
			StatusCode: status,
		}
	}

	if !isSuccess(status) {
		msg := strings.TrimSpace(resp.Raw)
		if msg == "" {
			msg = http.StatusText(status)
		}
		return &APIError{
			Kind:       KindGraphQLValidation,
			Message:    fmt.Sprintf("API error: %s (status %d)", msg, status),
			StatusCode: status,
		}
	}

	if !resp.Envelope.HasData() {
		return &APIError{
			Kind:       KindGraphQLValidation,
			Message:    "response contained no data",
			StatusCode: status,
		}
	}
	return nil
}

func firstMessage(errs []GraphQLError, fallback string) string {
	for _, e := range errs {
		if e.Message != "" {
			return e.Message
		}
	}
	return fallback
}

func hasCode(errs []GraphQLError, code string) bool {
	for _, e := range errs {
		if e.Code() == code {
			return true
		}
	}
	return false
}

func firstWithCode(errs []GraphQLError, codes map[string]bool) (GraphQLError, bool) {
	for _, e := range errs {
		if codes[e.Code()] {
			return e, true
		}
	}
	return GraphQLError{}, false
}

// rateLimitReset reads the reset hint from Retry-After (seconds) or Linear's
// X-RateLimit-*-Reset headers (epoch milliseconds).
func rateLimitReset(h http.Header, receivedAt time.Time) (int, bool) {
	if v := strings.TrimSpace(h.Get("Retry-After")); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
			return secs, true
		}
	}
	for _, name := range []string{"X-RateLimit-Requests-Reset", "X-RateLimit-Complexity-Reset"} {
		v := strings.TrimSpace(h.Get(name))
		if v == "" {
			continue
		}
		ms, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		secs := int(math.Ceil(time.UnixMilli(ms).Sub(receivedAt).Seconds()))
		if secs < 0 {
			secs = 0
		}
		return secs, true
	}
	return DefaultRateLimitWait, false
}
