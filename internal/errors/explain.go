// ABOUTME: User-facing explanations for gateway, network and startup failures
// ABOUTME: Maps raw errors to a one-line summary plus causes and suggested actions

package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"syscall"

	"github.com/gorilla/websocket"
)

// Explanation describes a failure for the person at the terminal.
type Explanation struct {
	ErrorType        string
	Summary          string
	Explanation      string
	PossibleCauses   []string
	SuggestedActions []string
	Recoverable      bool
	Details          string
}

// statusError is implemented by REST errors that carry an HTTP status.
type statusError interface {
	HTTPStatus() int
}

// Explain classifies err. It never returns nil for a non-nil error.
func Explain(err error) *Explanation {
	if err == nil {
		return nil
	}

	var cfgErr *ConfigError
	if stderrors.As(err, &cfgErr) {
		return cfgErr.Explain()
	}
	var xdgErr *XDGPathError
	if stderrors.As(err, &xdgErr) {
		return xdgErr.Explain()
	}

	var se statusError
	if stderrors.As(err, &se) {
		return explainStatus(se.HTTPStatus(), err)
	}

	switch {
	case stderrors.Is(err, websocket.ErrBadHandshake):
		return &Explanation{
			ErrorType:   "handshake_rejected",
			Summary:     "Gateway refused the websocket upgrade",
			Explanation: "The server answered the /ws request but did not switch protocols.",
			PossibleCauses: []string{
				"The token is missing or expired",
				"relay.url points at a path that is not the websocket endpoint",
			},
			SuggestedActions: []string{
				"Check relay.token or CYBERAI_RELAY_TOKEN",
				"Make sure relay.url ends in /ws",
			},
			Recoverable: true,
			Details:     err.Error(),
		}
	case stderrors.Is(err, syscall.ECONNREFUSED):
		return unreachable(err, "Nothing is listening on the gateway address")
	case isDNS(err):
		return unreachable(err, "The gateway host name does not resolve")
	case isTimeout(err):
		return &Explanation{
			ErrorType:   "timeout",
			Summary:     "Gateway did not answer in time",
			Explanation: "The request was abandoned after relay.request_timeout.",
			PossibleCauses: []string{
				"The gateway is overloaded",
				"A slow network between the client and the gateway",
			},
			SuggestedActions: []string{
				"Try again",
				"Raise relay.request_timeout in the config file",
			},
			Recoverable: true,
			Details:     err.Error(),
		}
	}

	return &Explanation{
		ErrorType:   "unexpected",
		Summary:     err.Error(),
		Explanation: "An unexpected error occurred.",
		SuggestedActions: []string{
			"Run with --debug and check the log file for details",
		},
		Recoverable: true,
		Details:     err.Error(),
	}
}

// Summary is Explain(err).Summary, or "" for nil.
func Summary(err error) string {
	if e := Explain(err); e != nil {
		return e.Summary
	}
	return ""
}

func explainStatus(status int, err error) *Explanation {
	e := &Explanation{
		ErrorType:   fmt.Sprintf("http_%d", status),
		Recoverable: true,
		Details:     err.Error(),
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		e.ErrorType = "unauthorized"
		e.Summary = fmt.Sprintf("Gateway rejected the token (HTTP %d)", status)
		e.Explanation = "The REST API requires a valid bearer token."
		e.PossibleCauses = []string{"relay.token is empty", "The token expired or was revoked"}
		e.SuggestedActions = []string{"Set relay.token in the config file or CYBERAI_RELAY_TOKEN in the environment"}
	case status == http.StatusNotFound:
		e.ErrorType = "not_found"
		e.Summary = "Not found: it may have been deleted"
		e.Explanation = "The gateway has no record of the requested chat or message."
		e.SuggestedActions = []string{"Pick another chat from the sidebar"}
	case status == http.StatusTooManyRequests:
		e.ErrorType = "rate_limited"
		e.Summary = "Gateway is rate limiting requests"
		e.Explanation = "Too many requests were sent in a short time."
		e.SuggestedActions = []string{"Wait a moment and try again"}
	case status >= 500:
		e.ErrorType = "server_error"
		e.Summary = fmt.Sprintf("Gateway error (HTTP %d)", status)
		e.Explanation = "The gateway failed while handling the request."
		e.PossibleCauses = []string{"The model provider is down", "The gateway hit an internal error"}
		e.SuggestedActions = []string{"Try again", "Select another model"}
	default:
		e.Summary = err.Error()
		e.Explanation = "The gateway rejected the request."
	}
	return e
}

func unreachable(err error, cause string) *Explanation {
	return &Explanation{
		ErrorType:      "gateway_unreachable",
		Summary:        "Cannot reach the gateway",
		Explanation:    "The client could not open a connection to the gateway.",
		PossibleCauses: []string{cause, "relay.url has the wrong host or port"},
		SuggestedActions: []string{
			"Check that the gateway is running",
			"Override the address with --url ws://host:port/ws",
		},
		Recoverable: true,
		Details:     err.Error(),
	}
}

func isDNS(err error) bool {
	var dnsErr *net.DNSError
	return stderrors.As(err, &dnsErr)
}

func isTimeout(err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return stderrors.As(err, &netErr) && netErr.Timeout()
}

// Format renders the explanation as a multi-line message for stderr.
func (e *Explanation) Format() string {
	var b strings.Builder
	b.WriteString(e.Summary)
	b.WriteString("\n")
	if e.Explanation != "" && e.Explanation != e.Summary {
		b.WriteString("\n")
		b.WriteString(e.Explanation)
		b.WriteString("\n")
	}
	if len(e.PossibleCauses) > 0 {
		b.WriteString("\nPossible causes:\n")
		for _, c := range e.PossibleCauses {
			b.WriteString("  - " + c + "\n")
		}
	}
	if len(e.SuggestedActions) > 0 {
		b.WriteString("\nTry:\n")
		for _, a := range e.SuggestedActions {
			b.WriteString("  - " + a + "\n")
		}
	}
	if e.Details != "" && e.Details != e.Summary {
		b.WriteString("\nDetails: " + e.Details + "\n")
	}
	return b.String()
}
