// Copyright 2024, BloomWatch Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package util

import (
	"fmt"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Severity is the audit severity for LogAudit entries
type Severity string

// Audit severities
const (
	INFO   Severity = "INFO"
	WARN   Severity = "WARN"
	ERROR  Severity = "ERROR"
	NOTICE Severity = "NOTICE"
)

// LogContext is the interface for a context that can annotate log output
type LogContext interface {
	AppName() string
	SessionID() string
}

// BasicLogContext is a minimal LogContext for code paths with no richer context
type BasicLogContext struct {
	sessionID string
}

// AppName returns the application name
func (c *BasicLogContext) AppName() string {
	return "bloomwatch-broker"
}

// SessionID returns a session ID, creating one if needed
func (c *BasicLogContext) SessionID() string {
	if c.sessionID == "" {
		c.sessionID, _ = PsuUUID()
	}
	return c.sessionID
}

var logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

func event(level zerolog.Level, context LogContext) *zerolog.Event {
	e := logger.WithLevel(level)
	if context != nil {
		e = e.Str("app", context.AppName()).Str("session", context.SessionID())
	}
	return e
}

// LogInfo logs an informational message
func LogInfo(context LogContext, message string) {
	event(zerolog.InfoLevel, context).Msg(message)
}

// LogAlert logs a message that needs operator attention but is not fatal
func LogAlert(context LogContext, message string) {
	event(zerolog.WarnLevel, context).Msg(message)
}

// LogSimpleErr logs a message with its underlying error and returns an error
// carrying the user-facing message
func LogSimpleErr(context LogContext, message string, err error) error {
	event(zerolog.ErrorLevel, context).Err(err).Msg(message)
	return Error{LogMsg: message, SimpleMsg: message}
}

// LogAuditInput is the set of fields for a LogAudit entry
type LogAuditInput struct {
	Actor    string
	Action   string
	Actee    string
	Message  string
	Severity Severity
}

// LogAudit writes an audit-style entry recording who did what to whom
func LogAudit(context LogContext, input LogAuditInput) {
	level := zerolog.InfoLevel
	switch input.Severity {
	case WARN, NOTICE:
		level = zerolog.WarnLevel
	case ERROR:
		level = zerolog.ErrorLevel
	}
	event(level, context).
		Str("actor", input.Actor).
		Str("action", input.Action).
		Str("actee", input.Actee).
		Msg(input.Message)
}

// Error is a structured error carrying both an operator-facing log message
// and a short user-facing message
type Error struct {
	LogMsg     string
	SimpleMsg  string
	Response   string
	URL        string
	HTTPStatus int
}

// Error implements the error interface; callers only ever see the simple message
func (e Error) Error() string {
	if e.SimpleMsg != "" {
		return e.SimpleMsg
	}
	return e.LogMsg
}

// Log writes the full detail of the error and returns the error itself
func (e Error) Log(context LogContext, prefix string) error {
	message := e.LogMsg
	if prefix != "" {
		message = prefix + ": " + message
	}
	event(zerolog.ErrorLevel, context).
		Str("url", e.URL).
		Int("httpStatus", e.HTTPStatus).
		Str("response", e.Response).
		Msg(message)
	return e
}

// HTTPErr is an error with an associated HTTP status code
type HTTPErr struct {
	Status  int
	Message string
}

func (err HTTPErr) Error() string {
	return err.Message
}

// HTTPError writes an error message to the response writer and logs it
func HTTPError(request *http.Request, writer http.ResponseWriter, context LogContext, message string, status int) {
	event(zerolog.WarnLevel, context).
		Str("method", request.Method).
		Str("url", request.URL.String()).
		Int("status", status).
		Msg(message)
	http.Error(writer, message, status)
}

// PsuUUID returns a pseudorandom UUID string
func PsuUUID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate UUID: %v", err)
	}
	return id.String(), nil
}
