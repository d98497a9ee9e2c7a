package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/aidanlsb/dbref/internal/ui"
)

// jsonOutput is set by --json.
var jsonOutput bool

// Response is the envelope every command writes in JSON mode. Exactly one of
// Data and Error is meaningful, selected by OK.
type Response struct {
	OK       bool        `json:"ok"`
	Data     interface{} `json:"data,omitempty"`
	Error    *ErrorInfo  `json:"error,omitempty"`
	Warnings []Warning   `json:"warnings,omitempty"`
	Meta     *Meta       `json:"meta,omitempty"`
}

// ErrorInfo describes a failed command. Code is one of the Err* constants.
type ErrorInfo struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	Suggestion string      `json:"suggestion,omitempty"`
}

// Warning is a non-fatal condition attached to a successful response.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Meta describes the session a command ran against.
type Meta struct {
	Count       int    `json:"count,omitempty"`
	Backend     string `json:"backend,omitempty"`
	Database    string `json:"database,omitempty"`
	QueryTimeMs int64  `json:"query_time_ms,omitempty"`
}

func isJSONOutput() bool {
	return jsonOutput
}

// emit writes resp to stdout, indented.
func emit(resp Response) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(resp)
}

// respond emits a successful response.
func respond(data interface{}, meta *Meta, warnings ...Warning) {
	emit(Response{OK: true, Data: data, Meta: meta, Warnings: warnings})
}

// failure is a command error together with its code and a hint for the user.
type failure struct {
	code       string
	err        error
	details    interface{}
	suggestion string
}

// report emits f in JSON mode and returns nil so Cobra stays quiet. In text
// mode it returns the error, with the hint on a second line.
func (f failure) report() error {
	if jsonOutput {
		emit(Response{Error: &ErrorInfo{
			Code:       f.code,
			Message:    f.err.Error(),
			Details:    f.details,
			Suggestion: f.suggestion,
		}})
		return nil
	}
	if f.suggestion == "" {
		return f.err
	}
	return fmt.Errorf("%w\n%s", f.err, ui.Hint(f.suggestion))
}

func handleError(code string, err error, suggestion string) error {
	return failure{code: code, err: err, suggestion: suggestion}.report()
}

func handleErrorWithDetails(code string, err error, suggestion string, details interface{}) error {
	return failure{code: code, err: err, details: details, suggestion: suggestion}.report()
}
