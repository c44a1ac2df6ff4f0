package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/bizapi/internal/constants"
	"github.com/fivetwenty-io/bizapi/pkg/bizapi"
)

// Common string constants used throughout the commands package.
const (
	NotAvailable = "N/A"
	Yes          = "yes"
	No           = "no"
	Masked       = "***"
)

// Static errors for err113 compliance.
var (
	ErrNoResultValue    = errors.New("the server returned no value")
	ErrInvalidRateLimit = errors.New("rate_limit must be a non-negative integer")
)

// apiFailure carries the message of a failed Result as a command error.
type apiFailure struct {
	message string
	cause   error
}

func (e *apiFailure) Error() string {
	return e.message
}

func (e *apiFailure) Unwrap() error {
	return e.cause
}

// resultValue turns a Result into the (value, error) pair cobra expects. The
// error text is the user-facing message of the failure.
func resultValue[T any](result bizapi.Result[T]) (T, error) {
	value, ok := result.Value()
	if ok {
		return value, nil
	}

	message := result.Message()
	if message == "" {
		message = ErrNoResultValue.Error()
	}

	return value, &apiFailure{message: message, cause: result.Cause()}
}

// OutputRenderer handles different output formats.
type OutputRenderer[T any] struct {
	RenderJSON  func(w io.Writer, data T) error
	RenderYAML  func(w io.Writer, data T) error
	RenderTable func(w io.Writer, data T) error
}

// Render outputs data in the specified format.
func (o *OutputRenderer[T]) Render(w io.Writer, data T, format string) error {
	switch format {
	case constants.FormatJSON:
		if o.RenderJSON == nil {
			return writeJSON(w, data)
		}

		return o.RenderJSON(w, data)
	case constants.FormatYAML:
		if o.RenderYAML == nil {
			return writeYAML(w, data)
		}

		return o.RenderYAML(w, data)
	default:
		return o.RenderTable(w, data)
	}
}

// outputFormat returns the --output value.
func outputFormat() string {
	return strings.ToLower(viper.GetString("output"))
}

// structuredOutput reports whether --output asks for JSON or YAML.
func structuredOutput() bool {
	format := outputFormat()

	return format == constants.FormatJSON || format == constants.FormatYAML
}

func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", strings.Repeat(" ", constants.JSONIndentSize))

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}

func writeYAML(w io.Writer, data any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(constants.JSONIndentSize)

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return encoder.Close()
}

// renderTable writes rows under headers.
func renderTable(w io.Writer, headers []string, rows [][]string) error {
	table := tablewriter.NewWriter(w)

	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
	}

	table.Header(header...)

	for _, row := range rows {
		_ = table.Append(row)
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// renderProperties writes a two-column Property/Value table.
func renderProperties(w io.Writer, names, values []string) error {
	rows := make([][]string, 0, len(names))
	for i, name := range names {
		value := NotAvailable
		if i < len(values) && values[i] != "" {
			value = values[i]
		}

		rows = append(rows, []string{name, value})
	}

	return renderTable(w, []string{"Property", "Value"}, rows)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return NotAvailable
	}

	return t.Local().Format(constants.DateTimeFormat)
}

func formatMoney(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}

func formatBool(value bool) string {
	if value {
		return Yes
	}

	return No
}

func maskToken(token string) string {
	if token == "" {
		return ""
	}

	return Masked
}
