package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/yourusername/openclaw-adapter/internal/models"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	keyColor     = color.New(color.FgYellow)
)

// PrintResponse renders an envelope for a human reader. Machine consumers
// should use Response.Encode instead.
func PrintResponse(w io.Writer, resp *models.Response) error {
	keyColor.Fprint(w, "id: ")
	fmt.Fprintln(w, resp.ID)

	if !resp.OK && resp.Error != nil {
		errorColor.Fprint(w, "✗ ")
		fmt.Fprintf(w, "%s: %s\n", resp.Error.Code, resp.Error.Message)

		if attempts := attemptsOf(resp.Error.Details); len(attempts) > 0 {
			PrintAttemptsTable(w, attempts)
			return nil
		}
		if resp.Error.Details != nil {
			body, err := indentJSON(resp.Error.Details)
			if err != nil {
				return err
			}
			keyColor.Fprintln(w, "details:")
			fmt.Fprintln(w, indent(body, "  "))
		}
		return nil
	}

	successColor.Fprintln(w, "✓ ok")
	body, err := indentJSON(resp.Result)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, body)
	return nil
}

// PrintJSON writes v as indented JSON.
func PrintJSON(w io.Writer, v any) error {
	body, err := indentJSON(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, body)
	return err
}

func indentJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("failed to encode output: %w", err)
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// attemptsOf extracts the candidate list from transport failure details.
// It round-trips through JSON so typed attempt slices and decoded maps look the same.
func attemptsOf(details any) []map[string]any {
	m, ok := details.(map[string]any)
	if !ok || m["attempts"] == nil {
		return nil
	}
	data, err := json.Marshal(m["attempts"])
	if err != nil {
		return nil
	}
	var out []map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}
