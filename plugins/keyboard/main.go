// Package main provides a keyboard sink plugin for macOS. Each confirmed
// letter is typed into the focused application via AppleScript.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Request represents the input from the plugin executor.
type Request struct {
	Action string          `json:"action"`
	Letter string          `json:"letter"`
	Word   string          `json:"word"`
	Config json.RawMessage `json:"config"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Options are read from the manifest's config block.
type Options struct {
	Lowercase bool `json:"lowercase"`
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(fmt.Errorf("failed to decode request: %w", err))
		return
	}

	switch req.Action {
	case "type":
		writeResponse(handleType(req))
	default:
		writeResponse(fmt.Errorf("unknown action: %s", req.Action))
	}
}

func handleType(req Request) error {
	if req.Letter == "" {
		return fmt.Errorf("letter is required")
	}

	var opts Options
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &opts); err != nil {
			return fmt.Errorf("failed to parse config: %w", err)
		}
	}

	text := req.Letter
	if opts.Lowercase {
		text = strings.ToLower(text)
	}
	return runAppleScript(buildTypeScript(text))
}

// buildTypeScript returns an AppleScript that types text as keystrokes.
func buildTypeScript(text string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(text)
	return fmt.Sprintf(`tell application "System Events" to keystroke "%s"`, escaped)
}

func writeResponse(err error) {
	resp := Response{Success: err == nil}
	if err != nil {
		resp.Error = err.Error()
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}

func runAppleScript(script string) error {
	output, err := exec.Command("osascript", "-e", script).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}
