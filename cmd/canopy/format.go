package main

import (
	"encoding/json"
	"fmt"
	"os"
)

// errorHandled is set by outputError so main() doesn't double-print.
var errorHandled bool

func validateFormat(format string) error {
	switch format {
	case "json", "markdown":
		return nil
	default:
		return fmt.Errorf("invalid --format %q: must be markdown or json", format)
	}
}

// textPack is satisfied by every pack type's Markdown renderer.
type textPack interface {
	Text() string
}

// outputResult writes data to stdout in the selected format: its Text()
// rendering in markdown mode, or a CLIResult JSON envelope in json mode.
func outputResult(command string, data textPack) error {
	if flagFormat == "markdown" {
		fmt.Fprintln(os.Stdout, data.Text())
		return nil
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(CLIResult{Command: command, Data: data})
}

// outputResultJSON writes data as a CLIResult JSON envelope regardless of
// --format; used by commands (like index) whose text rendering is
// handled separately rather than through a pack's Text() method.
func outputResultJSON(command string, data any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(CLIResult{Command: command, Data: data})
}

// outputError writes an error in the selected format and returns it so
// RunE can propagate it to Cobra without main() double-printing.
func outputError(command string, err error) error {
	errorHandled = true
	if flagFormat == "markdown" {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(CLIResult{Command: command, Error: err.Error()})
	return err
}
