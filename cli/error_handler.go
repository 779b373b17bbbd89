package cli

import (
	"fmt"
	"io"

	"github.com/grovetools/mviewer/errors"
)

// ErrorHandler provides user-friendly error messages
type ErrorHandler struct {
	Verbose bool
	Out     io.Writer
}

// NewErrorHandler creates a new error handler writing to out.
func NewErrorHandler(out io.Writer, verbose bool) *ErrorHandler {
	return &ErrorHandler{
		Verbose: verbose,
		Out:     out,
	}
}

// Handle prints a message tailored to the error code and returns err unchanged.
func (h *ErrorHandler) Handle(err error) error {
	if err == nil {
		return nil
	}

	switch errors.GetCode(err) {
	case errors.ErrCodeConfigNotFound:
		fmt.Fprintf(h.Out, "Error: configuration not found. Run 'mviewer config show' to see the defaults in effect.\n")

	case errors.ErrCodeConfigInvalid, errors.ErrCodeConfigValidation:
		fmt.Fprintf(h.Out, "Error: %v\n", err)
		fmt.Fprintf(h.Out, "Run 'mviewer config validate' for details.\n")

	case errors.ErrCodeFetchFailed:
		document := detail(err, "document")
		fmt.Fprintf(h.Out, "Error: could not fetch %v from the renderer.\n", document)
		fmt.Fprintf(h.Out, "Check http.base_url and that the renderer is running.\n")

	case errors.ErrCodeTransportClosed:
		fmt.Fprintf(h.Out, "Error: the renderer connection closed.\n")

	case errors.ErrCodeInvalidCommand:
		fmt.Fprintf(h.Out, "Error: %v\n", err)
		fmt.Fprintf(h.Out, "Run 'mviewer send --help' for the command vocabulary.\n")

	default:
		fmt.Fprintf(h.Out, "Error: %v\n", err)
	}

	if h.Verbose {
		if e, ok := errors.As(err); ok {
			fmt.Fprintf(h.Out, "\nError details:\n%s\n", e.ToJSON())
		}
	}
	return err
}

func detail(err error, key string) interface{} {
	if e, ok := errors.As(err); ok {
		if v, ok := e.Details[key]; ok {
			return v
		}
	}
	return "a document"
}
