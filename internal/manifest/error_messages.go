package manifest

// error_messages.go maps technical errors to operator-facing messages with
// codes for support reference.
//
// # Error Codes Reference
//
// # Classification (CLS001-CLS099)
//
//	CLS001 - Engine starting: layout detection needs the spreadsheet engine
//	         Action: Wait a few seconds and try again
//	         Patterns: "layout detection pending", "spreadsheet engine not ready"
//
//	CLS002 - Unknown layout: content matched no known carrier
//	         Action: Pick the carrier layout manually
//	         Patterns: "unknown layout"
//
//	CLS003 - Unreadable content: nothing could be scanned
//	         Action: Check the file opens in a spreadsheet program
//	         Patterns: "unreadable content"
//
// # Extraction (EXT001-EXT099)
//
//	EXT001 - Header not found: the layout header row is missing
//	         Action: Confirm the carrier layout or export the report again
//	         Patterns: "header row"
//
//	EXT002 - Column not found: a required column is missing
//	         Action: Compare the file columns with the carrier layout
//	         Patterns: "column not found"
//
//	EXT003 - No extractor: the layout has no extraction strategy
//	         Patterns: "no extractor registered"
//
// # File (FILE001-FILE099) and Read (READ001)
//
//	FILE001 - File too large          Patterns: "file too large"
//	FILE002 - Invalid delimited text  Patterns: "invalid csv"
//	FILE003 - Empty file              Patterns: "empty file"
//	FILE004 - No file                 Patterns: "no file provided"
//	FILE005 - Binary content          Patterns: "binary content"
//	FILE006 - Unsupported extension   Patterns: "unsupported file type"
//	READ001 - Unreadable file         Patterns: "no loading strategy succeeded"
//
// # Upload (UPL001-UPL099)
//
//	UPL001 - System busy       Patterns: "too many concurrent"
//	UPL002 - Session expired   Patterns: "session not found"
//	UPL003 - Invalid layout    Patterns: "invalid layout"
//	UPL004 - Request cancelled Patterns: "context canceled"
//	UPL005 - Request timeout   Patterns: "context deadline exceeded"
//
// # Export (EXP001-EXP099)
//
//	EXP001 - Unknown format   Patterns: "unsupported export format"
//	EXP002 - Nothing to save  Patterns: "no rows to save"
//
// # History database (DB001-DB099)
//
//	DB001 - Connection refused  Patterns: "connection refused"
//	DB002 - Connection reset    Patterns: "connection reset"
//	DB003 - Timeout             Patterns: "timeout"
//	DB004 - History unavailable Patterns: "history store"
//
// # Default Error (ERR000)
//
// Fallback when no pattern matches. Check the logs for the technical error.
//
// Errors from this package are matched by type first: sentinels with
// errors.Is, *ExtractionError and *ReadError with errors.As. A *ReadError
// reports the FILE code of its cause when one matches, READ001 otherwise.
// Anything else (driver errors, wrapped strings) falls back to the patterns,
// matched case-insensitively with strings.Contains, first match wins.

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides operator-facing error information.
type UserMessage struct {
	Message string `json:"message"` // What happened
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// =========================================================================
	// Classification (CLS001-CLS003)
	// =========================================================================
	{
		pattern: "layout detection pending",
		msg: UserMessage{
			Message: "The spreadsheet engine is still starting",
			Action:  "Wait a few seconds and try again",
			Code:    "CLS001",
		},
	},
	{
		pattern: "spreadsheet engine not ready",
		msg: UserMessage{
			Message: "The spreadsheet engine is still starting",
			Action:  "Wait a few seconds and try again",
			Code:    "CLS001",
		},
	},
	{
		pattern: "unknown layout",
		msg: UserMessage{
			Message: "The file layout was not recognised",
			Action:  "Pick the carrier layout manually",
			Code:    "CLS002",
		},
	},
	{
		pattern: "unreadable content",
		msg: UserMessage{
			Message: "The file content could not be read",
			Action:  "Check the file opens in a spreadsheet program",
			Code:    "CLS003",
		},
	},

	// =========================================================================
	// Extraction (EXT001-EXT003)
	// =========================================================================
	{
		pattern: "header row",
		msg: UserMessage{
			Message: "The header row of this layout was not found",
			Action:  "Confirm the carrier layout or export the report again",
			Code:    "EXT001",
		},
	},
	{
		pattern: "column not found",
		msg: UserMessage{
			Message: "A required column was not found",
			Action:  "Compare the file columns with the carrier layout",
			Code:    "EXT002",
		},
	},
	{
		pattern: "no extractor registered",
		msg: UserMessage{
			Message: "This layout cannot be processed",
			Action:  "Pick another carrier layout",
			Code:    "EXT003",
		},
	},

	// =========================================================================
	// File (FILE001-FILE005) and Read (READ001)
	// =========================================================================
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "The file exceeds the maximum size limit",
			Action:  "Split the report into smaller files",
			Code:    "FILE001",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "The file is not valid delimited text",
			Action:  "Export the report again as .csv or .xlsx",
			Code:    "FILE002",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The file is empty",
			Action:  "Select a report with data rows",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Select a .xls, .xlsx, .csv or .txt report",
			Code:    "FILE004",
		},
	},
	{
		pattern: "binary content",
		msg: UserMessage{
			Message: "The file is neither a spreadsheet nor text",
			Action:  "Select a .xls, .xlsx, .csv or .txt report",
			Code:    "FILE005",
		},
	},
	{
		pattern: "unsupported file type",
		msg: UserMessage{
			Message: "This file type is not accepted",
			Action:  "Select a .xls, .xlsx, .csv or .txt report",
			Code:    "FILE006",
		},
	},
	{
		pattern: "no loading strategy succeeded",
		msg: UserMessage{
			Message: "The file could not be read",
			Action:  "Check the file is a valid .xls, .xlsx, .csv or .txt report",
			Code:    "READ001",
		},
	},

	// =========================================================================
	// Upload (UPL001-UPL005)
	// =========================================================================
	{
		pattern: "too many concurrent",
		msg: UserMessage{
			Message: "The system is busy processing other files",
			Action:  "Wait a moment and try again",
			Code:    "UPL001",
		},
	},
	{
		pattern: "session not found",
		msg: UserMessage{
			Message: "The processed file is no longer available",
			Action:  "Process the file again",
			Code:    "UPL002",
		},
	},
	{
		pattern: "invalid layout",
		msg: UserMessage{
			Message: "The selected layout is not valid",
			Action:  "Pick one of the listed carrier layouts",
			Code:    "UPL003",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "The request was cancelled",
			Action:  "Please try again",
			Code:    "UPL004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "The request timed out",
			Action:  "Try a smaller file or try again later",
			Code:    "UPL005",
		},
	},

	// =========================================================================
	// Export (EXP001-EXP002)
	// =========================================================================
	{
		pattern: "unsupported export format",
		msg: UserMessage{
			Message: "The export format is not supported",
			Action:  "Export as csv or xlsx",
			Code:    "EXP001",
		},
	},
	{
		pattern: "no rows to save",
		msg: UserMessage{
			Message: "There are no rows to save",
			Action:  "Process a report with valid document numbers first",
			Code:    "EXP002",
		},
	},

	// =========================================================================
	// History database (DB001-DB004)
	// =========================================================================
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to the history database",
			Action:  "Please try again in a few moments",
			Code:    "DB001",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "The history database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB002",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "The operation timed out",
			Action:  "Please try again later",
			Code:    "DB003",
		},
	},
	{
		pattern: "history store",
		msg: UserMessage{
			Message: "Processing history is unavailable",
			Action:  "Results are still valid; contact support if this persists",
			Code:    "DB004",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a UserMessage. Unmatched errors map
// to ERR000; a nil error maps to the zero UserMessage.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	if msg, ok := mapTyped(err); ok {
		return msg
	}
	return matchPattern(err.Error())
}

// sentinelCodes maps the sentinel errors of this package to their codes.
var sentinelCodes = []struct {
	err  error
	code string
}{
	{ErrClassificationPending, "CLS001"},
	{ErrEngineNotReady, "CLS001"},
	{ErrUnknownLayout, "CLS002"},
	{ErrUnreadableContent, "CLS003"},
	{ErrNoExtractor, "EXT003"},
	{context.Canceled, "UPL004"},
	{context.DeadlineExceeded, "UPL005"},
}

func mapTyped(err error) (UserMessage, bool) {
	var extErr *ExtractionError
	if errors.As(err, &extErr) {
		// Without a column list the header row itself was never found.
		if len(extErr.Columns) == 0 {
			return messageFor("EXT001"), true
		}
		return messageFor("EXT002"), true
	}

	for _, sc := range sentinelCodes {
		if errors.Is(err, sc.err) {
			return messageFor(sc.code), true
		}
	}

	var readErr *ReadError
	if errors.As(err, &readErr) {
		if readErr.Cause != nil {
			if msg := matchPattern(readErr.Cause.Error()); strings.HasPrefix(msg.Code, "FILE") {
				return msg, true
			}
		}
		return messageFor("READ001"), true
	}
	return UserMessage{}, false
}

func matchPattern(text string) UserMessage {
	errStr := strings.ToLower(text)
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// messageFor returns the first message registered under code.
func messageFor(code string) UserMessage {
	for _, ep := range errorPatterns {
		if ep.msg.Code == code {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError renders "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific code rather than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its operator-facing message.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{Technical: err, User: MapError(err)}
}
