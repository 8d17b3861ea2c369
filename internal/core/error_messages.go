// Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// When users encounter errors, they can quote the error code to support staff
// for faster diagnosis.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: File exceeds the maximum upload size
//	          Action: Split the file or remove unused columns
//	FILE002 - Invalid CSV: Rows have more values than the header row
//	          Action: Check the delimiter and quote any values that contain it
//	FILE003 - Encoding error: File could not be decoded as text
//	          Action: Save the file as UTF-8
//	FILE004 - No file: No file was selected
//	          Action: Please select a CSV or Excel file
//	FILE005 - No data: Every row after the header is empty
//	          Action: Add at least one address row
//	FILE006 - No columns: The header row is empty
//	          Action: Put column names on the first line of the file
//	FILE007 - Unsupported file: The file is not delimited text or a workbook
//	          Action: Upload a .csv, .tsv, .txt or .xlsx file
//
// # Format Errors (FMT001-FMT099)
//
//	FMT001 - Unknown format: The label format is not supported
//	         Action: Choose one of the listed Avery formats
//
// # Mapping and Session Errors
//
//	MAP001 - Incomplete mapping: A required field has no column
//	         Action: Assign a column to every required field
//	SES001 - Session not found: The session expired or never existed
//	         Action: Start over by uploading your file again
//	STEP001 - Step incomplete: The wizard cannot move past an unfinished step
//	          Action: Complete the current step before moving on
//
// # Request Errors (REQ001-REQ099, RATE001)
//
//	REQ001 - Request cancelled
//	REQ002 - Request timed out
//	REQ003 - Too many files being parsed at once
//	REQ004 - Malformed request body or parameter
//	RATE001 - Too many requests
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches. Check application logs for the
// original technical error.
//
// # Matching
//
// Typed errors from this package are matched first with errors.Is. Anything
// else is matched case-insensitively with strings.Contains against the
// pattern table; the first matching pattern wins.

package core

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var (
	msgOversized = UserMessage{
		Message: "File exceeds the maximum upload size",
		Action:  "Split the file or remove unused columns",
		Code:    "FILE001",
	}
	msgDelimiter = UserMessage{
		Message: "Some rows have more values than the header row",
		Action:  "Check the delimiter and quote any values that contain it",
		Code:    "FILE002",
	}
	msgEncoding = UserMessage{
		Message: "File could not be decoded as text",
		Action:  "Save the file as UTF-8",
		Code:    "FILE003",
	}
	msgNoFile = UserMessage{
		Message: "No file was selected",
		Action:  "Please select a CSV or Excel file",
		Code:    "FILE004",
	}
	msgNoData = UserMessage{
		Message: "No data rows found in the file",
		Action:  "Add at least one address row below the header",
		Code:    "FILE005",
	}
	msgNoColumns = UserMessage{
		Message: "No columns found in the file",
		Action:  "Put column names on the first line of the file",
		Code:    "FILE006",
	}
	msgUnsupported = UserMessage{
		Message: "File type is not supported",
		Action:  "Upload a .csv, .tsv, .txt or .xlsx file",
		Code:    "FILE007",
	}
	msgUnknownFormat = UserMessage{
		Message: "Label format is not supported",
		Action:  "Choose one of the listed Avery formats",
		Code:    "FMT001",
	}
)

// typedMessages maps this package's error kinds to user messages.
var typedMessages = []struct {
	target error
	msg    UserMessage
}{
	{ErrOversizedFile, msgOversized},
	{ErrDelimiter, msgDelimiter},
	{ErrEncoding, msgEncoding},
	{ErrNoColumns, msgNoColumns},
	{ErrNoData, msgNoData},
	{ErrUnsupportedFile, msgUnsupported},
	{ErrUnknownFormat, msgUnknownFormat},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error text (case-insensitive) to user messages.
// More specific patterns come before general ones.
var errorPatterns = []errorPattern{
	{pattern: "no file provided", msg: msgNoFile},
	{pattern: "file too large", msg: msgOversized},
	{pattern: "request body too large", msg: msgOversized},
	{pattern: "unknown label format", msg: msgUnknownFormat},
	{
		pattern: "incomplete mapping",
		msg: UserMessage{
			Message: "Some required fields have no column assigned",
			Action:  "Assign a column to every required field",
			Code:    "MAP001",
		},
	},
	{
		pattern: "current step is incomplete",
		msg: UserMessage{
			Message: "This step is not finished yet",
			Action:  "Complete the current step before moving on",
			Code:    "STEP001",
		},
	},
	{
		pattern: "session not found",
		msg: UserMessage{
			Message: "Session not found",
			Action:  "The session may have expired. Please upload your file again",
			Code:    "SES001",
		},
	},
	{
		pattern: "invalid request",
		msg: UserMessage{
			Message: "The request could not be read",
			Action:  "Check the submitted form or JSON body and try again",
			Code:    "REQ004",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "REQ002",
		},
	},
	{
		pattern: "too many files being processed",
		msg: UserMessage{
			Message: "The server is busy processing other files",
			Action:  "Please try again in a moment",
			Code:    "REQ003",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
//
// Example:
//
//	_, err := core.Ingest(data, "contacts.csv")
//	msg := core.MapError(err)
//	// errors.Is(err, core.ErrNoData) => msg.Code == "FILE005"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, tm := range typedMessages {
		if errors.Is(err, tm.target) {
			return tm.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the generic ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
