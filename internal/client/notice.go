package client

import (
	"errors"
	"net/http"
)

// NoticeKind tells the UI how to render a notice
type NoticeKind string

const (
	NoticeNone    NoticeKind = ""
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is the user-facing message left by the last action
type Notice struct {
	Kind    NoticeKind
	Message string
}

func successNotice(message string) Notice {
	return Notice{Kind: NoticeSuccess, Message: message}
}

// errorNotice never carries raw error text, only a message chosen by failure class.
func errorNotice(err error) Notice {
	return Notice{Kind: NoticeError, Message: DescribeError(err)}
}

// DescribeError maps a client failure to a message fit for the user
func DescribeError(err error) string {
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		switch apiErr.Status {
		case http.StatusBadRequest:
			return "Invalid data. Please check the information and try again."
		case http.StatusUnauthorized:
			return "Your session has expired. Please sign in again."
		case http.StatusForbidden:
			return "You do not have permission to perform this action."
		case http.StatusNotFound:
			return "The requested event could not be found."
		case http.StatusInternalServerError:
			return "Server error. Please try again later."
		}
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return "Unknown error."
	case errors.Is(err, ErrNetwork):
		return "Connection error. Please check your network connection."
	default:
		return "Application error. Please reload and try again."
	}
}
