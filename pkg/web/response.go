// Package web defines common components for a web application.
package web

import "github.com/go-playground/validator/v10"

// JSONError provides type for explicit json encoded error response.
type JSONError struct {
	Error string `json:"error"`
}

// Error wraps a given err into json friendly struct.
func Error(err error) JSONError {
	return JSONError{Error: err.Error()}
}

// ErrorMessage wraps a plain message into json friendly struct.
func ErrorMessage(msg string) JSONError {
	return JSONError{Error: msg}
}

// GetErrorMsg translates a validator field error into a readable suffix.
func GetErrorMsg(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return " is required"
	case "min":
		return " must be at least " + fe.Param()
	case "max":
		return " must be at most " + fe.Param()
	case "accounttype":
		return " is not a supported account type"
	default:
		return " is invalid"
	}
}
