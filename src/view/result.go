package view

import (
	"errors"
	"fmt"

	"binarytrader/src/binary"
)

// ActionResult is the discriminated answer of every mutating user action.
type ActionResult struct {
	Success bool        `json:"success"`
	Error   string      `json:"error,omitempty"`
	Reason  string      `json:"reason,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func OK(data interface{}) ActionResult {
	return ActionResult{Success: true, Data: data}
}

// Fail carries the error text; validation failures also expose their reason.
func Fail(err error) ActionResult {
	res := ActionResult{Error: err.Error()}
	var v *binary.ValidationError
	if errors.As(err, &v) {
		res.Reason = v.Reason.Error()
	}
	return res
}

// Recovered normalizes a recovered panic value.
func Recovered(v interface{}) ActionResult {
	return ActionResult{Error: fmt.Sprintf("unexpected error: %v", v)}
}
