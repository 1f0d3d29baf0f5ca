// Package errors provides structured error types for better observability
// and programmatic error handling across the agent.
//
// Example usage:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeInternal,
//	    "failed to set kernel parameter",
//	    cause,
//	    map[string]any{
//	        "name":  "kernel.core_pattern",
//	        "value": value,
//	    },
//	)
package errors
