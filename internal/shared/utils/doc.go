// Package utils holds the superficial field validation used before records
// and credentials are sent to the ERP backend: length limits, a handful of
// regular expressions, and go-playground/validator struct tags.
package utils
