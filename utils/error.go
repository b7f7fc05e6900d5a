package utils

import "errors"

var (
	ErrorRecordNotFound = errors.New("record not found")

	ErrorDuplicateReportDate = errors.New("report for this date already exists")
	ErrorDuplicateUsername   = errors.New("username already exists")
	ErrorInvalidCredentials  = errors.New("invalid credentials")

	ErrorInvalidReportDate = errors.New("date must be in YYYY-MM-DD format")
	ErrorDateMismatch      = errors.New("payload date does not match report date")

	ErrorResourceBusy = errors.New("resource is being modified, try again")
)
