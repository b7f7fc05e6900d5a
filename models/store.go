package models

import "context"

// ReportStore persists daily reports keyed by date. Implementations must
// reject a second report for an existing date with
// utils.ErrorDuplicateReportDate and report absent dates with
// utils.ErrorRecordNotFound.
type ReportStore interface {
	CreateReport(ctx context.Context, report *DailyReport) error
	// ListReports returns reports by date descending, then insertion order.
	ListReports(ctx context.Context) ([]*DailyReport, error)
	FindReportByDate(ctx context.Context, date string) (*DailyReport, error)
	// ReplaceReport atomically overwrites the report stored for date. The
	// stored ID and CreatedAt are kept and copied into report.
	ReplaceReport(ctx context.Context, date string, report *DailyReport) error
	DeleteReport(ctx context.Context, date string) error
}

// UserStore persists users keyed by username (case-sensitive, unique).
type UserStore interface {
	CreateUser(ctx context.Context, user *User) error
	FindUserByUsername(ctx context.Context, username string) (*User, error)
	// ListUsers returns users in creation order.
	ListUsers(ctx context.Context) ([]*User, error)
}

// Store is a single backend serving both managers.
type Store interface {
	ReportStore
	UserStore
}
