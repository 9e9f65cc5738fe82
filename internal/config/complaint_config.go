package config

import "time"

const (
	// Submission
	MinTitleLength       = 5
	MinDescriptionLength = 10
	MaxAttachments       = 3

	// Accounts
	MinPasswordLength = 6
	MinNameLength     = 2

	// Session
	TokenCookieName = "token"
	DefaultTokenTTL = 24 * time.Hour

	// Uploads
	DefaultUploadMaxBytes = 5 << 20
	UploadURLPrefix       = "/uploads"

	// Reports
	DefaultReportCacheTTL = time.Minute
	ReportCacheKey        = "reports:summary"
)

// SeedDepartments is the reference data created by `admin seed`.
var SeedDepartments = []string{
	"Computer Science",
	"Electrical Engineering",
	"Administration",
	"Student Affairs",
	"Maintenance",
}
