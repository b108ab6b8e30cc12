// Package security builds the configuration posture report exposed by
// goToken.Service.SecurityReport.
//
// The report is advisory. Nothing here changes how tokens are issued or verified.
package security
