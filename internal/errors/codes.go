// Package errors provides structured error handling with machine-readable codes.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Authorization errors
	CodePermissionDenied Code = "PERMISSION_DENIED"

	// User errors
	CodeUserEmptyUID          Code = "USER_EMPTY_UID"
	CodeUserEmptyName         Code = "USER_EMPTY_NAME"
	CodeUserInvalidRole       Code = "USER_INVALID_ROLE"
	CodeUserInvalidBloodGroup Code = "USER_INVALID_BLOOD_GROUP"

	// Blood bank errors
	CodeBankEmptyName         Code = "BANK_EMPTY_NAME"
	CodeBankInvalidBloodGroup Code = "BANK_INVALID_BLOOD_GROUP"
	CodeBankNegativeUnits     Code = "BANK_NEGATIVE_UNITS"

	// Campaign errors
	CodeCampaignEmptyName               Code = "CAMPAIGN_EMPTY_NAME"
	CodeCampaignInvalidSchedule         Code = "CAMPAIGN_INVALID_SCHEDULE"
	CodeCampaignInvalidGoal             Code = "CAMPAIGN_INVALID_GOAL"
	CodeCampaignInvalidStatusTransition Code = "CAMPAIGN_INVALID_STATUS_TRANSITION"

	// Blood request errors
	CodeRequestEmptyRequester          Code = "REQUEST_EMPTY_REQUESTER"
	CodeRequestInvalidBloodGroup       Code = "REQUEST_INVALID_BLOOD_GROUP"
	CodeRequestInvalidUnits            Code = "REQUEST_INVALID_UNITS"
	CodeRequestInvalidStatusTransition Code = "REQUEST_INVALID_STATUS_TRANSITION"

	// Donation errors
	CodeDonationEmptyDonor        Code = "DONATION_EMPTY_DONOR"
	CodeDonationInvalidUnits      Code = "DONATION_INVALID_UNITS"
	CodeDonationInvalidBloodGroup Code = "DONATION_INVALID_BLOOD_GROUP"

	// Notification errors
	CodeNotificationEmptyRecipient Code = "NOTIFICATION_EMPTY_RECIPIENT"
	CodeNotificationEmptyMessage   Code = "NOTIFICATION_EMPTY_MESSAGE"

	// Session token errors
	CodeTokenInvalid Code = "TOKEN_INVALID"
	CodeTokenExpired Code = "TOKEN_EXPIRED"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
	CodeConflict Code = "CONFLICT"
)
