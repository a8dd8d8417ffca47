package handlers

const (
	pathStart = "/"
	pathHome  = "/home"

	ErrInvalidFormData     = "Invalid form data"
	ErrForbidden           = "Invalid or missing CSRF token"
	ErrTooManyRequests     = "Too many requests, please try again later"
	ErrInternalServerError = "Internal server error"
)

// Notice codes carried on the /home redirect after a failed action
const (
	NoticeNotFound       = "not-found"
	NoticeAlreadyVisited = "already-visited"
	NoticeInvalidCountry = "invalid-country"
	NoticeUnknownMember  = "unknown-member"
	NoticeNotRemoved     = "not-removed"
	NoticeError          = "error"
)

var noticeMessages = map[string]string{
	NoticeNotFound:       "We couldn't find a country matching that name.",
	NoticeAlreadyVisited: "That country is already on your list.",
	NoticeInvalidCountry: "Please enter a country name.",
	NoticeUnknownMember:  "That family member could not be selected.",
	NoticeNotRemoved:     "That country was not on your list.",
	NoticeError:          "Something went wrong, please try again.",
}
