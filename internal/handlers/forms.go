package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"familytravel/internal/validation"
)

// LoginForm is the landing page submission
type LoginForm struct {
	Name string
}

// CountryForm is the add-country submission
type CountryForm struct {
	Country string
}

// MemberForm creates a new family member
type MemberForm struct {
	Name  string
	Color string
}

// SwitchForm selects the active family member
type SwitchForm struct {
	UserID int64
}

// RemoveForm takes a country off the active member's list
type RemoveForm struct {
	CountryCode string
}

func parseLoginForm(r *http.Request) (LoginForm, error) {
	name, err := validation.ValidateName(r.PostFormValue("username"))
	if err != nil {
		return LoginForm{}, err
	}
	return LoginForm{Name: name}, nil
}

func parseCountryForm(r *http.Request) (CountryForm, error) {
	country, err := validation.ValidateCountryQuery(r.PostFormValue("country"))
	if err != nil {
		return CountryForm{}, err
	}
	return CountryForm{Country: country}, nil
}

func parseMemberForm(r *http.Request, defaultColor string) (MemberForm, error) {
	name, err := validation.ValidateName(r.PostFormValue("name"))
	if err != nil {
		return MemberForm{}, err
	}
	color, err := validation.ValidateColor(r.PostFormValue("color"), defaultColor)
	if err != nil {
		return MemberForm{}, err
	}
	return MemberForm{Name: name, Color: color}, nil
}

func parseSwitchForm(r *http.Request) (SwitchForm, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(r.PostFormValue("user")), 10, 64)
	if err != nil || id <= 0 {
		return SwitchForm{}, validation.ValidationError{Field: "user", Message: "a family member must be selected"}
	}
	return SwitchForm{UserID: id}, nil
}

func parseRemoveForm(r *http.Request) (RemoveForm, error) {
	code := strings.ToUpper(strings.TrimSpace(r.PostFormValue("code")))
	if len(code) != 2 {
		return RemoveForm{}, validation.ValidationError{Field: "code", Message: "a country code is required"}
	}
	return RemoveForm{CountryCode: code}, nil
}

// wantsNewMemberForm reports whether the /user submission is the "add" button
func wantsNewMemberForm(r *http.Request) bool {
	return r.PostFormValue("add") == "new"
}
