package handlers

import "familytravel/internal/models"

type StartViewData struct {
	Title     string
	CSRFToken string
	Error     string
	Name      string
}

type HomeViewData struct {
	Title     string
	CSRFToken string
	Current   *models.User
	Users     []models.User
	Countries []string
	Total     int
	Color     string
	Notice    string
}

type NewMemberViewData struct {
	Title        string
	CSRFToken    string
	Error        string
	Name         string
	Color        string
	DefaultColor string
}
