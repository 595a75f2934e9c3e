package main

import (
	"embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Josh363/small-business-app/internal/domain/entities"
)

//go:embed data/*.json
var dataFS embed.FS

type seedUser struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Email    string        `json:"email"`
	Role     entities.Role `json:"role"`
	Password string        `json:"password"`
}

type seedData struct {
	Users      []seedUser
	Businesses []*entities.Business
	Services   []*entities.Service
	Reviews    []*entities.Review
}

func loadSeedData() (*seedData, error) {
	var d seedData
	files := []struct {
		name string
		dst  interface{}
	}{
		{"users.json", &d.Users},
		{"businesses.json", &d.Businesses},
		{"services.json", &d.Services},
		{"reviews.json", &d.Reviews},
	}
	for _, f := range files {
		raw, err := dataFS.ReadFile("data/" + f.name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.name, err)
		}
		if err := json.Unmarshal(raw, f.dst); err != nil {
			return nil, fmt.Errorf("parse %s: %w", f.name, err)
		}
	}
	return &d, nil
}

func (u seedUser) toEntity(passwordHash string, now time.Time) *entities.User {
	return &entities.User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		Password:  passwordHash,
		CreatedAt: now,
	}
}
