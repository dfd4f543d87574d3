// Package settings reads the admin settings blob. The blob is opaque JSON
// owned by an external admin surface; this package decodes only the keys the
// core needs and treats every failure as "use the safe default".
package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/mediatrack/mediatrack/internal/database"
)

type blob struct {
	ChatEnabled *bool    `json:"chat_enabled"`
	Banned      []string `json:"banned"`
	Admins      []string `json:"admins"`
}

type Service struct {
	log  *log.Logger
	repo database.Repository
}

func NewService(logger *log.Logger, repo database.Repository) *Service {
	return &Service{log: logger, repo: repo}
}

func (s *Service) load(ctx context.Context) blob {
	raw, err := s.repo.GetSettings(ctx)
	if err != nil {
		return blob{}
	}

	var b blob
	if err := json.Unmarshal(raw, &b); err != nil {
		s.log.Println("settings blob decode:", err)
		return blob{}
	}

	return b
}

// ChatEnabled reports whether the social/chat feature is on. Any failure
// degrades to enabled rather than propagating an error.
func (s *Service) ChatEnabled(ctx context.Context) bool {
	b := s.load(ctx)
	if b.ChatEnabled == nil {
		return true
	}
	return *b.ChatEnabled
}

func (s *Service) IsBanned(ctx context.Context, handle string) bool {
	for _, h := range s.load(ctx).Banned {
		if strings.EqualFold(h, handle) {
			return true
		}
	}
	return false
}

// Role returns an elevated role for handles on the admin list, or "" when
// the handle carries no elevation.
func (s *Service) Role(ctx context.Context, handle string) string {
	for _, h := range s.load(ctx).Admins {
		if strings.EqualFold(h, handle) {
			return "admin"
		}
	}
	return ""
}

// Update replaces the blob. The payload stays opaque beyond being valid JSON.
func (s *Service) Update(ctx context.Context, raw []byte) error {
	if !json.Valid(raw) {
		return fmt.Errorf("settings blob is not valid JSON")
	}
	return s.repo.SaveSettings(ctx, raw)
}
