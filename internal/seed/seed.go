// Package seed loads courts, hardware and users into the directory tables from a YAML fixture.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sojus/helpdesk/internal/auth"
	"github.com/sojus/helpdesk/internal/domain"
	"github.com/sojus/helpdesk/internal/repository"
)

//go:embed demo.yaml
var demoFixture []byte

// Fixture is the on-disk seed format.
type Fixture struct {
	Courts   []CourtRecord    `yaml:"courts"`
	Hardware []HardwareRecord `yaml:"hardware"`
	Users    []UserRecord     `yaml:"users"`
}

type CourtRecord struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Jurisdiction string `yaml:"jurisdiction"`
	// Inactive courts cannot be referenced by new tickets.
	Inactive bool `yaml:"inactive"`
}

type HardwareRecord struct {
	ID           string  `yaml:"id"`
	InventoryTag string  `yaml:"inventory_tag"`
	SerialNumber string  `yaml:"serial_number"`
	Class        string  `yaml:"class"`
	CourtID      *string `yaml:"court_id"`
	Deleted      bool    `yaml:"deleted"`
}

type UserRecord struct {
	ID       string  `yaml:"id"`
	Username string  `yaml:"username"`
	Password string  `yaml:"password"`
	FullName string  `yaml:"full_name"`
	Email    string  `yaml:"email"`
	Role     string  `yaml:"role"`
	CourtID  *string `yaml:"court_id"`
	Disabled bool    `yaml:"disabled"`
}

// Demo returns the built-in demonstration fixture.
func Demo() (*Fixture, error) {
	return Decode(bytes.NewReader(demoFixture))
}

// Decode parses a fixture, rejecting unknown keys.
func Decode(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var fixture Fixture
	if err := dec.Decode(&fixture); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	if err := fixture.validate(); err != nil {
		return nil, err
	}
	return &fixture, nil
}

func (f *Fixture) validate() error {
	var problems []string
	for i, c := range f.Courts {
		if c.ID == "" || c.Name == "" {
			problems = append(problems, fmt.Sprintf("courts[%d]: id and name are required", i))
		}
	}
	for i, h := range f.Hardware {
		if h.ID == "" || h.InventoryTag == "" {
			problems = append(problems, fmt.Sprintf("hardware[%d]: id and inventory_tag are required", i))
		}
	}
	for i, u := range f.Users {
		if u.ID == "" || u.Username == "" || u.FullName == "" {
			problems = append(problems, fmt.Sprintf("users[%d]: id, username and full_name are required", i))
		}
		if _, ok := domain.ParseRole(u.Role); !ok {
			problems = append(problems, fmt.Sprintf("users[%d]: unknown role %q", i, u.Role))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid fixture: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Loader writes fixtures through a DirectoryWriter.
type Loader struct {
	writer     repository.DirectoryWriter
	bcryptCost int
	now        func() time.Time
}

func NewLoader(writer repository.DirectoryWriter, bcryptCost int) *Loader {
	return &Loader{writer: writer, bcryptCost: bcryptCost, now: func() time.Time { return time.Now().UTC() }}
}

// Apply upserts every record; courts first so hardware and users can reference them.
// It returns the seeded users.
func (l *Loader) Apply(ctx context.Context, fixture *Fixture) ([]domain.User, error) {
	now := l.now()
	for _, c := range fixture.Courts {
		court := &domain.Court{ID: c.ID, Name: c.Name, Jurisdiction: c.Jurisdiction, Active: !c.Inactive, CreatedAt: now}
		if err := l.writer.UpsertCourt(ctx, court); err != nil {
			return nil, fmt.Errorf("seed court %s: %w", c.ID, err)
		}
	}
	for _, h := range fixture.Hardware {
		hw := &domain.Hardware{
			ID:           h.ID,
			InventoryTag: h.InventoryTag,
			SerialNumber: h.SerialNumber,
			Class:        h.Class,
			CourtID:      h.CourtID,
			Deleted:      h.Deleted,
			CreatedAt:    now,
		}
		if err := l.writer.UpsertHardware(ctx, hw); err != nil {
			return nil, fmt.Errorf("seed hardware %s: %w", h.ID, err)
		}
	}

	users := make([]domain.User, 0, len(fixture.Users))
	for _, u := range fixture.Users {
		role, _ := domain.ParseRole(u.Role)
		hash := ""
		if u.Password != "" {
			var err error
			if hash, err = auth.HashPassword(u.Password, l.bcryptCost); err != nil {
				return nil, fmt.Errorf("hash password for %s: %w", u.Username, err)
			}
		}
		user := domain.User{
			ID:           u.ID,
			Username:     u.Username,
			PasswordHash: hash,
			FullName:     u.FullName,
			Email:        u.Email,
			Role:         role,
			CourtID:      u.CourtID,
			Active:       !u.Disabled,
			CreatedAt:    now,
		}
		if err := l.writer.UpsertUser(ctx, &user); err != nil {
			return nil, fmt.Errorf("seed user %s: %w", u.Username, err)
		}
		users = append(users, user)
	}
	return users, nil
}
