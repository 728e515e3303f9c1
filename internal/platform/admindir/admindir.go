package admindir

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrIncorrectPassword = errors.New("incorrect password")
)

// Administrator is one customer account allowed to sign in as admin. The
// customer id doubles as the principal id.
type Administrator struct {
	CustomerID   int64  `yaml:"customer_id" json:"customer_id"`
	Email        string `yaml:"email" json:"email"`
	Name         string `yaml:"name,omitempty" json:"name,omitempty"`
	PasswordHash string `yaml:"password_hash" json:"-"`
	Disabled     bool   `yaml:"disabled,omitempty" json:"-"`
}

// Directory resolves administrator credentials.
type Directory interface {
	Authenticate(ctx context.Context, email, password string) (*Administrator, error)
	Lookup(ctx context.Context, customerID int64) (*Administrator, error)
}

type fileDocument struct {
	Administrators []Administrator `yaml:"administrators"`
}

type staticDirectory struct {
	byEmail    map[string]*Administrator
	byCustomer map[int64]*Administrator
}

// LoadFile reads a YAML directory:
//
//	administrators:
//	  - customer_id: 101
//	    email: owner@example.com
//	    password_hash: $2a$10$...
func LoadFile(path string) (Directory, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read admin directory: %w", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (Directory, error) {
	var doc fileDocument
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse admin directory: %w", err)
	}
	return New(doc.Administrators)
}

func New(admins []Administrator) (Directory, error) {
	d := &staticDirectory{
		byEmail:    make(map[string]*Administrator, len(admins)),
		byCustomer: make(map[int64]*Administrator, len(admins)),
	}
	for i := range admins {
		a := admins[i]
		a.Email = normalizeEmail(a.Email)
		if a.CustomerID <= 0 {
			return nil, fmt.Errorf("admin directory entry %d: customer_id must be positive", i)
		}
		if a.Email == "" {
			return nil, fmt.Errorf("admin directory entry %d: email is required", i)
		}
		if _, dup := d.byEmail[a.Email]; dup {
			return nil, fmt.Errorf("admin directory: duplicate email %q", a.Email)
		}
		if _, dup := d.byCustomer[a.CustomerID]; dup {
			return nil, fmt.Errorf("admin directory: duplicate customer_id %d", a.CustomerID)
		}
		d.byEmail[a.Email] = &a
		d.byCustomer[a.CustomerID] = &a
	}
	return d, nil
}

func (d *staticDirectory) Authenticate(ctx context.Context, email, password string) (*Administrator, error) {
	a := d.byEmail[normalizeEmail(email)]
	if a == nil || a.Disabled {
		return nil, ErrAccountNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		return nil, ErrIncorrectPassword
	}
	out := *a
	return &out, nil
}

func (d *staticDirectory) Lookup(ctx context.Context, customerID int64) (*Administrator, error) {
	a := d.byCustomer[customerID]
	if a == nil || a.Disabled {
		return nil, ErrAccountNotFound
	}
	out := *a
	return &out, nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
