package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	maxNameLen  = 16
	ticketTTL   = 24 * time.Hour
	TakenMarker = "already taken"
)

var errBadTicket = errors.New("invalid ticket")

type reservedName struct {
	name string
	hash []byte
}

// NamePolicy assigns display names at join. Reserved names are granted only
// on an exact password match; this carries no gameplay permissions.
type NamePolicy struct {
	reserved []reservedName
	secret   []byte
}

// ParseReservedNames reads "Name=password;Other=password2"
func ParseReservedNames(s string) (map[string]string, error) {
	out := make(map[string]string)
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, pw, ok := strings.Cut(part, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" || pw == "" {
			return nil, fmt.Errorf("reserved name entry %q: want Name=password", part)
		}
		out[name] = pw
	}
	return out, nil
}

// NewNamePolicy hashes the reserved passwords with bcrypt and keeps only the hashes.
// An empty secret gets a random one, so tickets do not survive a restart.
func NewNamePolicy(table map[string]string, secret []byte, cost int) (*NamePolicy, error) {
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("generate ticket secret: %w", err)
		}
	}
	np := &NamePolicy{secret: secret}
	for name, pw := range table {
		hash, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
		if err != nil {
			return nil, fmt.Errorf("hash reserved name %q: %w", name, err)
		}
		np.reserved = append(np.reserved, reservedName{name: name, hash: hash})
	}
	return np, nil
}

// Resolve picks the display name for a join request. inUse reports whether a
// connected player already holds a name. The second result is true when a
// reserved name was granted.
func (np *NamePolicy) Resolve(req JoinMsg, inUse func(string) bool) (string, bool) {
	if np == nil {
		np = &NamePolicy{}
	}
	if req.Ticket != "" {
		if name, err := np.parseTicket(req.Ticket); err == nil && np.isReserved(name) {
			return np.grant(name, inUse)
		}
	}
	if req.Password != "" {
		for _, r := range np.reserved {
			if bcrypt.CompareHashAndPassword(r.hash, []byte(req.Password)) == nil {
				return np.grant(r.name, inUse)
			}
		}
		return GenerateGuestName(), false
	}
	name := truncateName(strings.TrimSpace(req.Name))
	if name == "" || np.isReserved(name) {
		return GenerateGuestName(), false
	}
	return name, false
}

func (np *NamePolicy) grant(name string, inUse func(string) bool) (string, bool) {
	if inUse != nil && inUse(name) {
		return TakenMarker, false
	}
	return name, true
}

func (np *NamePolicy) isReserved(name string) bool {
	for _, r := range np.reserved {
		if strings.EqualFold(r.name, name) {
			return true
		}
	}
	return false
}

// IssueTicket signs a short-lived ticket that re-grants a reserved name
func (np *NamePolicy) IssueTicket(name string) (string, error) {
	if len(np.secret) == 0 {
		return "", errors.New("no ticket secret")
	}
	claims := jwt.MapClaims{
		"name": name,
		"exp":  time.Now().Add(ticketTTL).Unix(),
		"iat":  time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(np.secret)
}

func (np *NamePolicy) parseTicket(tokenStr string) (string, error) {
	if len(np.secret) == 0 {
		return "", errBadTicket
	}
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return np.secret, nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errBadTicket
	}
	name, ok := claims["name"].(string)
	if !ok || name == "" {
		return "", errBadTicket
	}
	return name, nil
}

func truncateName(name string) string {
	if utf8.RuneCountInString(name) <= maxNameLen {
		return name
	}
	return string([]rune(name)[:maxNameLen])
}

// GenerateGuestName creates a guest name like "Guest_a3f2c1"
func GenerateGuestName() string {
	b := make([]byte, 3)
	rand.Read(b)
	return "Guest_" + hex.EncodeToString(b)
}
