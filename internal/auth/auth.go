// Package auth — bearer-авторизация с ролями в JWT-клеймах.
//
// Чтение доступно любому валидному токену, мутации — только superadmin.
// Пустой секрет отключает проверку целиком (dev-режим).
package auth

import (
	"fmt"
	"net/http"
	"strings"

	"fleet/internal/apiresp"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleSuperadmin = "superadmin"
	RoleAdmin      = "admin"
	RoleUser       = "user"
)

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type Guard struct {
	secret []byte
}

func New(secret string) *Guard {
	if secret == "" {
		return &Guard{}
	}
	return &Guard{secret: []byte(secret)}
}

func (g *Guard) Enabled() bool { return len(g.secret) > 0 }

func (g *Guard) parse(r *http.Request) (*Claims, error) {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return nil, fmt.Errorf("missing bearer token")
	}
	raw := strings.TrimPrefix(h, "Bearer ")

	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return g.secret, nil
	})
	if err != nil || !tok.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// RequireRead пропускает любой валидный токен.
func (g *Guard) RequireRead(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !g.Enabled() {
			next(w, r)
			return
		}
		if _, err := g.parse(r); err != nil {
			apiresp.Unauthorized(w)
			return
		}
		next(w, r)
	}
}

// RequireWrite пропускает только superadmin.
func (g *Guard) RequireWrite(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !g.Enabled() {
			next(w, r)
			return
		}
		claims, err := g.parse(r)
		if err != nil || claims.Role != RoleSuperadmin {
			apiresp.Unauthorized(w)
			return
		}
		next(w, r)
	}
}

// Token выпускает HS256-токен с ролью (используется утилитами и тестами).
func (g *Guard) Token(role string) (string, error) {
	if !g.Enabled() {
		return "", fmt.Errorf("auth disabled")
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Role: role})
	return t.SignedString(g.secret)
}
