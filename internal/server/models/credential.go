package models

import "time"

// AdminCredential is a salted password hash for one admin username.
// Scheme names the cryptox hasher that produced PasswordHash.
type AdminCredential struct {
	Username     string
	PasswordHash []byte
	Salt         []byte
	Scheme       string
	IsActive     bool
	CreatedAt    time.Time
}
