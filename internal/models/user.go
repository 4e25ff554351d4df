package models

import "time"

// User is the minimal profile this service keeps for each identity.
// Credential issuance lives in the external identity system; rows here are
// read for existence checks, request joins and the sidebar listing.
type User struct {
	ID        string    `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// UserProfile is a user joined with their friend id list.
type UserProfile struct {
	User
	Friends []string `json:"friends"`
}
