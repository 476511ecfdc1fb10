// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package model

import "golang.org/x/crypto/bcrypt"

// PasswordCost is the bcrypt cost of new password hashes.
var PasswordCost = bcrypt.DefaultCost

// SetPassword replaces the user's password hash with a hash of
// password.  An empty password disables password login.
func (u *User) SetPassword(password string) error {
	if password == "" {
		u.PasswordHash = ""
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword returns nil if password matches the user's stored
// hash, or ErrBadPassword otherwise.
func (u *User) CheckPassword(password string) error {
	if u.PasswordHash == "" {
		return ErrBadPassword
	}
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	if err != nil {
		return ErrBadPassword
	}
	return nil
}
