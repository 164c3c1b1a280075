// Copyright Rowmill contributors
// SPDX-License-Identifier: Apache-2.0

package functions

import "github.com/google/uuid"

// UUIDV4 generates a new UUID version 4.
func UUIDV4() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// UUIDV7 generates a new UUID version 7.
func UUIDV7() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
