package service

import "errors"

var (
	// ErrInvalidUserState means the user's status does not permit login
	// continuation (Block or unrecognized).
	ErrInvalidUserState = errors.New("invalid user state")

	// ErrInvalidRefreshToken covers both verification failure and the
	// token string not being present in the store.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// ErrUnsupportedProvider means no adapter is registered for the
	// user's stored provider type.
	ErrUnsupportedProvider = errors.New("unsupported provider type")

	// ErrInvalidUniversity means the campus code is not in the known set.
	ErrInvalidUniversity = errors.New("invalid university")

	// ErrNicknameTaken means a non-Deleted user already holds the nickname.
	ErrNicknameTaken = errors.New("nickname already in use")

	// ErrAdminAuth means the admin credential check failed.
	ErrAdminAuth = errors.New("invalid admin credentials")

	// ErrSelfMessage means a user tried to message themselves.
	ErrSelfMessage = errors.New("cannot send a message to yourself")

	// ErrInvalidMessageType means a message kind outside 1..6 was given.
	ErrInvalidMessageType = errors.New("invalid message type")
)
