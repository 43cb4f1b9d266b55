package service

import (
	"errors"

	"github.com/okian/ballbyball/internal/adapters/repository"
)

// Sentinel errors returned by the service.
var (
	ErrNotFound        = repository.ErrNotFound
	ErrConflict        = repository.ErrConflict
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotStarted      = errors.New("service not started")
	ErrMatchEnded      = errors.New("match has ended")
	ErrInningsComplete = errors.New("innings complete")
	ErrNoStriker       = errors.New("no batsman on strike")
	ErrNoBowler        = errors.New("no bowler selected")
)
