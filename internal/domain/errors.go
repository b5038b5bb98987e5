package domain

import "errors"

var (
	// ErrGameNotFound is returned when a game session has not been initialized.
	ErrGameNotFound = errors.New("game session not found")
	// ErrPlayerNotFound is returned when a player tries to act before joining.
	ErrPlayerNotFound = errors.New("player not found in game")
	// ErrPresentationNotFound indicates the presentation could not be loaded.
	ErrPresentationNotFound = errors.New("presentation not found")
	// ErrSlideNotFound indicates a submitted slide id is invalid.
	ErrSlideNotFound = errors.New("slide not found")
	// ErrDuplicateSlideID indicates a slide id collision within a presentation.
	ErrDuplicateSlideID = errors.New("duplicate slide id")
	// ErrSlideNotInteractive rejects submissions against slides that take none.
	ErrSlideNotInteractive = errors.New("slide does not accept responses")
	// ErrInvalidAnswer rejects out-of-bounds or malformed payloads before any write.
	ErrInvalidAnswer = errors.New("invalid answer payload")
	// ErrAlreadyAnswered is the failed-precondition rejection for duplicate submissions.
	ErrAlreadyAnswered = errors.New("already answered this slide")
	// ErrDeadlineExceeded rejects submissions past the slide's time limit.
	ErrDeadlineExceeded = errors.New("submission deadline exceeded")
	// ErrSlideNotActive rejects submissions to a slide the host has not opened.
	ErrSlideNotActive = errors.New("slide is not active")
	// ErrPacingBlocked signals the host may not advance yet.
	ErrPacingBlocked = errors.New("pacing gate not satisfied")
	// ErrGameEnded rejects actions against a finished session.
	ErrGameEnded = errors.New("game has ended")
)
