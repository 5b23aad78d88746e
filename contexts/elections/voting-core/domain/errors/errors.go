package errors

import "errors"

var (
	ErrInvalidOrUsedToken      = errors.New("invalid or used voter token")
	ErrTokenNotFound           = errors.New("voter token not found")
	ErrTokenAlreadyUsed        = errors.New("voter token already used")
	ErrTokenExpired            = errors.New("voter token expired")
	ErrDuplicateToken          = errors.New("voter token already exists")
	ErrBallotNotFound          = errors.New("ballot not found")
	ErrUnsupportedBallotType   = errors.New("unsupported ballot type")
	ErrInvalidSelection        = errors.New("invalid selection")
	ErrInvalidBallotDefinition = errors.New("invalid ballot definition")
	ErrInvalidCastInput        = errors.New("invalid cast input")
	ErrInvalidCheckInput       = errors.New("invalid token check input")
	ErrInvalidIssueInput       = errors.New("invalid token issue input")
	ErrInvalidTallyInput       = errors.New("invalid tally input")
	ErrStorageUnavailable      = errors.New("storage unavailable")
	ErrConflict                = errors.New("conflicting write")
)
