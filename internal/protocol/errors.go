package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// Command layer. Every failure here is recoverable: the caller decides
	// whether to retry elsewhere.
	ErrBadRequest       = "E_BAD_REQUEST"
	ErrUnavailable      = "E_UNAVAILABLE"
	ErrWrongPhase       = "E_WRONG_PHASE"
	ErrTooManyObjects   = "E_TOO_MANY_OBJECTS"
	ErrNoTowns          = "E_NO_TOWNS"
	ErrTerrain          = "E_TERRAIN"
	ErrFlatLandRequired = "E_FLAT_LAND_REQUIRED"
	ErrAlreadyOwned     = "E_ALREADY_OWNED"
	ErrOwnedByOther     = "E_OWNED_BY_OTHER"
	ErrInTheWay         = "E_IN_THE_WAY"
	ErrRemovalForbidden = "E_REMOVAL_FORBIDDEN"
	ErrBlocked          = "E_BLOCKED"
	ErrInvalidTarget    = "E_INVALID_TARGET"
	ErrInternal         = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest:  {},
	ErrBadRequest:       {},
	ErrUnavailable:      {},
	ErrWrongPhase:       {},
	ErrTooManyObjects:   {},
	ErrNoTowns:          {},
	ErrTerrain:          {},
	ErrFlatLandRequired: {},
	ErrAlreadyOwned:     {},
	ErrOwnedByOther:     {},
	ErrInTheWay:         {},
	ErrRemovalForbidden: {},
	ErrBlocked:          {},
	ErrInvalidTarget:    {},
	ErrInternal:         {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
