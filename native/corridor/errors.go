package corridor

import "errors"

var (
	// ErrNilState indicates the engine was used before a state backend was configured.
	ErrNilState = errors.New("corridor: state not configured")
	// ErrUnauthorized indicates the caller is not the configured administrator.
	ErrUnauthorized = errors.New("corridor: caller is not the administrator")

	// ErrInvalidDeadline indicates an intent deadline at or before the current time.
	ErrInvalidDeadline = errors.New("corridor: deadline must be in the future")
	// ErrZeroAmount indicates a zero or missing magnitude or minimum output.
	ErrZeroAmount = errors.New("corridor: amount must be positive")
	// ErrAmountTooLarge indicates a magnitude beyond the 128-bit storage bound.
	ErrAmountTooLarge = errors.New("corridor: amount exceeds 128-bit bound")

	// ErrIntentNotFound indicates the referenced intent does not exist.
	ErrIntentNotFound = errors.New("corridor: intent not found")
	// ErrAlreadySettled indicates the intent has been settled before.
	ErrAlreadySettled = errors.New("corridor: intent already settled")
	// ErrIntentExpired indicates the intent deadline has passed.
	ErrIntentExpired = errors.New("corridor: intent expired")
	// ErrMinOutputNotMet indicates the proposed output is below the intent's floor.
	ErrMinOutputNotMet = errors.New("corridor: proposed output below minimum")

	// ErrLengthMismatch indicates the batch id and output slices differ in length.
	ErrLengthMismatch = errors.New("corridor: ids and outputs length mismatch")
	// ErrEmptyBatch indicates an empty settlement batch.
	ErrEmptyBatch = errors.New("corridor: batch must not be empty")
	// ErrMixedCorridors indicates a batch spanning more than one corridor.
	ErrMixedCorridors = errors.New("corridor: batch mixes corridors")
	// ErrNoValidIntents indicates every batch entry was excluded by validation.
	ErrNoValidIntents = errors.New("corridor: no valid intents in batch")

	// ErrCorridorNotFound indicates the corridor has not been registered.
	ErrCorridorNotFound = errors.New("corridor: corridor not registered")
	// ErrCorridorExists indicates a duplicate corridor registration.
	ErrCorridorExists = errors.New("corridor: corridor already registered")
	// ErrCorridorNotNettable indicates the corridor is not flagged for netting.
	ErrCorridorNotNettable = errors.New("corridor: corridor not registered for netting")
	// ErrInvalidFeeParams indicates fee parameters beyond the policy caps.
	ErrInvalidFeeParams = errors.New("corridor: invalid fee parameters")
)
