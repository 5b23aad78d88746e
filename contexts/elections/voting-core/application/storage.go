package application

import (
	"errors"
	"fmt"

	domainerrors "ballotbox/contexts/elections/voting-core/domain/errors"
)

// StorageError tags an unexpected store failure as ErrStorageUnavailable while
// keeping the original cause in the chain.
func StorageError(err error) error {
	if err == nil || errors.Is(err, domainerrors.ErrStorageUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", domainerrors.ErrStorageUnavailable, err)
}
