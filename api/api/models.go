/* models.go
 * This file contains the helper functions used by api consumers for classifying
 * coordinator errors
 */

package api

import (
	"errors"

	"livescore/api/shared"
)

func isNotFound(err error) bool {
	return errors.Is(err, shared.ErrNotFound)
}

func isDuplicate(err error) bool {
	return errors.Is(err, shared.ErrDuplicateSubmission)
}
