package ledger

import (
	ferrors "github.com/Deshan-5/house-price-ml/internal/foundation/errors"
)

func ledgerErr(msg string, path string, cause error) error {
	b := ferrors.LedgerError(msg).WithCause(cause)
	if path != "" {
		b = b.WithContext("path", path)
	}
	return b.Build()
}
