// Package rerrors defines the typed failures returned by the replication
// engine, the estimator kernels, and the Analysis builder.
package rerrors

import "fmt"

// MissingElementError reports that an Analysis is missing a required
// ingredient, e.g. no estimator was selected or no data was supplied.
type MissingElementError struct {
	What string
}

func NewMissingElement(what string) *MissingElementError {
	return &MissingElementError{What: what}
}

func (e *MissingElementError) Error() string {
	return "analysis is missing some element: " + e.What
}

// InconsistencyError reports a dimension mismatch between data, weights,
// replicate weights, or grouping.
type InconsistencyError struct {
	What string
}

func NewInconsistency(what string) *InconsistencyError {
	return &InconsistencyError{What: what}
}

func (e *InconsistencyError) Error() string {
	return "inconsistency in analysis: " + e.What
}

// DataLengthError reports a raw byte buffer whose length is not a multiple
// of 8 * columns.
type DataLengthError struct{}

func NewDataLength() *DataLengthError {
	return &DataLengthError{}
}

func (e *DataLengthError) Error() string {
	return "length of data was not a multiple of 8 * columns"
}

// NumericFailureError reports an unrecoverable numeric condition detected by
// a kernel: a singular diagonal in correlation, an unsolvable linear system,
// NaN in weights, an empty quantile list, or a zero-predictor regression
// without an intercept.
type NumericFailureError struct {
	Detail string
}

func NewNumericFailure(detail string) *NumericFailureError {
	return &NumericFailureError{Detail: detail}
}

func (e *NumericFailureError) Error() string {
	return fmt.Sprintf("numeric failure: %s", e.Detail)
}
