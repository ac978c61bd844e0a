package domain

// Stage is one step in the fixed planning workflow.
type Stage string

const (
	StageStart    Stage = "start"
	StageHousing  Stage = "housing"
	StageCapacity Stage = "capacity"
	StageRisk     Stage = "risk"
	StagePlanning Stage = "planning"
	StageDone     Stage = "done"
)

// StageOrder lists the actionable stages in workflow order.
// StageStart precedes the first entry and StageDone follows the last.
var StageOrder = []Stage{StageHousing, StageCapacity, StageRisk, StagePlanning}

// Status tags a sub-record as a usable result or a structured failure.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// ErrorCode identifies why a sub-record carries an error status.
type ErrorCode string

const (
	CodeInvalidInput      ErrorCode = "INVALID_INPUT"
	CodeInsufficientData  ErrorCode = "INSUFFICIENT_DATA"
	CodeLookupUnavailable ErrorCode = "LOOKUP_UNAVAILABLE"
	CodeInvalidPostcode   ErrorCode = "INVALID_POSTCODE"
	CodeNoPricesFound     ErrorCode = "NO_PRICES_FOUND"
	CodeMissingInput      ErrorCode = "MISSING_INPUT"
	CodeSessionNotFound   ErrorCode = "SESSION_NOT_FOUND"
)
