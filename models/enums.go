package models

// AccountType distinguishes the two ledger party kinds.
type AccountType string

const (
	AccountTypeCustomer AccountType = "CUSTOMER"
	AccountTypeSupplier AccountType = "SUPPLIER"
)

// EntryType classifies a ledger entry.
type EntryType string

const (
	EntryTypeSales      EntryType = "SALES"
	EntryTypePurchase   EntryType = "PURCHASE"
	EntryTypeReceipt    EntryType = "RECEIPT"
	EntryTypePayment    EntryType = "PAYMENT"
	EntryTypeAdjustment EntryType = "ADJUSTMENT"
)

// DocumentStatus tracks invoice/purchase lifecycle. Voided documents stay in
// the tables; compensating ledger entries carry the reversal.
type DocumentStatus string

const (
	DocumentStatusConfirmed DocumentStatus = "Confirmed"
	DocumentStatusVoid      DocumentStatus = "Void"
)

// Counter series names. One row per document series, created lazily.
const (
	CounterInvoice  = "invoice"
	CounterPurchase = "purchase"
	CounterReceipt  = "receipt"
	CounterPayment  = "payment"
)

// Outbox publish states.
const (
	OutboxStatusPending    = "PENDING"
	OutboxStatusProcessing = "PROCESSING"
	OutboxStatusSent       = "SENT"
	OutboxStatusFailed     = "FAILED"
)

// OutboxAction marks what happened to the referenced document.
type OutboxAction string

const (
	OutboxActionCreate OutboxAction = "C"
	OutboxActionVoid   OutboxAction = "V"
)

// OutboxReferenceType identifies the referenced document kind.
type OutboxReferenceType string

const (
	OutboxReferenceTypeInvoice  OutboxReferenceType = "IV"
	OutboxReferenceTypePurchase OutboxReferenceType = "PR"
	OutboxReferenceTypeReceipt  OutboxReferenceType = "RC"
	OutboxReferenceTypePayment  OutboxReferenceType = "PM"
)
