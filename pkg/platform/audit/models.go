package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events by their primary purpose.
// Categories drive Kafka topic routing and retention.
type EventCategory string

const (
	// CategoryCompliance covers ledger-affecting actions: funding movements,
	// registry changes and withdrawal lifecycle transitions.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers access-control changes and refused attempts.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine activity such as individual provider
	// confirmations and payout dispatch.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. It is
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	Action    string
	// ActorID is the checksummed address of the caller, empty for system actions.
	ActorID string
	// Subject names the aggregate the event is about, e.g. "project:7" or "ledger".
	Subject   string
	Reason    string
	RequestID string
	// Attributes carries the event-specific fields (amounts, periods, addresses).
	Attributes map[string]string
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListBySubject(ctx context.Context, subject string) ([]Event, error)
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}

type AuditEvent string

const (
	// Registry events
	EventProjectAdded                   AuditEvent = "project_added"
	EventProjectSuspended               AuditEvent = "project_suspended"
	EventProjectEnabled                 AuditEvent = "project_enabled"
	EventProjectRemoved                 AuditEvent = "project_removed"
	EventProjectContractAdded           AuditEvent = "project_contract_added"
	EventProjectContractRemoved         AuditEvent = "project_contract_removed"
	EventProjectMetadataURIUpdated      AuditEvent = "project_metadata_uri_updated"
	EventProjectOwnerUpdated            AuditEvent = "project_owner_updated"
	EventProjectRewardsRecipientUpdated AuditEvent = "project_rewards_recipient_updated"

	// Funding events
	EventFundsAdded     AuditEvent = "funds_added"
	EventFundsWithdrawn AuditEvent = "funds_withdrawn"
	EventDepositRefused AuditEvent = "deposit_refused"

	// Withdrawal events
	EventWithdrawalRequested     AuditEvent = "withdrawal_requested"
	EventWithdrawalConfirmed     AuditEvent = "withdrawal_confirmed"
	EventWithdrawalCompleted     AuditEvent = "withdrawal_completed"
	EventInvalidWithdrawalAmount AuditEvent = "invalid_withdrawal_amount"

	// Payout events
	EventPayoutDispatched AuditEvent = "payout_dispatched"
	EventPayoutFailed     AuditEvent = "payout_failed"

	// Settings and oracle events
	EventContractDeployed                       AuditEvent = "contract_deployed"
	EventWithdrawalEpochsLimitUpdated           AuditEvent = "withdrawal_epochs_limit_updated"
	EventWithdrawalConfirmationsLimitUpdated    AuditEvent = "withdrawal_confirmations_limit_updated"
	EventWithdrawalConfirmationsDeviationUpdate AuditEvent = "withdrawal_confirmations_deviation_updated"
	EventOracleAddressUpdated                   AuditEvent = "oracle_address_updated"
	EventEpochReported                          AuditEvent = "epoch_reported"

	// Access events
	EventRoleGranted  AuditEvent = "role_granted"
	EventRoleRevoked  AuditEvent = "role_revoked"
	EventAccessDenied AuditEvent = "access_denied"
)

// eventCategories maps each audit event to its category.
var eventCategories = map[AuditEvent]EventCategory{
	EventProjectAdded:                   CategoryCompliance,
	EventProjectSuspended:               CategoryCompliance,
	EventProjectEnabled:                 CategoryCompliance,
	EventProjectRemoved:                 CategoryCompliance,
	EventProjectContractAdded:           CategoryCompliance,
	EventProjectContractRemoved:         CategoryCompliance,
	EventProjectMetadataURIUpdated:      CategoryCompliance,
	EventProjectOwnerUpdated:            CategoryCompliance,
	EventProjectRewardsRecipientUpdated: CategoryCompliance,
	EventFundsAdded:                     CategoryCompliance,
	EventFundsWithdrawn:                 CategoryCompliance,
	EventWithdrawalRequested:            CategoryCompliance,
	EventWithdrawalCompleted:            CategoryCompliance,
	EventInvalidWithdrawalAmount:        CategoryCompliance,
	EventContractDeployed:               CategoryCompliance,

	EventDepositRefused:                         CategorySecurity,
	EventRoleGranted:                            CategorySecurity,
	EventRoleRevoked:                            CategorySecurity,
	EventAccessDenied:                           CategorySecurity,
	EventOracleAddressUpdated:                   CategorySecurity,
	EventWithdrawalEpochsLimitUpdated:           CategorySecurity,
	EventWithdrawalConfirmationsLimitUpdated:    CategorySecurity,
	EventWithdrawalConfirmationsDeviationUpdate: CategorySecurity,
	EventPayoutFailed:                           CategorySecurity,

	EventWithdrawalConfirmed: CategoryOperations,
	EventPayoutDispatched:    CategoryOperations,
	EventEpochReported:       CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

func (e AuditEvent) String() string {
	return string(e)
}
