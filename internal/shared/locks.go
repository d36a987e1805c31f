package shared

// SweepLockKey is the redis key guarding the recurring-payment sweep so that
// at most one worker process runs it at a time.
const SweepLockKey = "recurring:sweep:lock"

// SettlementLockKey guards the end-of-day ACH settlement batch.
const SettlementLockKey = "payments:ach-settlement:lock"
