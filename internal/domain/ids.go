package domain

// StudentID is the store-assigned identifier of a student record.
// IDs are positive and increase monotonically within a store.
type StudentID int64
