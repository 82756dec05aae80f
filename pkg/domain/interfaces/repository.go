package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	Strike() StrikeRepository
	CaseLog() CaseLogRepository

	Close() error
}
