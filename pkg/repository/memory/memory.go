package memory

import (
	"github.com/modsec-lab/aegis/pkg/domain/interfaces"
)

// Memory is an in-memory Repository used for tests and development
type Memory struct {
	strike  *strikeRepository
	caseLog *caseLogRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		strike:  newStrikeRepository(),
		caseLog: newCaseLogRepository(),
	}
}

func (m *Memory) Strike() interfaces.StrikeRepository {
	return m.strike
}

func (m *Memory) CaseLog() interfaces.CaseLogRepository {
	return m.caseLog
}

func (m *Memory) Close() error {
	return nil
}
