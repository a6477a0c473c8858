package toml

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	Version  int             `toml:"version"`
	NextID   int64           `toml:"next_id"`
	Accounts []accountSchema `toml:"accounts"`
}

// applyDefaults keeps next_id ahead of every stored key, so a hand-edited file
// cannot make Save hand out a key that is already taken.
func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
	if s.NextID < 1 {
		s.NextID = 1
	}
	for _, account := range s.Accounts {
		if account.ID >= s.NextID {
			s.NextID = account.ID + 1
		}
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported accounts schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

func (s fileSchema) indexOf(id int64) int {
	for i := range s.Accounts {
		if s.Accounts[i].ID == id {
			return i
		}
	}
	return -1
}

type accountSchema struct {
	ID                int64   `toml:"id"`
	AccountHolderName string  `toml:"account_holder_name"`
	Balance           float64 `toml:"balance"`
	CreatedAt         string  `toml:"created_at,omitempty"`
	UpdatedAt         string  `toml:"updated_at,omitempty"`
}
