package sqldb

import (
	"time"

	"github.com/bankingrestapi/bank/internal/domain"
)

// accountRecord is the table model. Timestamps are owned by the service layer,
// so gorm's automatic create/update tracking is switched off.
type accountRecord struct {
	ID                int64      `gorm:"primaryKey;autoIncrement"`
	AccountHolderName string     `gorm:"size:255;not null;index"`
	Balance           float64    `gorm:"not null;default:0"`
	CreatedAt         *time.Time `gorm:"autoCreateTime:false;index"`
	UpdatedAt         *time.Time `gorm:"autoUpdateTime:false"`
}

func (accountRecord) TableName() string {
	return "accounts"
}

func toRecord(account domain.Account) accountRecord {
	return accountRecord{
		ID:                int64(account.ID),
		AccountHolderName: account.AccountHolderName,
		Balance:           account.Balance,
		CreatedAt:         timePtr(account.CreatedAt),
		UpdatedAt:         timePtr(account.UpdatedAt),
	}
}

func fromRecord(record accountRecord) domain.Account {
	return domain.Account{
		ID:                domain.AccountID(record.ID),
		AccountHolderName: record.AccountHolderName,
		Balance:           record.Balance,
		CreatedAt:         timeValue(record.CreatedAt),
		UpdatedAt:         timeValue(record.UpdatedAt),
	}
}

func fromRecords(records []accountRecord) []domain.Account {
	accounts := make([]domain.Account, 0, len(records))
	for _, record := range records {
		accounts = append(accounts, fromRecord(record))
	}
	return accounts
}

// timePtr maps the zero time to NULL; mysql rejects zero dates in strict mode.
func timePtr(value time.Time) *time.Time {
	if value.IsZero() {
		return nil
	}
	utc := value.UTC()
	return &utc
}

func timeValue(value *time.Time) time.Time {
	if value == nil {
		return time.Time{}
	}
	return value.UTC()
}
