package journal

import (
	"errors"
	"time"

	"github.com/mirrordesk/mirrordesk/internal/domain/model/record"
)

// Entry is an accounting journal entry, another plain resource type
// mirrored by the cache.
type Entry struct {
	ID          string    `json:"id"`
	Memo        string    `json:"memo"`
	AccountCode string    `json:"account_code"`
	Amount      float64   `json:"amount"`
	PostedAt    time.Time `json:"posted_at"`
}

// New validates and builds an entry payload for a remote create.
func New(memo, accountCode string, amount float64, postedAt time.Time) (*Entry, error) {
	if accountCode == "" {
		return nil, errors.New("account code cannot be empty")
	}
	return &Entry{Memo: memo, AccountCode: accountCode, Amount: amount, PostedAt: postedAt}, nil
}

func (e *Entry) RecordID() string {
	return e.ID
}

func (e *Entry) Clone() *Entry {
	out := *e
	return &out
}

func (e *Entry) Apply(p record.Patch) *Entry {
	out := e.Clone()
	for k, v := range p {
		switch k {
		case "memo":
			if s, ok := v.(string); ok {
				out.Memo = s
			}
		case "account_code":
			if s, ok := v.(string); ok {
				out.AccountCode = s
			}
		case "amount":
			switch n := v.(type) {
			case float64:
				out.Amount = n
			case int:
				out.Amount = float64(n)
			}
		case "posted_at":
			switch t := v.(type) {
			case time.Time:
				out.PostedAt = t
			case string:
				if parsed, err := time.Parse(time.RFC3339, t); err == nil {
					out.PostedAt = parsed
				}
			}
		}
	}
	return out
}
