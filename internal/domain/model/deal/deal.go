package deal

import (
	"errors"
	"time"

	"github.com/mirrordesk/mirrordesk/internal/domain/model/record"
)

// Deal is a sales opportunity moving through the pipeline stages.
// Fields are exported because deals cross the wire as JSON and are
// evaluated by client-side filter expressions.
type Deal struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Amount            float64   `json:"amount"`
	StageID           string    `json:"stage_id"`
	ExpectedCloseDate time.Time `json:"expected_close_date"`
	OwnerRef          string    `json:"owner_ref"`
	Tags              []string  `json:"tags,omitempty"`
}

// New validates and builds a deal payload for a remote create.
// The identifier stays empty; the server assigns it.
func New(name string, amount float64, stageID string) (*Deal, error) {
	if name == "" {
		return nil, errors.New("deal name cannot be empty")
	}
	if amount < 0 {
		return nil, errors.New("deal amount cannot be negative")
	}
	return &Deal{
		Name:    name,
		Amount:  amount,
		StageID: stageID,
	}, nil
}

// RecordID returns the server-assigned identifier.
func (d *Deal) RecordID() string {
	return d.ID
}

// Clone returns a deep copy of the deal.
func (d *Deal) Clone() *Deal {
	out := *d
	if d.Tags != nil {
		out.Tags = make([]string, len(d.Tags))
		copy(out.Tags, d.Tags)
	}
	return &out
}

// Apply merges a patch into a copy of the deal. Unknown keys are
// ignored; values of the wrong type leave the field untouched.
func (d *Deal) Apply(p record.Patch) *Deal {
	out := d.Clone()
	for k, v := range p {
		switch k {
		case "name":
			if s, ok := v.(string); ok {
				out.Name = s
			}
		case "amount":
			if f, ok := asFloat(v); ok {
				out.Amount = f
			}
		case "stage_id":
			if s, ok := v.(string); ok {
				out.StageID = s
			}
		case "expected_close_date":
			switch t := v.(type) {
			case time.Time:
				out.ExpectedCloseDate = t
			case string:
				if parsed, err := time.Parse(time.RFC3339, t); err == nil {
					out.ExpectedCloseDate = parsed
				}
			}
		case "owner_ref":
			if s, ok := v.(string); ok {
				out.OwnerRef = s
			}
		case "tags":
			switch tags := v.(type) {
			case []string:
				out.Tags = make([]string, len(tags))
				copy(out.Tags, tags)
			case []any:
				converted := make([]string, 0, len(tags))
				for _, item := range tags {
					if s, ok := item.(string); ok {
						converted = append(converted, s)
					}
				}
				out.Tags = converted
			}
		}
	}
	return out
}

// Equals reports deep equality. Used by rollback tests to verify a
// failed mutation restores the exact pre-call value.
func (d *Deal) Equals(other *Deal) bool {
	if other == nil {
		return false
	}
	if d.ID != other.ID || d.Name != other.Name || d.Amount != other.Amount ||
		d.StageID != other.StageID || d.OwnerRef != other.OwnerRef ||
		!d.ExpectedCloseDate.Equal(other.ExpectedCloseDate) {
		return false
	}
	if len(d.Tags) != len(other.Tags) {
		return false
	}
	for i := range d.Tags {
		if d.Tags[i] != other.Tags[i] {
			return false
		}
	}
	return true
}

// asFloat accepts the numeric types a patch value may arrive as:
// float64 from decoded JSON, int from in-process callers.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
