package contact

import (
	"errors"

	"github.com/mirrordesk/mirrordesk/internal/domain/model/record"
)

// Contact is a CRM person record. One of the plain resource types
// mirrored by the cache; it carries no behavior beyond the record
// contract.
type Contact struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Email   string   `json:"email"`
	Phone   string   `json:"phone,omitempty"`
	Company string   `json:"company,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

// New validates and builds a contact payload for a remote create.
func New(name, email string) (*Contact, error) {
	if name == "" {
		return nil, errors.New("contact name cannot be empty")
	}
	return &Contact{Name: name, Email: email}, nil
}

func (c *Contact) RecordID() string {
	return c.ID
}

func (c *Contact) Clone() *Contact {
	out := *c
	if c.Tags != nil {
		out.Tags = make([]string, len(c.Tags))
		copy(out.Tags, c.Tags)
	}
	return &out
}

func (c *Contact) Apply(p record.Patch) *Contact {
	out := c.Clone()
	for k, v := range p {
		switch k {
		case "name":
			if s, ok := v.(string); ok {
				out.Name = s
			}
		case "email":
			if s, ok := v.(string); ok {
				out.Email = s
			}
		case "phone":
			if s, ok := v.(string); ok {
				out.Phone = s
			}
		case "company":
			if s, ok := v.(string); ok {
				out.Company = s
			}
		case "tags":
			switch tags := v.(type) {
			case []string:
				out.Tags = append([]string(nil), tags...)
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
