// models.go
package loadstate

import (
	"time"
)

// StateChange is the in-process snapshot of one operation's facets taken
// after a mutation. It is what change listeners receive.
type StateChange struct {
	Name    string
	Loading bool
	Success bool
	Err     error
	At      time.Time
}

// StatusRecord is the wire form of an operation's state as persisted and
// broadcast. Errors travel as plain strings since error values do not
// survive serialization.
type StatusRecord struct {
	UpdateID  string    `json:"update_id"`
	Name      string    `json:"name"`
	Loading   bool      `json:"loading"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Record converts a StateChange into its wire form. The update ID is left
// blank; the store assigns one when the record is persisted.
func (c StateChange) Record() StatusRecord {
	rec := StatusRecord{
		Name:      c.Name,
		Loading:   c.Loading,
		Success:   c.Success,
		UpdatedAt: c.At,
	}
	if c.Err != nil {
		rec.Error = c.Err.Error()
	}
	return rec
}
