package valueobjects

import "time"

// Creator records who created a record and when. The principal is the
// authenticated caller identity bound by the operations layer; it gates all
// later mutations of the record.
type Creator struct {
	Principal string    `json:"principal"`
	At        time.Time `json:"at"`
}

// NewCreator captures the principal with the current time.
func NewCreator(principal string) Creator {
	return Creator{Principal: principal, At: time.Now().UTC()}
}

// IsZero reports whether the creator was never set.
func (c Creator) IsZero() bool {
	return c.Principal == "" && c.At.IsZero()
}
