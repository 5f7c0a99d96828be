package checkout

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidAddress = errors.New("invalid shipping address")

// Address is the shipping destination collected at the first checkout step.
// State/province is the only optional field; every other field is required
// and all of them are validated under the same policy.
type Address struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Country   string `json:"country"`
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state,omitempty"`
	ZipCode   string `json:"zip_code"`
}

func (a Address) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"first_name", a.FirstName},
		{"last_name", a.LastName},
		{"email", a.Email},
		{"phone", a.Phone},
		{"country", a.Country},
		{"street", a.Street},
		{"city", a.City},
		{"zip_code", a.ZipCode},
	}

	var missing []string
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidAddress, strings.Join(missing, ", "))
	}
	return nil
}
