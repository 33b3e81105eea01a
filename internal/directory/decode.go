package directory

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/erdilatifi/User-Management-App/internal/record"
)

// rawUser is the subset of a directory user the listing consumes. Pointer
// fields distinguish "absent" from "zero".
type rawUser struct {
	ID      *int64      `json:"id"`
	Name    *string     `json:"name"`
	Email   *string     `json:"email"`
	Company *rawCompany `json:"company"`
}

type rawCompany struct {
	Name string `json:"name"`
}

type rawAddress struct {
	Street  string `json:"street"`
	Suite   string `json:"suite"`
	City    string `json:"city"`
	Zipcode string `json:"zipcode"`
}

type rawDetail struct {
	rawUser
	Phone   string      `json:"phone"`
	Website string      `json:"website"`
	Address *rawAddress `json:"address"`
}

// DecodeUsers parses a listing body into Remote records.
//
// Decoding fails closed: a body that is not a JSON array, an element without
// id, name or email, a field of the wrong type, or a repeated id rejects the
// whole body.
func DecodeUsers(body []byte) ([]record.Record, error) {
	var raw []rawUser
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	if raw == nil {
		return nil, errors.New("decode users: body is not an array")
	}

	records := make([]record.Record, 0, len(raw))
	seen := make(map[int64]struct{}, len(raw))
	for i, u := range raw {
		r, err := u.toRecord()
		if err != nil {
			return nil, fmt.Errorf("decode users: element %d: %w", i, err)
		}
		if _, dup := seen[r.ID]; dup {
			return nil, fmt.Errorf("decode users: element %d: duplicate id %d", i, r.ID)
		}
		seen[r.ID] = struct{}{}
		records = append(records, r)
	}
	return records, nil
}

// DecodeDetail parses a single-user body.
func DecodeDetail(body []byte) (Detail, error) {
	var raw *rawDetail
	if err := json.Unmarshal(body, &raw); err != nil {
		return Detail{}, fmt.Errorf("decode user: %w", err)
	}
	if raw == nil {
		return Detail{}, errors.New("decode user: body is not an object")
	}

	r, err := raw.toRecord()
	if err != nil {
		return Detail{}, fmt.Errorf("decode user: %w", err)
	}

	d := Detail{
		Record:  r,
		Phone:   raw.Phone,
		Website: raw.Website,
	}
	if raw.Address != nil {
		d.Address = Address(*raw.Address)
	}
	return d, nil
}

// toRecord maps the raw shape onto a Remote record. Only id, name, email and
// company.name are kept; a missing or blank company name becomes the
// placeholder.
func (u rawUser) toRecord() (record.Record, error) {
	switch {
	case u.ID == nil:
		return record.Record{}, errors.New("missing id")
	case u.Name == nil:
		return record.Record{}, errors.New("missing name")
	case u.Email == nil:
		return record.Record{}, errors.New("missing email")
	}

	org := ""
	if u.Company != nil {
		org = u.Company.Name
	}
	return record.NewRemote(*u.ID, *u.Name, *u.Email, org), nil
}
