package validation

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/tidwall/gjson"
)

var AddressTypes = []string{"BILLING", "SHIPPING", "OTHER"}

type AddressInput struct {
	Type      string `json:"type"`
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	Country   string `json:"country"`
	ZipCode   string `json:"zipCode"`
	IsDefault bool   `json:"isDefault"`
}

type ContactPersonInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Position  string `json:"position"`
	IsPrimary bool   `json:"isPrimary"`
}

type CustomFieldInput struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ClientInput is a validated client with its three owned collections.
type ClientInput struct {
	Name     string
	Email    string
	Phone    string
	TaxID    string
	Website  string
	Notes    string
	Category string
	Tags     []string

	Addresses      []AddressInput
	ContactPersons []ContactPersonInput
	CustomFields   []CustomFieldInput
}

// ParseClient validates a client payload. The addresses, contactPersons and
// customFields keys hold JSON arrays; malformed JSON counts as an empty array.
func ParseClient(p Payload) Result[ClientInput] {
	v := Violations{}
	in := ClientInput{
		Name:     p.Get("name"),
		Email:    p.Get("email"),
		Phone:    p.Get("phone"),
		TaxID:    p.Get("taxId"),
		Website:  p.Get("website"),
		Notes:    p.Get("notes"),
		Category: p.Get("category"),
		Tags:     parseTags(p["tags"]),
	}
	Required("name", in.Name, v)
	Email("email", in.Email, v)
	URL("website", in.Website, v)
	maxLengths(v,
		limit{"name", in.Name, 255},
		limit{"email", in.Email, 255},
		limit{"phone", in.Phone, 50},
		limit{"taxId", in.TaxID, 100},
		limit{"website", in.Website, 500},
		limit{"category", in.Category, 100},
		limit{"tags", strings.Join(in.Tags, ","), 1000},
	)

	in.Addresses = lo.Map(jsonArray(p["addresses"]), func(el gjson.Result, i int) AddressInput {
		a := AddressInput{
			Type:      strings.ToUpper(strings.TrimSpace(el.Get("type").String())),
			Street:    strings.TrimSpace(el.Get("street").String()),
			City:      strings.TrimSpace(el.Get("city").String()),
			State:     strings.TrimSpace(el.Get("state").String()),
			Country:   strings.TrimSpace(el.Get("country").String()),
			ZipCode:   strings.TrimSpace(el.Get("zipCode").String()),
			IsDefault: el.Get("isDefault").Bool(),
		}
		key := func(f string) string { return fmt.Sprintf("addresses.%d.%s", i, f) }
		OneOf(key("type"), a.Type, AddressTypes, "invalid_address_type", v)
		Required(key("street"), a.Street, v)
		Required(key("city"), a.City, v)
		Required(key("country"), a.Country, v)
		Required(key("zipCode"), a.ZipCode, v)
		maxLengths(v,
			limit{key("street"), a.Street, 500},
			limit{key("city"), a.City, 255},
			limit{key("state"), a.State, 255},
			limit{key("country"), a.Country, 255},
			limit{key("zipCode"), a.ZipCode, 20},
		)
		return a
	})
	if len(in.Addresses) == 0 {
		v.Add("addresses", "addresses_min")
	}

	in.ContactPersons = lo.Map(jsonArray(p["contactPersons"]), func(el gjson.Result, i int) ContactPersonInput {
		c := ContactPersonInput{
			FirstName: strings.TrimSpace(el.Get("firstName").String()),
			LastName:  strings.TrimSpace(el.Get("lastName").String()),
			Email:     strings.TrimSpace(el.Get("email").String()),
			Phone:     strings.TrimSpace(el.Get("phone").String()),
			Position:  strings.TrimSpace(el.Get("position").String()),
			IsPrimary: el.Get("isPrimary").Bool(),
		}
		key := func(f string) string { return fmt.Sprintf("contactPersons.%d.%s", i, f) }
		Required(key("firstName"), c.FirstName, v)
		Required(key("lastName"), c.LastName, v)
		if Required(key("email"), c.Email, v) {
			Email(key("email"), c.Email, v)
		}
		maxLengths(v,
			limit{key("firstName"), c.FirstName, 255},
			limit{key("lastName"), c.LastName, 255},
			limit{key("email"), c.Email, 255},
			limit{key("phone"), c.Phone, 50},
			limit{key("position"), c.Position, 255},
		)
		return c
	})

	in.CustomFields = lo.Map(jsonArray(p["customFields"]), func(el gjson.Result, i int) CustomFieldInput {
		f := CustomFieldInput{
			Key:   strings.TrimSpace(el.Get("key").String()),
			Value: strings.TrimSpace(el.Get("value").String()),
		}
		key := func(name string) string { return fmt.Sprintf("customFields.%d.%s", i, name) }
		Required(key("key"), f.Key, v)
		Required(key("value"), f.Value, v)
		maxLengths(v, limit{key("key"), f.Key, 255}, limit{key("value"), f.Value, 1000})
		return f
	})

	return finish(in, v)
}

func jsonArray(raw string) []gjson.Result {
	raw = strings.TrimSpace(raw)
	if raw == "" || !gjson.Valid(raw) {
		return nil
	}
	res := gjson.Parse(raw)
	if !res.IsArray() {
		return nil
	}
	return res.Array()
}

// parseTags accepts a JSON array of strings or a comma-separated list.
func parseTags(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var tags []string
	if gjson.Valid(raw) && gjson.Parse(raw).IsArray() {
		tags = lo.Map(gjson.Parse(raw).Array(), func(el gjson.Result, _ int) string { return el.String() })
	} else {
		tags = strings.Split(raw, ",")
	}
	tags = lo.Map(tags, func(t string, _ int) string { return strings.TrimSpace(t) })
	return lo.Uniq(lo.Compact(tags))
}
